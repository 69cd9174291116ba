package scilog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Tokenizer yields one token per physical line. It is lazy, finite and cannot
// be rewound; once End has been returned every further call returns End.
type Tokenizer struct {
	scanner *bufio.Scanner
	line    int
	done    bool
	last    Token
}

// NewTokenizer wraps r. Lines may be up to 50MB long; feature-heavy logs put
// whole sequences on one line.
func NewTokenizer(r io.Reader) *Tokenizer {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 50*1024*1024)
	return &Tokenizer{scanner: scanner}
}

// Next returns the next token.
func (t *Tokenizer) Next() (Token, error) {
	if t.done {
		return t.last, nil
	}
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return Token{}, fmt.Errorf("read line %d: %w", t.line+1, err)
		}
		t.done = true
		t.last = Token{Type: End, Line: t.line, EOF: true}
		return t.last, nil
	}
	t.line++
	text := strings.TrimSuffix(t.scanner.Text(), "\r")
	typ, value := Classify(text)
	tok := Token{Type: typ, Value: value, Line: t.line}
	if typ == End {
		t.done = true
		t.last = tok
	}
	return tok, nil
}

// Resume clears the End state after a blank sentinel so that reading can
// continue past it. It has no effect once the input is exhausted.
func (t *Tokenizer) Resume() {
	if t.done && !t.last.EOF {
		t.done = false
	}
}

// TrailingContent drains the rest of the input and returns the line number of
// the first non-empty line after the sentinel, or 0 when nothing follows.
func (t *Tokenizer) TrailingContent() (int, error) {
	if t.last.EOF {
		return 0, nil
	}
	first := 0
	for t.scanner.Scan() {
		t.line++
		if first == 0 && strings.TrimSpace(t.scanner.Text()) != "" {
			first = t.line
		}
	}
	if err := t.scanner.Err(); err != nil {
		return first, fmt.Errorf("read line %d: %w", t.line+1, err)
	}
	t.last = Token{Type: End, Line: t.line, EOF: true}
	return first, nil
}
