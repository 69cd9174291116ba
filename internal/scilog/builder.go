package scilog

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrStackUnderflow reports a close line with no open element to close.
var ErrStackUnderflow = errors.New("close without matching open")

// ParseError locates a fatal error in a named input.
type ParseError struct {
	Name string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Name, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Handler receives the structural events of a parse. The path slice is the
// current stack of open element names, root first; it is only valid for the
// duration of the call.
type Handler interface {
	Open(path []string, line int) error
	Leaf(path []string, text string, line int) error
}

// BuilderOptions tunes how the end sentinel is treated.
type BuilderOptions struct {
	// SkipBlankLines skips blank lines while elements are still open instead
	// of ending the stream there.
	SkipBlankLines bool
}

// Builder drives a Handler from a token stream using an explicit tag stack.
// No tree is materialized.
type Builder struct {
	name     string
	opts     BuilderOptions
	stack    []string
	warnings []string
}

// NewBuilder returns a builder whose errors name the input name.
func NewBuilder(name string, opts BuilderOptions) *Builder {
	return &Builder{name: name, opts: opts}
}

// Warnings returns the non-fatal diagnostics collected by the last Run.
func (b *Builder) Warnings() []string {
	return b.warnings
}

func (b *Builder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *Builder) fail(line int, err error) error {
	return &ParseError{Name: b.name, Line: line, Err: err}
}

// Run reads r to its end sentinel, dispatching every open and leaf to h.
func (b *Builder) Run(r io.Reader, h Handler) error {
	b.stack = b.stack[:0]
	b.warnings = nil
	tz := NewTokenizer(r)
	for {
		tok, err := tz.Next()
		if err != nil {
			return b.fail(tz.line, err)
		}
		switch tok.Type {
		case Open:
			b.stack = append(b.stack, tok.Value)
			if err := h.Open(b.stack, tok.Line); err != nil {
				return b.fail(tok.Line, err)
			}
		case Leaf:
			if err := h.Leaf(b.stack, tok.Value, tok.Line); err != nil {
				return b.fail(tok.Line, err)
			}
		case Close:
			if len(b.stack) == 0 {
				return b.fail(tok.Line, ErrStackUnderflow)
			}
			b.stack = b.stack[:len(b.stack)-1]
		case End:
			if !tok.EOF && b.opts.SkipBlankLines && len(b.stack) > 0 {
				b.warnf("skipped blank line at line %d inside %s", tok.Line, strings.Join(b.stack, "/"))
				tz.Resume()
				continue
			}
			if !tok.EOF {
				next, err := tz.TrailingContent()
				if err != nil {
					return b.fail(tz.line, err)
				}
				if next > 0 {
					b.warnf("ambiguous blank line at line %d: content follows the end sentinel (next at line %d)", tok.Line, next)
				}
			}
			if len(b.stack) > 0 {
				b.warnf("unclosed tags at end: %s", strings.Join(b.stack, "/"))
			}
			return nil
		}
	}
}
