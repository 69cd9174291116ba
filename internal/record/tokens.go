package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedToken reports a sequence token without a word/tag separator.
var ErrMalformedToken = errors.New("malformed word/tag token")

// Token is one word/tag pair of an encoded sequence.
type Token struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

// fields splits a tab-delimited sequence and drops empty fields, which covers the
// trailing tab every writer emits.
func fields(seq string) []string {
	seq = strings.TrimRight(seq, "\r\n")
	parts := strings.Split(seq, "\t")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TokenCount returns the number of non-empty tokens in seq.
func TokenCount(seq string) int {
	return len(fields(seq))
}

// SplitTokens splits seq on tabs and each token on its first '/'.
func SplitTokens(seq string) ([]Token, error) {
	parts := fields(seq)
	tokens := make([]Token, 0, len(parts))
	for i, p := range parts {
		word, tag, ok := strings.Cut(p, "/")
		if !ok {
			return nil, fmt.Errorf("%w: token %d %q", ErrMalformedToken, i, p)
		}
		tokens = append(tokens, Token{Word: word, Tag: tag})
	}
	return tokens, nil
}

// Tags returns the tag column of tokens.
func Tags(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Tag
	}
	return out
}

// Words returns the word column of tokens.
func Words(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Word
	}
	return out
}
