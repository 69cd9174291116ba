package scilog

import "io"

// tokenize reads r to its first End and returns all tokens, End included.
func tokenize(r io.Reader) ([]Token, error) {
	tz := NewTokenizer(r)
	var out []Token
	for {
		tok, err := tz.Next()
		if err != nil {
			return out, err
		}
		out = append(out, tok)
		if tok.Type == End {
			return out, nil
		}
	}
}
