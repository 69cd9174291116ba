// Package scilog reads the nested-tag line format written by the experiment runner's
// XML logger: one structural element or one leaf value per physical line.
package scilog

import "fmt"

// TokenType is the structural kind of one log line.
type TokenType int

const (
	End TokenType = iota
	Open
	Close
	Leaf
)

func (t TokenType) String() string {
	switch t {
	case End:
		return "END"
	case Open:
		return "OPEN"
	case Close:
		return "CLOSE"
	case Leaf:
		return "LEAF"
	default:
		return "UNKNOWN"
	}
}

// Token is one classified line. Value holds the tag name for Open and the
// line text for Leaf.
type Token struct {
	Type  TokenType
	Value string
	Line  int
	// EOF is set on the End token produced by running out of input rather
	// than by a blank sentinel line.
	EOF bool
}

func (t Token) String() string {
	switch t.Type {
	case Open:
		return fmt.Sprintf("%s(%s)@%d", t.Type, t.Value, t.Line)
	case Leaf:
		return fmt.Sprintf("%s(%q)@%d", t.Type, t.Value, t.Line)
	default:
		return fmt.Sprintf("%s@%d", t.Type, t.Line)
	}
}

// Classify maps one line, terminator already stripped, to its token type.
// Self-closing element lines such as <entry name="b" value="1"/> are leaves:
// they carry data but never change depth.
func Classify(line string) (TokenType, string) {
	if line == "" {
		return End, ""
	}
	if len(line) >= 2 && line[0] == '<' && line[1] == '/' {
		return Close, ""
	}
	if len(line) >= 2 && line[0] == '<' && line[len(line)-1] == '>' {
		if line[len(line)-2] == '/' {
			return Leaf, line
		}
		return Open, line[1 : len(line)-1]
	}
	return Leaf, line
}
