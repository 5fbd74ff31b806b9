package parser

import (
	"fmt"
	"strings"

	"github.com/ratanachh/eql/lexer"
)

// ParseError reports a grammar violation. Position is the byte offset of the
// offending token, Expected lists what the grammar would have accepted there,
// and Found describes the token actually present.
type ParseError struct {
	Position int
	Expected []string
	Found    string
	Hint     string // optional clarification, empty for plain mismatches
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "parse error at offset %d: expected %s, found %s",
		e.Position, strings.Join(e.Expected, " or "), e.Found)
	if e.Hint != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Hint)
		sb.WriteByte(')')
	}
	return sb.String()
}

// describeToken renders a token for diagnostics. Word tokens include their
// spelling so the message points at what the user actually wrote.
func describeToken(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.TokenIdent:
		return fmt.Sprintf("identifier %q", tok.Text)
	case lexer.TokenParam:
		return fmt.Sprintf("parameter :%s", tok.Text)
	case lexer.TokenInt, lexer.TokenDecimal:
		return fmt.Sprintf("number %s", tok.Text)
	case lexer.TokenString:
		return fmt.Sprintf("string %q", tok.Text)
	case lexer.TokenFunction:
		return fmt.Sprintf("function %q", tok.Text)
	default:
		return tok.Kind.String()
	}
}
