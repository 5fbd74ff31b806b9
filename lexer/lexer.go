// Package lexer converts entity query text into a flat token stream.
//
// The scanner is a single forward pass over the raw bytes. It understands
// SQL-style comments (-- to end of line, /* ... */), single-quoted string
// literals with '' as the escape for an embedded quote, culture-independent
// numeric literals, :name parameter markers, and case-insensitive keywords.
// Positions are byte offsets into the original text so diagnostics can point
// at the exact character that produced a token.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LexError reports a character-level scanning failure. Position is the byte
// offset of the offending character.
type LexError struct {
	Position int
	Message  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Position, e.Message)
}

type scanner struct {
	input string
	pos   int
}

// Tokenize scans query and returns its tokens. The returned slice always
// ends with a TokenEOF whose position is len(query). On failure it returns
// a *LexError and no tokens.
func Tokenize(query string) ([]Token, error) {
	s := &scanner{input: query}
	var tokens []Token
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

func (s *scanner) next() (Token, error) {
	if err := s.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	start := s.pos
	if s.eof() {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	c := s.input[s.pos]
	switch {
	case c == '\'':
		return s.scanString()
	case isDigit(c):
		return s.scanNumber()
	case c == ':':
		return s.scanParam()
	case c < utf8.RuneSelf && isIdentStart(rune(c)):
		return s.scanIdent()
	case c >= utf8.RuneSelf:
		r, _ := utf8.DecodeRuneInString(s.input[s.pos:])
		if unicode.IsLetter(r) {
			return s.scanIdent()
		}
		return Token{}, &LexError{Position: start, Message: fmt.Sprintf("unexpected character %q", r)}
	}

	s.pos++
	switch c {
	case '=':
		return Token{Kind: TokenEq, Text: "=", Pos: start}, nil
	case '<':
		if s.accept('>') {
			return Token{Kind: TokenNe, Text: "<>", Pos: start}, nil
		}
		if s.accept('=') {
			return Token{Kind: TokenLe, Text: "<=", Pos: start}, nil
		}
		return Token{Kind: TokenLt, Text: "<", Pos: start}, nil
	case '>':
		if s.accept('=') {
			return Token{Kind: TokenGe, Text: ">=", Pos: start}, nil
		}
		return Token{Kind: TokenGt, Text: ">", Pos: start}, nil
	case '!':
		if s.accept('=') {
			return Token{Kind: TokenNe, Text: "!=", Pos: start}, nil
		}
		return Token{}, &LexError{Position: start, Message: "unexpected character '!' (did you mean !=?)"}
	case '+':
		return Token{Kind: TokenPlus, Text: "+", Pos: start}, nil
	case '-':
		return Token{Kind: TokenMinus, Text: "-", Pos: start}, nil
	case '*':
		return Token{Kind: TokenStar, Text: "*", Pos: start}, nil
	case '/':
		return Token{Kind: TokenSlash, Text: "/", Pos: start}, nil
	case '%':
		return Token{Kind: TokenPercent, Text: "%", Pos: start}, nil
	case '.':
		return Token{Kind: TokenDot, Text: ".", Pos: start}, nil
	case ',':
		return Token{Kind: TokenComma, Text: ",", Pos: start}, nil
	case '(':
		return Token{Kind: TokenLParen, Text: "(", Pos: start}, nil
	case ')':
		return Token{Kind: TokenRParen, Text: ")", Pos: start}, nil
	}
	return Token{}, &LexError{Position: start, Message: fmt.Sprintf("unexpected character %q", rune(c))}
}

func (s *scanner) skipSpaceAndComments() error {
	for !s.eof() {
		c := s.input[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.pos++
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(s.input[s.pos:])
			if !unicode.IsSpace(r) {
				return nil
			}
			s.pos += size
		case c == '-' && s.peekAt(1) == '-':
			for !s.eof() && s.input[s.pos] != '\n' {
				s.pos++
			}
		case c == '/' && s.peekAt(1) == '*':
			start := s.pos
			s.pos += 2
			for {
				if s.eof() {
					return &LexError{Position: start, Message: "unterminated block comment"}
				}
				if s.input[s.pos] == '*' && s.peekAt(1) == '/' {
					s.pos += 2
					break
				}
				s.pos++
			}
		default:
			return nil
		}
	}
	return nil
}

// scanString decodes a single-quoted literal. A doubled quote inside the
// literal stands for one quote character.
func (s *scanner) scanString() (Token, error) {
	start := s.pos
	s.pos++ // opening quote
	var sb strings.Builder
	for {
		if s.eof() {
			return Token{}, &LexError{Position: start, Message: "unterminated string literal"}
		}
		c := s.input[s.pos]
		if c == '\'' {
			if s.peekAt(1) == '\'' {
				sb.WriteByte('\'')
				s.pos += 2
				continue
			}
			s.pos++
			return Token{Kind: TokenString, Text: sb.String(), Pos: start}, nil
		}
		sb.WriteByte(c)
		s.pos++
	}
}

// scanNumber reads an integer or decimal literal. Only '.' separates the
// fraction, regardless of host locale, and the dot is consumed only when a
// digit follows so that ranges like "1..2" or trailing dots stay visible to
// the parser as errors.
func (s *scanner) scanNumber() (Token, error) {
	start := s.pos
	for !s.eof() && isDigit(s.input[s.pos]) {
		s.pos++
	}
	kind := TokenInt
	if !s.eof() && s.input[s.pos] == '.' && isDigit(s.peekAt(1)) {
		kind = TokenDecimal
		s.pos++
		for !s.eof() && isDigit(s.input[s.pos]) {
			s.pos++
		}
	}
	return Token{Kind: kind, Text: s.input[start:s.pos], Pos: start}, nil
}

func (s *scanner) scanParam() (Token, error) {
	start := s.pos
	s.pos++ // colon
	if s.eof() || !isIdentStart(rune(s.input[s.pos])) {
		return Token{}, &LexError{Position: start, Message: "expected parameter name after ':'"}
	}
	nameStart := s.pos
	s.scanIdentTail()
	return Token{Kind: TokenParam, Text: s.input[nameStart:s.pos], Pos: start}, nil
}

func (s *scanner) scanIdent() (Token, error) {
	start := s.pos
	s.scanIdentTail()
	word := s.input[start:s.pos]
	return Token{Kind: lookupIdent(word), Text: word, Pos: start}, nil
}

func (s *scanner) scanIdentTail() {
	for !s.eof() {
		c := s.input[s.pos]
		if c < utf8.RuneSelf {
			if !isIdentPart(rune(c)) {
				return
			}
			s.pos++
			continue
		}
		r, size := utf8.DecodeRuneInString(s.input[s.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return
		}
		s.pos += size
	}
}

func (s *scanner) eof() bool { return s.pos >= len(s.input) }

// peekAt returns the byte n positions ahead of the cursor, or 0 past the end.
func (s *scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.input) {
		return 0
	}
	return s.input[s.pos+n]
}

func (s *scanner) accept(c byte) bool {
	if !s.eof() && s.input[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= utf8.RuneSelf && unicode.IsLetter(r))
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
