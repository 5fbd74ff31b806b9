package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratanachh/eql/lexer"
)

func kinds(tokens []lexer.Token) []lexer.TokenKind {
	out := make([]lexer.TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeSelect(t *testing.T) {
	tokens, err := lexer.Tokenize("SELECT o.Total FROM Order o WHERE o.Status = :status")
	require.NoError(t, err)

	assert.Equal(t, []lexer.TokenKind{
		lexer.TokenSelect,
		lexer.TokenIdent, lexer.TokenDot, lexer.TokenIdent,
		lexer.TokenFrom,
		lexer.TokenIdent, lexer.TokenIdent,
		lexer.TokenWhere,
		lexer.TokenIdent, lexer.TokenDot, lexer.TokenIdent,
		lexer.TokenEq,
		lexer.TokenParam,
		lexer.TokenEOF,
	}, kinds(tokens))

	assert.Equal(t, "status", tokens[12].Text)
	assert.Equal(t, 45, tokens[12].Pos, "parameter starts at the colon")
}

func TestTokenizeKeywordsCaseInsensitive(t *testing.T) {
	for _, query := range []string{
		"SELECT u FROM User u",
		"select u from User u",
		"SeLeCt u FrOm User u",
	} {
		tokens, err := lexer.Tokenize(query)
		require.NoError(t, err, query)
		assert.Equal(t, lexer.TokenSelect, tokens[0].Kind)
		assert.Equal(t, lexer.TokenFrom, tokens[2].Kind)
	}
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain", "'hello'", "hello"},
		{"empty", "''", ""},
		{"escaped quote", "'it''s'", "it's"},
		{"only escapes", "''''", "'"},
		{"keeps case and spaces", "'A b C'", "A b C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := lexer.Tokenize(tt.query)
			require.NoError(t, err)
			require.Equal(t, lexer.TokenString, tokens[0].Kind)
			assert.Equal(t, tt.want, tokens[0].Text)
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tokens, err := lexer.Tokenize("42 3.14 0.5 1000")
	require.NoError(t, err)
	assert.Equal(t, []lexer.TokenKind{
		lexer.TokenInt, lexer.TokenDecimal, lexer.TokenDecimal, lexer.TokenInt, lexer.TokenEOF,
	}, kinds(tokens))
	assert.Equal(t, "3.14", tokens[1].Text)

	// A dot without a following digit is not part of the number.
	tokens, err = lexer.Tokenize("1.x")
	require.NoError(t, err)
	assert.Equal(t, []lexer.TokenKind{
		lexer.TokenInt, lexer.TokenDot, lexer.TokenIdent, lexer.TokenEOF,
	}, kinds(tokens))
}

func TestTokenizeComments(t *testing.T) {
	tokens, err := lexer.Tokenize("SELECT u -- trailing comment\nFROM /* block\ncomment */ User u")
	require.NoError(t, err)
	assert.Equal(t, []lexer.TokenKind{
		lexer.TokenSelect, lexer.TokenIdent,
		lexer.TokenFrom, lexer.TokenIdent, lexer.TokenIdent,
		lexer.TokenEOF,
	}, kinds(tokens))
}

func TestTokenizeOperators(t *testing.T) {
	tokens, err := lexer.Tokenize("= <> != < <= > >= + - * / % . , ( )")
	require.NoError(t, err)
	assert.Equal(t, []lexer.TokenKind{
		lexer.TokenEq, lexer.TokenNe, lexer.TokenNe,
		lexer.TokenLt, lexer.TokenLe, lexer.TokenGt, lexer.TokenGe,
		lexer.TokenPlus, lexer.TokenMinus, lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent,
		lexer.TokenDot, lexer.TokenComma, lexer.TokenLParen, lexer.TokenRParen,
		lexer.TokenEOF,
	}, kinds(tokens))
}

func TestTokenizeBuiltinFunctions(t *testing.T) {
	tokens, err := lexer.Tokenize("upper(u.Name) LENGTH(u.Name) custom_fn(1)")
	require.NoError(t, err)
	assert.Equal(t, lexer.TokenFunction, tokens[0].Kind)
	assert.Equal(t, "upper", tokens[0].Text, "original spelling is preserved")
	assert.Equal(t, lexer.TokenFunction, tokens[6].Kind)
	assert.Equal(t, lexer.TokenIdent, tokens[12].Kind, "unknown names stay identifiers")
}

func TestTokenizeUnicodeIdentifier(t *testing.T) {
	tokens, err := lexer.Tokenize("SELECT bestellung FROM Bestellung bestellung WHERE bestellung.Straße = 'x'")
	require.NoError(t, err)
	assert.Equal(t, lexer.TokenIdent, tokens[1].Kind)
	assert.Equal(t, "Straße", tokens[8].Text)
}

func TestTokenizeEOFPosition(t *testing.T) {
	query := "SELECT u FROM User u"
	tokens, err := lexer.Tokenize(query)
	require.NoError(t, err)
	last := tokens[len(tokens)-1]
	assert.Equal(t, lexer.TokenEOF, last.Kind)
	assert.Equal(t, len(query), last.Pos)
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		pos     int
		message string
	}{
		{"unterminated string", "WHERE u.Name = 'abc", 15, "unterminated string literal"},
		{"unterminated block comment", "SELECT /* oops", 7, "unterminated block comment"},
		{"bare colon", "WHERE u.Id = :", 13, "expected parameter name after ':'"},
		{"colon before digit", "WHERE u.Id = :1", 13, "expected parameter name after ':'"},
		{"lone bang", "WHERE u.Id ! 1", 11, "unexpected character '!'"},
		{"stray punctuation", "SELECT u;", 8, "unexpected character ';'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lexer.Tokenize(tt.query)
			require.Error(t, err)
			var lexErr *lexer.LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.pos, lexErr.Position)
			assert.True(t, strings.HasPrefix(lexErr.Message, tt.message),
				"message %q should start with %q", lexErr.Message, tt.message)
		})
	}
}
