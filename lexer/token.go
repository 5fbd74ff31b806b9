package lexer

import "strings"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenParam
	TokenInt
	TokenDecimal
	TokenString

	// Structural keywords.
	TokenSelect
	TokenFrom
	TokenWhere
	TokenJoin
	TokenInner
	TokenLeft
	TokenRight
	TokenFull
	TokenOuter
	TokenOn
	TokenAs
	TokenGroup
	TokenBy
	TokenHaving
	TokenOrder
	TokenAsc
	TokenDesc
	TokenDistinct
	TokenUpdate
	TokenSet
	TokenDelete

	// Logical and predicate keywords.
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenBetween
	TokenLike
	TokenIs
	TokenNull
	TokenTrue
	TokenFalse

	// Aggregate function keywords.
	TokenCount
	TokenSum
	TokenAvg
	TokenMin
	TokenMax

	// TokenFunction covers the scalar built-ins (UPPER, LENGTH, ...).
	// The token text carries the function name as written.
	TokenFunction

	// Operators.
	TokenEq      // =
	TokenNe      // <> or !=
	TokenLt      // <
	TokenLe      // <=
	TokenGt      // >
	TokenGe      // >=
	TokenPlus    // +
	TokenMinus   // -
	TokenStar    // *
	TokenSlash   // /
	TokenPercent // %

	// Punctuation.
	TokenDot    // .
	TokenComma  // ,
	TokenLParen // (
	TokenRParen // )
)

// Token is a single lexical unit of a query. Pos is the byte offset of the
// token's first character in the source text. For TokenString the Text holds
// the decoded value (quotes stripped, '' collapsed); for TokenParam it holds
// the parameter name without the leading colon; for everything else it holds
// the source text as written.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

var kindNames = map[TokenKind]string{
	TokenEOF:      "end of query",
	TokenIdent:    "identifier",
	TokenParam:    "parameter",
	TokenInt:      "integer literal",
	TokenDecimal:  "decimal literal",
	TokenString:   "string literal",
	TokenSelect:   "SELECT",
	TokenFrom:     "FROM",
	TokenWhere:    "WHERE",
	TokenJoin:     "JOIN",
	TokenInner:    "INNER",
	TokenLeft:     "LEFT",
	TokenRight:    "RIGHT",
	TokenFull:     "FULL",
	TokenOuter:    "OUTER",
	TokenOn:       "ON",
	TokenAs:       "AS",
	TokenGroup:    "GROUP",
	TokenBy:       "BY",
	TokenHaving:   "HAVING",
	TokenOrder:    "ORDER",
	TokenAsc:      "ASC",
	TokenDesc:     "DESC",
	TokenDistinct: "DISTINCT",
	TokenUpdate:   "UPDATE",
	TokenSet:      "SET",
	TokenDelete:   "DELETE",
	TokenAnd:      "AND",
	TokenOr:       "OR",
	TokenNot:      "NOT",
	TokenIn:       "IN",
	TokenBetween:  "BETWEEN",
	TokenLike:     "LIKE",
	TokenIs:       "IS",
	TokenNull:     "NULL",
	TokenTrue:     "TRUE",
	TokenFalse:    "FALSE",
	TokenCount:    "COUNT",
	TokenSum:      "SUM",
	TokenAvg:      "AVG",
	TokenMin:      "MIN",
	TokenMax:      "MAX",
	TokenFunction: "function",
	TokenEq:       "=",
	TokenNe:       "<>",
	TokenLt:       "<",
	TokenLe:       "<=",
	TokenGt:       ">",
	TokenGe:       ">=",
	TokenPlus:     "+",
	TokenMinus:    "-",
	TokenStar:     "*",
	TokenSlash:    "/",
	TokenPercent:  "%",
	TokenDot:      ".",
	TokenComma:    ",",
	TokenLParen:   "(",
	TokenRParen:   ")",
}

func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown token"
}

// Wordlike reports whether the kind is spelled as a bare word: an identifier,
// a keyword, or a built-in function name. The parser accepts any wordlike
// token where the grammar demands a name, so entities and properties may be
// called Order, Count or Left without colliding with the keyword table.
func (k TokenKind) Wordlike() bool {
	return k == TokenIdent || k == TokenFunction || (k >= TokenSelect && k <= TokenMax)
}

// keywords maps the upper-cased spelling of every reserved word to its kind.
// Lookup is case-insensitive; SeLeCt and select lex identically.
var keywords = map[string]TokenKind{
	"SELECT":   TokenSelect,
	"FROM":     TokenFrom,
	"WHERE":    TokenWhere,
	"JOIN":     TokenJoin,
	"INNER":    TokenInner,
	"LEFT":     TokenLeft,
	"RIGHT":    TokenRight,
	"FULL":     TokenFull,
	"OUTER":    TokenOuter,
	"ON":       TokenOn,
	"AS":       TokenAs,
	"GROUP":    TokenGroup,
	"BY":       TokenBy,
	"HAVING":   TokenHaving,
	"ORDER":    TokenOrder,
	"ASC":      TokenAsc,
	"DESC":     TokenDesc,
	"DISTINCT": TokenDistinct,
	"UPDATE":   TokenUpdate,
	"SET":      TokenSet,
	"DELETE":   TokenDelete,
	"AND":      TokenAnd,
	"OR":       TokenOr,
	"NOT":      TokenNot,
	"IN":       TokenIn,
	"BETWEEN":  TokenBetween,
	"LIKE":     TokenLike,
	"IS":       TokenIs,
	"NULL":     TokenNull,
	"TRUE":     TokenTrue,
	"FALSE":    TokenFalse,
	"COUNT":    TokenCount,
	"SUM":      TokenSum,
	"AVG":      TokenAvg,
	"MIN":      TokenMin,
	"MAX":      TokenMax,
}

// builtins are the scalar functions recognized as TokenFunction. Anything
// else followed by '(' still parses as a user function call; this set only
// exists so the well-known names survive being spelled in any case.
var builtins = map[string]bool{
	"UPPER":             true,
	"LOWER":             true,
	"LENGTH":            true,
	"TRIM":              true,
	"SUBSTRING":         true,
	"CONCAT":            true,
	"LOCATE":            true,
	"ABS":               true,
	"SQRT":              true,
	"MOD":               true,
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
	"CURRENT_TIMESTAMP": true,
}

func lookupIdent(word string) TokenKind {
	upper := strings.ToUpper(word)
	if kind, ok := keywords[upper]; ok {
		return kind
	}
	if builtins[upper] {
		return TokenFunction
	}
	return TokenIdent
}
