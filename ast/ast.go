// Package ast defines the typed syntax tree for entity queries.
//
// The tree is a closed union: Statement and Expr are interfaces with
// unexported marker methods, so the full set of node shapes lives in this
// package and consumers can type-switch exhaustively. Nodes carry the byte
// offset of the token that introduced them, and every node can unparse
// itself back to canonical query text through String.
package ast

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos is the byte offset of the node's first token in the query text.
	// Programmatically built nodes may leave it zero.
	Pos() int
	// String renders the node as canonical query text. Parsing the result
	// of String yields a tree that unparses to the same text again.
	String() string
}

// Statement is a complete query. The concrete types are *SelectStatement,
// *UpdateStatement and *DeleteStatement.
type Statement interface {
	Node
	stmtNode()
}

// Expr is a value or condition expression.
type Expr interface {
	Node
	exprNode()
}

// JoinType distinguishes the join clause variants. The zero value is an
// inner join.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
)

func (j JoinType) String() string {
	switch j {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL JOIN"
	default:
		return "JOIN"
	}
}

// SelectStatement is a SELECT query.
type SelectStatement struct {
	Position int
	Distinct bool
	Items    []SelectItem
	From     FromClause
	Joins    []JoinClause
	Where    Expr // nil when absent
	GroupBy  []Expr
	Having   Expr // nil when absent
	OrderBy  []OrderItem
}

// SelectItem is one projected column of a SELECT.
type SelectItem struct {
	Expr  Expr
	Alias string // optional AS alias
}

// FromClause names the primary entity and its alias.
type FromClause struct {
	Position int
	Entity   string
	Alias    string // optional; emitters fall back to the entity name
}

// JoinClause is a relationship navigation such as "JOIN o.customer c".
// Owner is the qualifier before the dot and is empty when the navigation
// starts from the primary alias. On holds the explicit join condition when
// the query spells one; otherwise the join predicate is inferred from
// relationship metadata.
type JoinClause struct {
	Position int
	Type     JoinType
	Owner    string
	Property string
	Alias    string // optional; emitters fall back to the property name
	On       Expr   // nil unless an ON condition was written
}

// OrderItem is one sort key of an ORDER BY clause.
type OrderItem struct {
	Expr Expr
	Desc bool
}

// UpdateStatement is an UPDATE query.
type UpdateStatement struct {
	Position int
	Entity   string
	Alias    string
	Sets     []Assignment
	Where    Expr // nil when absent
}

// Assignment is one "property = value" pair of a SET clause. The property
// name is stored unqualified; the parser validates and strips any alias
// qualifier.
type Assignment struct {
	Property string
	Value    Expr
}

// DeleteStatement is a DELETE query.
type DeleteStatement struct {
	Position int
	Entity   string
	Alias    string
	Where    Expr // nil when absent
}

func (*SelectStatement) stmtNode() {}
func (*UpdateStatement) stmtNode() {}
func (*DeleteStatement) stmtNode() {}

func (s *SelectStatement) Pos() int { return s.Position }
func (s *UpdateStatement) Pos() int { return s.Position }
func (s *DeleteStatement) Pos() int { return s.Position }
