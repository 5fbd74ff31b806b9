package ast

// UnaryOp is the operator of a UnaryExpr.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota + 1
	UnaryMinus
	UnaryPlus
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNot:
		return "NOT"
	case UnaryMinus:
		return "-"
	case UnaryPlus:
		return "+"
	default:
		return "?"
	}
}

// BinaryOp is the operator of a BinaryExpr.
type BinaryOp int

const (
	OpOr BinaryOp = iota + 1
	OpAnd
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLike
	OpIn
	OpBetween
	OpIs
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

var binaryOpNames = map[BinaryOp]string{
	OpOr:      "OR",
	OpAnd:     "AND",
	OpEq:      "=",
	OpNe:      "<>",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
	OpLike:    "LIKE",
	OpIn:      "IN",
	OpBetween: "BETWEEN",
	OpIs:      "IS",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpMod:     "%",
}

func (op BinaryOp) String() string {
	if name, ok := binaryOpNames[op]; ok {
		return name
	}
	return "?"
}

// AggregateOp names the aggregate functions of the language.
type AggregateOp int

const (
	AggCount AggregateOp = iota + 1
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (op AggregateOp) String() string {
	switch op {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	default:
		return "?"
	}
}

// PropertyExpr is a property reference, optionally qualified by an alias
// ("o.Total") or bare ("Total"). A bare reference that names a known alias
// is resolved by the SQL generator, not the parser.
type PropertyExpr struct {
	Position  int
	Qualifier string
	Name      string
}

// LiteralExpr is an inline constant. Value holds nil for NULL, string,
// int64, float64, bool, or time.Time for programmatically built trees.
type LiteralExpr struct {
	Position int
	Value    any
}

// ParamExpr is a named parameter marker such as ":minTotal".
type ParamExpr struct {
	Position int
	Name     string
}

// WildcardExpr is "*" or "alias.*". It is only meaningful as a select item
// or as the argument of COUNT.
type WildcardExpr struct {
	Position  int
	Qualifier string
}

// UnaryExpr applies NOT or an arithmetic sign to one operand.
type UnaryExpr struct {
	Position int
	Op       UnaryOp
	Operand  Expr
}

// BinaryExpr applies a binary operator. The parser encodes the ternary
// BETWEEN as Op == OpBetween with Right holding an OpAnd pair of the range
// bounds, IN as Op == OpIn with Right holding a *ListExpr, and IS NULL as
// Op == OpIs with Right holding a nil literal.
type BinaryExpr struct {
	Position int
	Op       BinaryOp
	Left     Expr
	Right    Expr
}

// ListExpr is the parenthesized value list of an IN predicate.
type ListExpr struct {
	Position int
	Items    []Expr
}

// FunctionExpr is a scalar function call. Name is kept as written; dialect
// mapping happens during SQL generation.
type FunctionExpr struct {
	Position int
	Name     string
	Args     []Expr
}

// AggregateExpr is an aggregate function call. Arg is a *WildcardExpr for
// COUNT(*).
type AggregateExpr struct {
	Position int
	Op       AggregateOp
	Distinct bool
	Arg      Expr
}

func (*PropertyExpr) exprNode()  {}
func (*LiteralExpr) exprNode()   {}
func (*ParamExpr) exprNode()     {}
func (*WildcardExpr) exprNode()  {}
func (*UnaryExpr) exprNode()     {}
func (*BinaryExpr) exprNode()    {}
func (*ListExpr) exprNode()      {}
func (*FunctionExpr) exprNode()  {}
func (*AggregateExpr) exprNode() {}

func (e *PropertyExpr) Pos() int  { return e.Position }
func (e *LiteralExpr) Pos() int   { return e.Position }
func (e *ParamExpr) Pos() int     { return e.Position }
func (e *WildcardExpr) Pos() int  { return e.Position }
func (e *UnaryExpr) Pos() int     { return e.Position }
func (e *BinaryExpr) Pos() int    { return e.Position }
func (e *ListExpr) Pos() int      { return e.Position }
func (e *FunctionExpr) Pos() int  { return e.Position }
func (e *AggregateExpr) Pos() int { return e.Position }
