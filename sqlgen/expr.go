package sqlgen

import (
	"strconv"
	"strings"
	"time"

	"github.com/ratanachh/eql/ast"
	"github.com/ratanachh/eql/dialect"
)

func (g *generator) expr(e ast.Expr) (string, error) {
	switch x := e.(type) {
	case *ast.PropertyExpr:
		return g.column(x)
	case *ast.LiteralExpr:
		return renderLiteral(x.Value)
	case *ast.ParamExpr:
		g.registerParam(x.Name)
		return "@" + x.Name, nil
	case *ast.UnaryExpr:
		return g.unary(x)
	case *ast.BinaryExpr:
		return g.binary(x)
	case *ast.ListExpr:
		return g.list(x)
	case *ast.FunctionExpr:
		return g.function(x)
	case *ast.AggregateExpr:
		return g.aggregate(x)
	case *ast.WildcardExpr:
		return "", errf(ErrUnsupported, "a wildcard is only valid as a select item or inside COUNT")
	case nil:
		return "", errf(ErrUnsupported, "missing expression")
	default:
		return "", errf(ErrUnsupported, "expression type %T", e)
	}
}

// column resolves a property reference to its (possibly alias-qualified)
// column. An unqualified name resolves against the primary alias.
func (g *generator) column(p *ast.PropertyExpr) (string, error) {
	alias := p.Qualifier
	if alias == "" {
		alias = g.primaryAlias
	}
	entity, ok := g.scopes[alias]
	if !ok {
		return "", errf(ErrUnresolvedAlias, "alias %q is not declared in this query", alias)
	}
	prop, ok := entity.Property(p.Name)
	if !ok {
		return "", errf(ErrUnknownProperty, "entity %q has no property %q", entity.Name, p.Name)
	}
	if !g.qualify {
		return g.d.Quote(prop.Column), nil
	}
	return alias + "." + g.d.Quote(prop.Column), nil
}

func (g *generator) registerParam(name string) {
	if !g.seen[name] {
		g.seen[name] = true
		g.params = append(g.params, name)
	}
}

func (g *generator) unary(u *ast.UnaryExpr) (string, error) {
	operand, err := g.expr(u.Operand)
	if err != nil {
		return "", err
	}
	if _, isBinary := u.Operand.(*ast.BinaryExpr); isBinary {
		operand = "(" + operand + ")"
	}
	switch u.Op {
	case ast.UnaryNot:
		return "NOT " + operand, nil
	case ast.UnaryMinus:
		return "-" + operand, nil
	case ast.UnaryPlus:
		return "+" + operand, nil
	default:
		return "", errf(ErrUnsupported, "unary operator %d", int(u.Op))
	}
}

// sqlPrec orders binary operators for minimal parenthesization. Higher binds
// tighter.
func sqlPrec(op ast.BinaryOp) int {
	switch op {
	case ast.OpOr:
		return 1
	case ast.OpAnd:
		return 2
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe,
		ast.OpLike, ast.OpIn, ast.OpBetween, ast.OpIs:
		return 3
	case ast.OpAdd, ast.OpSub:
		return 4
	default:
		return 5
	}
}

func (g *generator) binary(b *ast.BinaryExpr) (string, error) {
	switch b.Op {
	case ast.OpBetween:
		return g.between(b)
	case ast.OpIn:
		return g.in(b)
	case ast.OpIs:
		return g.isNull(b)
	}

	prec := sqlPrec(b.Op)
	left, err := g.operand(b.Left, prec, false)
	if err != nil {
		return "", err
	}
	right, err := g.operand(b.Right, prec, true)
	if err != nil {
		return "", err
	}

	var op string
	switch b.Op {
	case ast.OpOr:
		op = "OR"
	case ast.OpAnd:
		op = "AND"
	case ast.OpEq:
		op = "="
	case ast.OpNe:
		op = "<>"
	case ast.OpLt:
		op = "<"
	case ast.OpLe:
		op = "<="
	case ast.OpGt:
		op = ">"
	case ast.OpGe:
		op = ">="
	case ast.OpLike:
		op = "LIKE"
	case ast.OpAdd:
		op = "+"
	case ast.OpSub:
		op = "-"
	case ast.OpMul:
		op = "*"
	case ast.OpDiv:
		op = "/"
	case ast.OpMod:
		op = "%"
	default:
		return "", errf(ErrUnsupported, "binary operator %d", int(b.Op))
	}
	return left + " " + op + " " + right, nil
}

// operand renders a child of a binary expression, parenthesizing when the
// child binds looser than the parent, or equally on the right-hand side, so
// the emitted SQL reproduces the tree shape exactly.
func (g *generator) operand(e ast.Expr, parentPrec int, rightSide bool) (string, error) {
	rendered, err := g.expr(e)
	if err != nil {
		return "", err
	}
	child, isBinary := e.(*ast.BinaryExpr)
	if !isBinary {
		return rendered, nil
	}
	childPrec := sqlPrec(child.Op)
	if childPrec < parentPrec || (rightSide && childPrec == parentPrec) {
		return "(" + rendered + ")", nil
	}
	return rendered, nil
}

func (g *generator) between(b *ast.BinaryExpr) (string, error) {
	pair, ok := b.Right.(*ast.BinaryExpr)
	if !ok || pair.Op != ast.OpAnd {
		return "", errf(ErrUnsupported, "BETWEEN requires a bounds pair")
	}
	subject, err := g.operand(b.Left, 3, false)
	if err != nil {
		return "", err
	}
	low, err := g.operand(pair.Left, 3, true)
	if err != nil {
		return "", err
	}
	high, err := g.operand(pair.Right, 3, true)
	if err != nil {
		return "", err
	}
	return subject + " BETWEEN " + low + " AND " + high, nil
}

func (g *generator) in(b *ast.BinaryExpr) (string, error) {
	list, ok := b.Right.(*ast.ListExpr)
	if !ok {
		return "", errf(ErrUnsupported, "IN requires a value list")
	}
	subject, err := g.operand(b.Left, 3, false)
	if err != nil {
		return "", err
	}
	values, err := g.list(list)
	if err != nil {
		return "", err
	}
	return subject + " IN " + values, nil
}

func (g *generator) isNull(b *ast.BinaryExpr) (string, error) {
	lit, ok := b.Right.(*ast.LiteralExpr)
	if !ok || lit.Value != nil {
		return "", errf(ErrUnsupported, "IS supports only NULL")
	}
	subject, err := g.operand(b.Left, 3, false)
	if err != nil {
		return "", err
	}
	return subject + " IS NULL", nil
}

func (g *generator) list(l *ast.ListExpr) (string, error) {
	if len(l.Items) == 0 {
		return "", errf(ErrUnsupported, "empty value list")
	}
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		rendered, err := g.expr(item)
		if err != nil {
			return "", err
		}
		parts[i] = rendered
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

func (g *generator) function(f *ast.FunctionExpr) (string, error) {
	args := make([]string, len(f.Args))
	for i, arg := range f.Args {
		rendered, err := g.expr(arg)
		if err != nil {
			return "", err
		}
		args[i] = rendered
	}
	rendered, err := dialect.RenderFunction(g.d, f.Name, args)
	if err != nil {
		return "", errf(ErrUnsupported, "%v", err)
	}
	return rendered, nil
}

// aggregate renders COUNT/SUM/AVG/MIN/MAX. COUNT(*) stays a star; a bare
// alias argument (COUNT(o)) counts the entity by its primary key column.
func (g *generator) aggregate(a *ast.AggregateExpr) (string, error) {
	arg, err := g.aggregateArg(a)
	if err != nil {
		return "", err
	}
	if a.Distinct {
		arg = "DISTINCT " + arg
	}
	return a.Op.String() + "(" + arg + ")", nil
}

func (g *generator) aggregateArg(a *ast.AggregateExpr) (string, error) {
	switch inner := a.Arg.(type) {
	case *ast.WildcardExpr:
		if a.Op != ast.AggCount {
			return "", errf(ErrUnsupported, "%s does not accept a wildcard argument", a.Op)
		}
		if inner.Qualifier == "" {
			return "*", nil
		}
		return g.entityKeyColumn(inner.Qualifier)
	case *ast.PropertyExpr:
		if inner.Qualifier == "" {
			if _, bound := g.scopes[inner.Name]; bound {
				return g.entityKeyColumn(inner.Name)
			}
		}
		return g.expr(inner)
	case nil:
		return "", errf(ErrUnsupported, "%s requires an argument", a.Op)
	default:
		return g.expr(a.Arg)
	}
}

// entityKeyColumn renders the primary key column of the entity bound to
// alias, used when an aggregate names a whole entity.
func (g *generator) entityKeyColumn(alias string) (string, error) {
	entity, ok := g.scopes[alias]
	if !ok {
		return "", errf(ErrUnresolvedAlias, "alias %q is not declared in this query", alias)
	}
	pk, ok := entity.PrimaryKey()
	if !ok {
		return "", errf(ErrInvalidMetadata, "counting entity %q requires a primary key", entity.Name)
	}
	if !g.qualify {
		return g.d.Quote(pk.Column), nil
	}
	return alias + "." + g.d.Quote(pk.Column), nil
}

// renderLiteral writes a constant with dialect-neutral escaping: quotes
// doubled in strings, booleans as 0/1, timestamps in ISO order.
func renderLiteral(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05") + "'", nil
	default:
		return "", errf(ErrUnsupported, "literal type %T", value)
	}
}
