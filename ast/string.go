package ast

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The String methods render canonical query text: keywords upper-cased,
// single spaces, binary expressions fully parenthesized. The form is stable
// under reparsing, which makes it the comparison currency for parser tests.

func (s *SelectStatement) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if s.Distinct {
		sb.WriteString("DISTINCT ")
	}
	for i, item := range s.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(item.Expr.String())
		if item.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(item.Alias)
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(s.From.Entity)
	if s.From.Alias != "" {
		sb.WriteByte(' ')
		sb.WriteString(s.From.Alias)
	}
	for _, join := range s.Joins {
		sb.WriteByte(' ')
		sb.WriteString(join.String())
	}
	writeWhere(&sb, s.Where)
	if len(s.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		for i, expr := range s.GroupBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(expr.String())
		}
	}
	if s.Having != nil {
		sb.WriteString(" HAVING ")
		sb.WriteString(s.Having.String())
	}
	if len(s.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, item := range s.OrderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(item.Expr.String())
			if item.Desc {
				sb.WriteString(" DESC")
			}
		}
	}
	return sb.String()
}

func (j JoinClause) String() string {
	var sb strings.Builder
	sb.WriteString(j.Type.String())
	sb.WriteByte(' ')
	if j.Owner != "" {
		sb.WriteString(j.Owner)
		sb.WriteByte('.')
	}
	sb.WriteString(j.Property)
	if j.Alias != "" {
		sb.WriteByte(' ')
		sb.WriteString(j.Alias)
	}
	if j.On != nil {
		sb.WriteString(" ON ")
		sb.WriteString(j.On.String())
	}
	return sb.String()
}

func (s *UpdateStatement) String() string {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(s.Entity)
	if s.Alias != "" {
		sb.WriteByte(' ')
		sb.WriteString(s.Alias)
	}
	sb.WriteString(" SET ")
	for i, set := range s.Sets {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(set.Property)
		sb.WriteString(" = ")
		sb.WriteString(set.Value.String())
	}
	writeWhere(&sb, s.Where)
	return sb.String()
}

func (s *DeleteStatement) String() string {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(s.Entity)
	if s.Alias != "" {
		sb.WriteByte(' ')
		sb.WriteString(s.Alias)
	}
	writeWhere(&sb, s.Where)
	return sb.String()
}

func writeWhere(sb *strings.Builder, where Expr) {
	if where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(where.String())
	}
}

func (e *PropertyExpr) String() string {
	if e.Qualifier == "" {
		return e.Name
	}
	return e.Qualifier + "." + e.Name
}

func (e *LiteralExpr) String() string {
	switch v := e.Value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05") + "'"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (e *ParamExpr) String() string { return ":" + e.Name }

func (e *WildcardExpr) String() string {
	if e.Qualifier == "" {
		return "*"
	}
	return e.Qualifier + ".*"
}

func (e *UnaryExpr) String() string {
	operand := "NULL"
	if e.Operand != nil {
		operand = e.Operand.String()
	}
	if e.Op == UnaryNot {
		return "NOT " + operand
	}
	return e.Op.String() + operand
}

func (e *BinaryExpr) String() string {
	left := "NULL"
	if e.Left != nil {
		left = e.Left.String()
	}
	switch e.Op {
	case OpBetween:
		if pair, ok := e.Right.(*BinaryExpr); ok && pair.Op == OpAnd {
			return "(" + left + " BETWEEN " + pair.Left.String() + " AND " + pair.Right.String() + ")"
		}
	case OpIs:
		if lit, ok := e.Right.(*LiteralExpr); ok && lit.Value == nil {
			return "(" + left + " IS NULL)"
		}
	}
	right := "NULL"
	if e.Right != nil {
		right = e.Right.String()
	}
	return "(" + left + " " + e.Op.String() + " " + right + ")"
}

func (e *ListExpr) String() string {
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		parts[i] = item.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (e *FunctionExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, arg := range e.Args {
		parts[i] = arg.String()
	}
	return e.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (e *AggregateExpr) String() string {
	var sb strings.Builder
	sb.WriteString(e.Op.String())
	sb.WriteByte('(')
	if e.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if e.Arg != nil {
		sb.WriteString(e.Arg.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
