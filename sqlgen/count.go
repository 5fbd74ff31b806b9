package sqlgen

import "github.com/ratanachh/eql/ast"

// IsCountStatement reports whether the statement already computes a single
// aggregate count, meaning it can run as-is to size a result set. The check
// walks the tree, so formatting, casing, and leading comments in the source
// query cannot fool it.
func IsCountStatement(stmt ast.Statement) bool {
	s, ok := stmt.(*ast.SelectStatement)
	if !ok {
		return false
	}
	if len(s.Items) != 1 || len(s.GroupBy) > 0 {
		return false
	}
	agg, ok := s.Items[0].Expr.(*ast.AggregateExpr)
	return ok && agg.Op == ast.AggCount
}

// CountStatement derives the statement that counts the rows the given SELECT
// would return. A DISTINCT projection over a single countable expression
// becomes COUNT(DISTINCT expr); anything else counts rows with COUNT(*).
// Ordering is dropped since it cannot change the count. Grouping is kept, so
// a grouped query yields one count per group.
//
// A statement that already counts (per IsCountStatement) is returned as
// given, minus ordering and item aliases.
func CountStatement(s *ast.SelectStatement) *ast.SelectStatement {
	counted := *s
	counted.OrderBy = nil
	if IsCountStatement(s) {
		counted.Items = []ast.SelectItem{{Expr: s.Items[0].Expr}}
		return &counted
	}

	agg := &ast.AggregateExpr{
		Position: s.Position,
		Op:       ast.AggCount,
		Arg:      &ast.WildcardExpr{Position: s.Position},
	}
	if s.Distinct && len(s.Items) == 1 && countableDistinct(s.Items[0].Expr) {
		agg.Distinct = true
		agg.Arg = s.Items[0].Expr
	}
	counted.Distinct = false
	counted.Items = []ast.SelectItem{{Expr: agg}}
	return &counted
}

// countableDistinct reports whether expr can appear as the argument of
// COUNT(DISTINCT ...). The unqualified wildcard cannot: SQL has no
// COUNT(DISTINCT *), so such queries fall back to counting rows.
func countableDistinct(expr ast.Expr) bool {
	w, ok := expr.(*ast.WildcardExpr)
	return !ok || w.Qualifier != ""
}
