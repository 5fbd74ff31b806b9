// Package sqlgen turns a parsed entity query plus relational metadata into
// dialect-specific SQL with named parameters.
//
// Generation is a pure function of its inputs: no connection, no caching, no
// state shared between calls. Each call walks the tree once, building the
// statement clause by clause into a strings.Builder and collecting parameter
// names in the order they first appear in the emitted SQL. Joins written as
// relationship navigations ("JOIN o.customer c") get their predicates from
// the join resolver in joins.go.
package sqlgen

import (
	"strings"

	"github.com/ratanachh/eql/ast"
	"github.com/ratanachh/eql/dialect"
	"github.com/ratanachh/eql/internal/debug"
	"github.com/ratanachh/eql/metadata"
)

// Result is the compiled form of one statement. SQL uses @name placeholders;
// ParameterNames lists every distinct placeholder in first-occurrence order
// so binders can validate supplied values.
type Result struct {
	SQL            string
	ParameterNames []string
}

// Generate emits SQL for stmt. The primary entity's metadata is passed
// directly; relationship targets are resolved through lookup, which may be
// nil for queries that never join. The error is always a *GenerationError.
func Generate(stmt ast.Statement, primary *metadata.Entity, lookup metadata.Lookup, d dialect.Dialect, opts ...Option) (*Result, error) {
	if stmt == nil {
		return nil, errf(ErrUnsupported, "nil statement")
	}
	if primary == nil {
		return nil, errf(ErrInvalidMetadata, "primary entity metadata is required")
	}
	if !d.Valid() {
		return nil, errf(ErrUnknownDialect, "dialect %d is not registered", int(d))
	}

	g := &generator{
		d:       d,
		lookup:  lookup,
		primary: primary,
		opts:    defaultOptions(),
		scopes:  make(map[string]*metadata.Entity),
		taken:   make(map[string]bool),
		params:  []string{},
		seen:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(&g.opts)
	}

	var sql string
	var err error
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		sql, err = g.selectSQL(s)
	case *ast.UpdateStatement:
		sql, err = g.updateSQL(s)
	case *ast.DeleteStatement:
		sql, err = g.deleteSQL(s)
	default:
		return nil, errf(ErrUnsupported, "statement type %T", stmt)
	}
	if err != nil {
		return nil, err
	}

	debug.Debug("sql generated", "dialect", d.String(), "entity", primary.Name, "params", len(g.params))
	return &Result{SQL: sql, ParameterNames: g.params}, nil
}

type generator struct {
	d       dialect.Dialect
	lookup  metadata.Lookup
	primary *metadata.Entity
	opts    options

	scopes       map[string]*metadata.Entity
	taken        map[string]bool // alias names in use, including synthetic ones
	primaryAlias string
	qualify      bool // SELECT qualifies columns by alias; UPDATE/DELETE must not

	params []string
	seen   map[string]bool
}

func (g *generator) selectSQL(s *ast.SelectStatement) (string, error) {
	g.qualify = true
	if err := g.validateLimits(); err != nil {
		return "", err
	}
	if err := g.bindPrimary(s.From.Entity, s.From.Alias); err != nil {
		return "", err
	}
	joins, err := g.bindJoins(s.Joins)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if s.Distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(g.d.TopClause(g.opts.maxRows, g.opts.offset))

	list, err := g.selectList(s.Items)
	if err != nil {
		return "", err
	}
	sb.WriteString(list)

	sb.WriteString(" FROM ")
	sb.WriteString(g.tableRef(g.primary, g.primaryAlias))

	for _, join := range joins {
		fragments, err := g.renderJoin(join)
		if err != nil {
			return "", err
		}
		for _, fragment := range fragments {
			sb.WriteByte(' ')
			sb.WriteString(fragment)
		}
	}

	if s.Where != nil {
		cond, err := g.expr(s.Where)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(cond)
	}

	if len(s.GroupBy) > 0 {
		keys := make([]string, len(s.GroupBy))
		for i, key := range s.GroupBy {
			if keys[i], err = g.expr(key); err != nil {
				return "", err
			}
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(keys, ", "))
	}

	if s.Having != nil {
		cond, err := g.expr(s.Having)
		if err != nil {
			return "", err
		}
		sb.WriteString(" HAVING ")
		sb.WriteString(cond)
	}

	if len(s.OrderBy) > 0 {
		keys := make([]string, len(s.OrderBy))
		for i, item := range s.OrderBy {
			key, err := g.expr(item.Expr)
			if err != nil {
				return "", err
			}
			if item.Desc {
				key += " DESC"
			} else {
				key += " ASC"
			}
			keys[i] = key
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(keys, ", "))
	}

	if limit := g.d.LimitClause(g.opts.maxRows, g.opts.offset); limit != "" {
		if g.d == dialect.SQLServer && len(s.OrderBy) == 0 {
			return "", errf(ErrUnsupported, "OFFSET requires an ORDER BY clause on %s", g.d)
		}
		sb.WriteByte(' ')
		sb.WriteString(limit)
	}
	return sb.String(), nil
}

// selectList renders the projection. A bare "*", a qualified "alias.*" and a
// bare alias item all expand to every mapped column of the aliased entity,
// each column-aliased by property name so rows map back to properties
// independent of declaration order.
func (g *generator) selectList(items []ast.SelectItem) (string, error) {
	var parts []string
	for _, item := range items {
		switch e := item.Expr.(type) {
		case *ast.WildcardExpr:
			alias := e.Qualifier
			if alias == "" {
				alias = g.primaryAlias
			}
			cols, err := g.expandAlias(alias, item.Alias)
			if err != nil {
				return "", err
			}
			parts = append(parts, cols...)
			continue
		case *ast.PropertyExpr:
			if e.Qualifier == "" {
				if _, bound := g.scopes[e.Name]; bound {
					cols, err := g.expandAlias(e.Name, item.Alias)
					if err != nil {
						return "", err
					}
					parts = append(parts, cols...)
					continue
				}
			}
		}
		rendered, err := g.expr(item.Expr)
		if err != nil {
			return "", err
		}
		if item.Alias != "" {
			rendered += " AS " + g.d.Quote(item.Alias)
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, ", "), nil
}

func (g *generator) expandAlias(alias, itemAlias string) ([]string, error) {
	if itemAlias != "" {
		return nil, errf(ErrUnsupported, "an expanded entity selection cannot carry the alias %q", itemAlias)
	}
	entity, ok := g.scopes[alias]
	if !ok {
		return nil, errf(ErrUnresolvedAlias, "alias %q is not declared in this query", alias)
	}
	if len(entity.Properties) == 0 {
		return nil, errf(ErrInvalidMetadata, "entity %q maps no properties to expand", entity.Name)
	}
	cols := make([]string, len(entity.Properties))
	for i, p := range entity.Properties {
		cols[i] = alias + "." + g.d.Quote(p.Column) + " AS " + g.d.Quote(p.Name)
	}
	return cols, nil
}

func (g *generator) updateSQL(u *ast.UpdateStatement) (string, error) {
	g.qualify = false
	if g.opts.limiting() {
		return "", errf(ErrUnsupported, "row limiting applies to SELECT statements only")
	}
	if err := g.bindPrimary(u.Entity, u.Alias); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(g.tableName(g.primary))
	sb.WriteString(" SET ")
	for i, set := range u.Sets {
		prop, ok := g.primary.Property(set.Property)
		if !ok {
			return "", errf(ErrUnknownProperty, "entity %q has no property %q", g.primary.Name, set.Property)
		}
		value, err := g.expr(set.Value)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(g.d.Quote(prop.Column))
		sb.WriteString(" = ")
		sb.WriteString(value)
	}

	if u.Where != nil {
		cond, err := g.expr(u.Where)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(cond)
	}
	return sb.String(), nil
}

func (g *generator) deleteSQL(del *ast.DeleteStatement) (string, error) {
	g.qualify = false
	if g.opts.limiting() {
		return "", errf(ErrUnsupported, "row limiting applies to SELECT statements only")
	}
	if err := g.bindPrimary(del.Entity, del.Alias); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(g.tableName(g.primary))
	if del.Where != nil {
		cond, err := g.expr(del.Where)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(cond)
	}
	return sb.String(), nil
}

func (g *generator) validateLimits() error {
	// options default to -1; anything below that means a caller passed a
	// negative value explicitly
	if g.opts.maxRows < -1 || g.opts.offset < -1 {
		return errf(ErrUnsupported, "row limits must not be negative")
	}
	return nil
}

// bindPrimary registers the statement's root alias. The query's entity name
// must agree with the supplied metadata; a mismatch means the caller wired
// the wrong mapping and deserves a loud failure, not a query against the
// wrong table.
func (g *generator) bindPrimary(entityName, alias string) error {
	if entityName != g.primary.Name {
		return errf(ErrInvalidMetadata, "query targets entity %q but metadata describes %q", entityName, g.primary.Name)
	}
	if alias == "" {
		alias = entityName
	}
	g.primaryAlias = alias
	return g.bind(alias, g.primary)
}

func (g *generator) bind(alias string, entity *metadata.Entity) error {
	if g.taken[alias] {
		return errf(ErrDuplicateAlias, "alias %q is declared more than once", alias)
	}
	g.taken[alias] = true
	g.scopes[alias] = entity
	return nil
}

func (g *generator) resolveEntity(name string) (*metadata.Entity, error) {
	if g.lookup != nil {
		if entity, ok := g.lookup.Entity(name); ok {
			return entity, nil
		}
	}
	return nil, errf(ErrUnknownEntity, "no metadata registered for entity %q", name)
}

// tableRef renders "schema"."table" AS alias for the FROM and JOIN clauses.
func (g *generator) tableRef(e *metadata.Entity, alias string) string {
	return g.tableName(e) + " AS " + alias
}

func (g *generator) tableName(e *metadata.Entity) string {
	name := g.d.Quote(e.Table)
	if e.Schema != "" {
		name = g.d.Quote(e.Schema) + "." + name
	}
	return name
}
