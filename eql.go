// Package eql compiles entity queries into dialect-specific SQL.
//
// Queries are written against entity and property names rather than tables
// and columns:
//
//	SELECT o.Id, c.Name FROM Order o JOIN o.customer c WHERE o.Total > :min
//
// Compile resolves those names through caller-supplied metadata and emits
// SQL for one of the supported dialects, together with the ordered list of
// named parameters the statement expects. Joins written as relationship
// navigations get their predicates inferred from the relationship's join
// columns; see the sqlgen package for the rules.
//
// Compilation is pure: no connections, no caching, no shared state. A
// Compiled value is immutable and safe to reuse from any number of
// goroutines.
package eql

import (
	"fmt"

	"github.com/ratanachh/eql/ast"
	"github.com/ratanachh/eql/dialect"
	"github.com/ratanachh/eql/metadata"
	"github.com/ratanachh/eql/params"
	"github.com/ratanachh/eql/parser"
	"github.com/ratanachh/eql/sqlgen"
)

// Compiled is the executable form of one entity query.
type Compiled struct {
	// SQL is the generated statement, with @name placeholders for the
	// query's named parameters.
	SQL string
	// ParameterNames lists the distinct placeholders in the order they
	// first appear in SQL.
	ParameterNames []string
	// Dialect is the dialect the SQL was generated for.
	Dialect dialect.Dialect
}

// Compile parses query and generates SQL for the given dialect. The primary
// entity's metadata is passed directly; relationship targets resolve through
// lookup, which may be nil for queries that never join. Errors are the
// originating stage's: *lexer.LexError, *parser.ParseError or
// *sqlgen.GenerationError.
func Compile(query string, primary *metadata.Entity, lookup metadata.Lookup, d dialect.Dialect, opts ...Option) (*Compiled, error) {
	stmt, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}
	return generate(stmt, primary, lookup, d, opts)
}

// CompileCount compiles the row-counting variant of a SELECT query, used to
// size a paginated result without fetching it. The projection is replaced
// per sqlgen.CountStatement; filters and joins survive, ordering does not.
func CompileCount(query string, primary *metadata.Entity, lookup metadata.Lookup, d dialect.Dialect, opts ...Option) (*Compiled, error) {
	stmt, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*ast.SelectStatement)
	if !ok {
		return nil, &sqlgen.GenerationError{
			Kind:   sqlgen.ErrUnsupported,
			Detail: fmt.Sprintf("counting requires a SELECT statement, got %T", stmt),
		}
	}
	return generate(sqlgen.CountStatement(sel), primary, lookup, d, opts)
}

// ParseStatement parses query without generating SQL, for callers that
// cache or inspect the tree. The returned statement can be handed to
// sqlgen.Generate any number of times, against different metadata and
// dialects.
func ParseStatement(query string) (ast.Statement, error) {
	return parser.Parse(query)
}

func generate(stmt ast.Statement, primary *metadata.Entity, lookup metadata.Lookup, d dialect.Dialect, opts []Option) (*Compiled, error) {
	res, err := sqlgen.Generate(stmt, primary, lookup, d, opts...)
	if err != nil {
		return nil, err
	}
	return &Compiled{SQL: res.SQL, ParameterNames: res.ParameterNames, Dialect: d}, nil
}

// Args returns the values for the statement's parameters in placeholder
// order, for drivers that take named parameters by position.
func (c *Compiled) Args(vals params.Values) ([]any, error) {
	return params.Bind(c.ParameterNames, vals)
}

// Positional rewrites the @name placeholders into the dialect's positional
// style and returns the matching argument list. See params.Positional.
func (c *Compiled) Positional(vals params.Values) (string, []any, error) {
	return params.Positional(c.SQL, vals, c.Dialect)
}
