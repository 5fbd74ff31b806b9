package eql

import "github.com/ratanachh/eql/sqlgen"

// Option adjusts SQL generation.
type Option = sqlgen.Option

// WithMaxRows caps the number of rows a SELECT returns, rendered in the
// dialect's native form (LIMIT, TOP or FETCH NEXT).
func WithMaxRows(n int) Option { return sqlgen.WithMaxRows(n) }

// WithOffset skips the first n rows of a SELECT.
func WithOffset(n int) Option { return sqlgen.WithOffset(n) }
