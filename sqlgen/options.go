package sqlgen

// Option adjusts SQL generation. Options apply to SELECT statements only;
// passing one to an UPDATE or DELETE is an error.
type Option func(*options)

type options struct {
	maxRows int
	offset  int
}

func defaultOptions() options {
	return options{maxRows: -1, offset: -1}
}

func (o options) limiting() bool { return o.maxRows >= 0 || o.offset >= 0 }

// WithMaxRows caps the number of returned rows, rendered in the dialect's
// native row-limiting form (LIMIT, TOP, FETCH NEXT).
func WithMaxRows(n int) Option {
	return func(o *options) { o.maxRows = n }
}

// WithOffset skips the first n rows. On SQL Server this requires the query
// to carry an ORDER BY clause.
func WithOffset(n int) Option {
	return func(o *options) { o.offset = n }
}
