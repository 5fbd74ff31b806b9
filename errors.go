package eql

import (
	"github.com/ratanachh/eql/lexer"
	"github.com/ratanachh/eql/parser"
	"github.com/ratanachh/eql/sqlgen"
)

// Stage errors pass through Compile unwrapped. The aliases let callers
// match them with errors.As without importing the stage packages.
type (
	LexError        = lexer.LexError
	ParseError      = parser.ParseError
	GenerationError = sqlgen.GenerationError
	ErrorKind       = sqlgen.ErrorKind
)

const (
	ErrUnknownDialect         = sqlgen.ErrUnknownDialect
	ErrUnknownEntity          = sqlgen.ErrUnknownEntity
	ErrUnresolvedAlias        = sqlgen.ErrUnresolvedAlias
	ErrUnknownProperty        = sqlgen.ErrUnknownProperty
	ErrUnresolvedRelationship = sqlgen.ErrUnresolvedRelationship
	ErrMissingMappedBy        = sqlgen.ErrMissingMappedBy
	ErrDuplicateAlias         = sqlgen.ErrDuplicateAlias
	ErrInvalidMetadata        = sqlgen.ErrInvalidMetadata
	ErrUnsupported            = sqlgen.ErrUnsupported
)

// IsKind reports whether err is a *GenerationError of the given kind.
func IsKind(err error, kind ErrorKind) bool { return sqlgen.IsKind(err, kind) }
