package sqlgen

import (
	"errors"
	"fmt"
)

// ErrorKind classifies generation failures so callers can react to the
// category without parsing message text.
type ErrorKind string

const (
	ErrUnknownDialect         ErrorKind = "unknown_dialect"
	ErrUnknownEntity          ErrorKind = "unknown_entity"
	ErrUnresolvedAlias        ErrorKind = "unresolved_alias"
	ErrUnknownProperty        ErrorKind = "unknown_property"
	ErrUnresolvedRelationship ErrorKind = "unresolved_relationship"
	ErrMissingMappedBy        ErrorKind = "missing_mapped_by"
	ErrDuplicateAlias         ErrorKind = "duplicate_alias"
	ErrInvalidMetadata        ErrorKind = "invalid_metadata"
	ErrUnsupported            ErrorKind = "unsupported"
)

// GenerationError reports why SQL generation failed. Generation is
// all-or-nothing: when an error is returned, no partial SQL exists.
type GenerationError struct {
	Kind   ErrorKind
	Detail string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("sql generation failed (%s): %s", e.Kind, e.Detail)
}

func errf(kind ErrorKind, format string, args ...any) *GenerationError {
	return &GenerationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// AsGenerationError unwraps err to a *GenerationError when there is one.
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

// IsKind reports whether err is a GenerationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	genErr, ok := AsGenerationError(err)
	return ok && genErr.Kind == kind
}
