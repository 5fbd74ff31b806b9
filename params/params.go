// Package params binds named query parameters to database/sql argument
// lists. Generated SQL carries @name placeholders regardless of dialect;
// this package rewrites them into whatever the target driver actually
// accepts: ? markers, $n indexes, or sql.Named arguments.
package params

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ratanachh/eql/dialect"
)

// Values maps parameter names, without the : or @ prefix, to their values.
type Values map[string]any

// ErrMissingValue reports a placeholder with no entry in Values. Extra
// entries are ignored so one value map can serve several queries.
var ErrMissingValue = errors.New("missing parameter value")

// Bind returns the values for names, in the given order.
func Bind(names []string, vals Values) ([]any, error) {
	args := make([]any, len(names))
	for i, name := range names {
		value, ok := vals[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingValue, name)
		}
		args[i] = value
	}
	return args, nil
}

// Named returns sql.Named arguments for names, in the given order, for
// drivers that take named parameters directly.
func Named(names []string, vals Values) ([]any, error) {
	values, err := Bind(names, vals)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = sql.Named(name, values[i])
	}
	return args, nil
}

// Positional rewrites the @name placeholders in query into the placeholder
// style of the dialect's canonical driver and returns the matching argument
// list:
//
//	MySQL, SQLite    ? markers, one argument per occurrence
//	Postgres         $n indexes, repeated names share one argument
//	SQL Server       @name kept as is, arguments become sql.Named
//
// Text inside single-quoted literals is left untouched.
func Positional(query string, vals Values, d dialect.Dialect) (string, []any, error) {
	var sb strings.Builder
	sb.Grow(len(query))
	var args []any
	indexes := make(map[string]int)
	inString := false

	for i := 0; i < len(query); {
		c := query[i]
		if c == '\'' {
			// a doubled quote inside a literal toggles twice, which
			// lands back in the right state
			inString = !inString
			sb.WriteByte(c)
			i++
			continue
		}
		if inString || c != '@' {
			sb.WriteByte(c)
			i++
			continue
		}

		name, width := scanName(query[i+1:])
		if name == "" {
			sb.WriteByte(c)
			i++
			continue
		}
		i += 1 + width

		value, ok := vals[name]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrMissingValue, name)
		}
		switch d {
		case dialect.Postgres:
			idx, seen := indexes[name]
			if !seen {
				args = append(args, value)
				idx = len(args)
				indexes[name] = idx
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(idx))
		case dialect.SQLServer:
			if _, seen := indexes[name]; !seen {
				args = append(args, sql.Named(name, value))
				indexes[name] = len(args)
			}
			sb.WriteString("@")
			sb.WriteString(name)
		default:
			args = append(args, value)
			sb.WriteByte('?')
		}
	}
	return sb.String(), args, nil
}

// scanName reads the identifier after an @ and returns it with its byte
// width. Placeholder names follow query identifier rules, so unicode letters
// count.
func scanName(s string) (string, int) {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isNameRune(r, i == 0) {
			break
		}
		i += size
	}
	return s[:i], i
}

func isNameRune(r rune, first bool) bool {
	if unicode.IsLetter(r) || r == '_' {
		return true
	}
	return !first && unicode.IsDigit(r)
}
