// Package dialect captures the per-database differences the SQL generator
// delegates: identifier quoting, scalar function spellings, and row limiting.
// Everything here is a small, explicit lookup keyed by the Dialect value so
// the generator itself stays dialect-agnostic.
package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects a target database's SQL flavour. The zero value is invalid
// so an unset dialect cannot silently pick a default.
type Dialect int

const (
	MySQL Dialect = iota + 1
	Postgres
	SQLServer
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case MySQL:
		return "mysql"
	case Postgres:
		return "postgres"
	case SQLServer:
		return "sqlserver"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Valid reports whether d names one of the supported dialects.
func (d Dialect) Valid() bool {
	return d >= MySQL && d <= SQLite
}

// Parse maps a configuration string to a Dialect. Common driver aliases are
// accepted; anything else is an error.
func Parse(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pg", "pgx":
		return Postgres, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", name)
	}
}

// Quote wraps an identifier in the dialect's quoting characters, doubling
// any embedded closing quote.
func (d Dialect) Quote(ident string) string {
	switch d {
	case MySQL:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	case SQLServer:
		return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
	case Postgres, SQLite:
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	default:
		return ident
	}
}

// TopClause returns the SELECT-head row limiter for dialects that express a
// plain limit there. Only SQL Server uses it, and only when no offset is in
// play; the returned string carries its own trailing space.
func (d Dialect) TopClause(maxRows, offset int) string {
	if d == SQLServer && maxRows >= 0 && offset < 0 {
		return "TOP " + strconv.Itoa(maxRows) + " "
	}
	return ""
}

// LimitClause returns the trailing row-limit clause, without leading space,
// or "" when nothing is needed. maxRows and offset use -1 for "absent".
//
// MySQL cannot express an offset without a limit, so a bare offset gets the
// documented all-rows limit. SQLite uses LIMIT -1 for the same situation.
// SQL Server row limiting with an offset uses OFFSET/FETCH, which is only
// legal after an ORDER BY; the generator validates that before calling.
func (d Dialect) LimitClause(maxRows, offset int) string {
	if maxRows < 0 && offset < 0 {
		return ""
	}
	switch d {
	case MySQL:
		if maxRows < 0 {
			return "LIMIT 18446744073709551615 OFFSET " + strconv.Itoa(offset)
		}
		if offset < 0 {
			return "LIMIT " + strconv.Itoa(maxRows)
		}
		return "LIMIT " + strconv.Itoa(maxRows) + " OFFSET " + strconv.Itoa(offset)
	case Postgres:
		switch {
		case maxRows < 0:
			return "OFFSET " + strconv.Itoa(offset)
		case offset < 0:
			return "LIMIT " + strconv.Itoa(maxRows)
		default:
			return "LIMIT " + strconv.Itoa(maxRows) + " OFFSET " + strconv.Itoa(offset)
		}
	case SQLite:
		if maxRows < 0 {
			return "LIMIT -1 OFFSET " + strconv.Itoa(offset)
		}
		if offset < 0 {
			return "LIMIT " + strconv.Itoa(maxRows)
		}
		return "LIMIT " + strconv.Itoa(maxRows) + " OFFSET " + strconv.Itoa(offset)
	case SQLServer:
		if offset < 0 {
			// plain limit was already rendered as TOP
			return ""
		}
		clause := "OFFSET " + strconv.Itoa(offset) + " ROWS"
		if maxRows >= 0 {
			clause += " FETCH NEXT " + strconv.Itoa(maxRows) + " ROWS ONLY"
		}
		return clause
	default:
		return ""
	}
}
