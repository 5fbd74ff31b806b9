package dialect

import (
	"fmt"
	"strings"
)

// RenderFunction renders a scalar function call for the dialect. Well-known
// names are translated through the table below; anything else passes through
// as written, so vendor-specific functions keep working. Argument counts of
// the known functions are validated here because a wrong-arity call would
// otherwise surface as a confusing database error at execution time.
func RenderFunction(d Dialect, name string, args []string) (string, error) {
	if fn, ok := functions[strings.ToUpper(name)]; ok {
		return fn(d, args)
	}
	return name + "(" + strings.Join(args, ", ") + ")", nil
}

type renderFunc func(d Dialect, args []string) (string, error)

var functions = map[string]renderFunc{
	"UPPER": fixedArity("UPPER", 1, nil),
	"LOWER": fixedArity("LOWER", 1, nil),
	"TRIM":  fixedArity("TRIM", 1, nil),
	"ABS":   fixedArity("ABS", 1, nil),
	"SQRT":  fixedArity("SQRT", 1, nil),

	"LENGTH": fixedArity("LENGTH", 1, map[Dialect]string{SQLServer: "LEN"}),

	"SUBSTRING": func(d Dialect, args []string) (string, error) {
		if len(args) != 2 && len(args) != 3 {
			return "", arityError("SUBSTRING", "2 or 3", len(args))
		}
		name := "SUBSTRING"
		if d == SQLite {
			name = "SUBSTR"
		}
		if d == SQLServer && len(args) == 2 {
			// T-SQL SUBSTRING is strictly ternary
			return "SUBSTRING(" + args[0] + ", " + args[1] + ", 2147483647)", nil
		}
		return name + "(" + strings.Join(args, ", ") + ")", nil
	},

	// LOCATE(needle, haystack) returns the 1-based position of needle.
	"LOCATE": func(d Dialect, args []string) (string, error) {
		if len(args) != 2 {
			return "", arityError("LOCATE", "2", len(args))
		}
		switch d {
		case Postgres:
			return "POSITION(" + args[0] + " IN " + args[1] + ")", nil
		case SQLServer:
			return "CHARINDEX(" + args[0] + ", " + args[1] + ")", nil
		case SQLite:
			return "INSTR(" + args[1] + ", " + args[0] + ")", nil
		default:
			return "LOCATE(" + args[0] + ", " + args[1] + ")", nil
		}
	},

	"CONCAT": func(d Dialect, args []string) (string, error) {
		if len(args) < 2 {
			return "", arityError("CONCAT", "at least 2", len(args))
		}
		switch d {
		case Postgres, SQLite:
			return "(" + strings.Join(args, " || ") + ")", nil
		default:
			return "CONCAT(" + strings.Join(args, ", ") + ")", nil
		}
	},

	"MOD": func(d Dialect, args []string) (string, error) {
		if len(args) != 2 {
			return "", arityError("MOD", "2", len(args))
		}
		switch d {
		case SQLServer, SQLite:
			return "(" + args[0] + " % " + args[1] + ")", nil
		default:
			return "MOD(" + args[0] + ", " + args[1] + ")", nil
		}
	},

	"CURRENT_DATE": niladic("CURRENT_DATE", map[Dialect]string{
		SQLServer: "CONVERT(date, GETDATE())",
	}),
	"CURRENT_TIME": niladic("CURRENT_TIME", map[Dialect]string{
		SQLServer: "CONVERT(time, GETDATE())",
	}),
	"CURRENT_TIMESTAMP": niladic("CURRENT_TIMESTAMP", nil),
}

// fixedArity builds a renderer for a plain call that keeps its argument list
// and only ever changes name. overrides maps dialects to alternate names.
func fixedArity(name string, arity int, overrides map[Dialect]string) renderFunc {
	return func(d Dialect, args []string) (string, error) {
		if len(args) != arity {
			return "", arityError(name, fmt.Sprintf("%d", arity), len(args))
		}
		rendered := name
		if alt, ok := overrides[d]; ok {
			rendered = alt
		}
		return rendered + "(" + strings.Join(args, ", ") + ")", nil
	}
}

// niladic builds a renderer for a zero-argument function that is written
// without parentheses.
func niladic(name string, overrides map[Dialect]string) renderFunc {
	return func(d Dialect, args []string) (string, error) {
		if len(args) != 0 {
			return "", arityError(name, "0", len(args))
		}
		if alt, ok := overrides[d]; ok {
			return alt, nil
		}
		return name, nil
	}
}

func arityError(name, want string, got int) error {
	return fmt.Errorf("%s expects %s arguments, got %d", name, want, got)
}
