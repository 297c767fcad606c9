package filter

import (
	"fmt"
	"strings"
)

// ToSQL lowers the filter to a parameterized SQL fragment using
// `properties ->> ?` JSON extraction (requires SQLite's JSON1 ->> operator,
// i.e. SQLite >= 3.38.0). Parameters are collected in left-to-right
// traversal order. Returns ("", nil) for a nil filter.
func (f *Filter) ToSQL() (string, []any) {
	if f == nil {
		return "", nil
	}
	var params []any
	clause := toSQL(f.Expr, &params)
	return clause, params
}

func toSQL(e Expr, params *[]any) string {
	switch v := e.(type) {
	case Comparison:
		*params = append(*params, v.Key, valueParam(v.Val))
		return fmt.Sprintf("(properties ->> ? %s ?)", opSQL(v.Op))
	case OneOf:
		placeholders := make([]string, len(v.Values))
		*params = append(*params, v.Key)
		for i, val := range v.Values {
			placeholders[i] = "?"
			*params = append(*params, valueParam(val))
		}
		return fmt.Sprintf("(properties ->> ? IN (%s))", strings.Join(placeholders, ", "))
	case HasKey:
		*params = append(*params, v.Key)
		return "(properties ->> ? IS NOT NULL)"
	case Like:
		*params = append(*params, v.Key, v.Pattern)
		return "(properties ->> ? LIKE ?)"
	case And:
		left := toSQL(v.Left, params)
		right := toSQL(v.Right, params)
		return fmt.Sprintf("(%s AND %s)", left, right)
	case Or:
		left := toSQL(v.Left, params)
		right := toSQL(v.Right, params)
		return fmt.Sprintf("(%s OR %s)", left, right)
	case Not:
		inner := toSQL(v.Inner, params)
		return fmt.Sprintf("(NOT %s)", inner)
	default:
		panic(fmt.Sprintf("filter: unhandled expr type %T", e))
	}
}

func opSQL(op Op) string {
	switch op {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	default:
		panic("filter: unknown op")
	}
}

func valueParam(v Value) any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	default:
		panic("filter: unknown value kind")
	}
}
