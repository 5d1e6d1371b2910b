package main

import (
	"fmt"
	"strings"

	"github.com/Geun-Oh/ufwlog/internal/query"
)

// comparison operators in matching order; two-character operators first so
// "<=" is not cut at "<".
var whereOps = []string{"==", "!=", "<=", ">=", "!%", "<", ">", "%"}

// parseWhere turns one --where flag into a leaf predicate.
// Comparison form: "DPT==25565", "SRC%192.168.", "LEN<100".
// Membership form: "DPT in 80,443" and "DPT not in 80,443".
func parseWhere(s string) (*query.Predicate, error) {
	if name, rest, ok := cutWord(s, " not in "); ok {
		f, err := fieldOf(name)
		if err != nil {
			return nil, err
		}
		return f.NotIn(listOperands(rest)...)
	}
	if name, rest, ok := cutWord(s, " in "); ok {
		f, err := fieldOf(name)
		if err != nil {
			return nil, err
		}
		return f.In(listOperands(rest)...)
	}

	for _, op := range whereOps {
		name, value, ok := strings.Cut(s, op)
		if !ok {
			continue
		}
		f, err := fieldOf(name)
		if err != nil {
			return nil, err
		}
		value = strings.TrimSpace(value)
		switch op {
		case "==":
			return f.Eq(value)
		case "!=":
			return f.Ne(value)
		case "<":
			return f.Lt(value)
		case "<=":
			return f.Le(value)
		case ">":
			return f.Gt(value)
		case ">=":
			return f.Ge(value)
		case "%":
			return f.Like(value)
		case "!%":
			return f.NotLike(value)
		}
	}
	return nil, fmt.Errorf("condition %q: no operator found", s)
}

// buildPredicate combines all --where conditions, with AND by default and OR
// under --any. Returns nil when no conditions were given.
func buildPredicate(wheres []string, anyMode bool) (*query.Predicate, error) {
	var combined *query.Predicate
	for _, w := range wheres {
		p, err := parseWhere(w)
		if err != nil {
			return nil, err
		}
		switch {
		case combined == nil:
			combined = p
		case anyMode:
			combined = combined.Or(p)
		default:
			combined = combined.And(p)
		}
	}
	return combined, nil
}

func fieldOf(name string) (query.Field, error) {
	name = strings.TrimSpace(name)
	f, ok := query.Lookup(name)
	if !ok {
		return query.Field{}, fmt.Errorf("unknown field %q", name)
	}
	return f, nil
}

func cutWord(s, sep string) (before, after string, found bool) {
	before, after, found = strings.Cut(s, sep)
	return strings.TrimSpace(before), strings.TrimSpace(after), found
}

func listOperands(s string) []any {
	parts := strings.Split(s, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
