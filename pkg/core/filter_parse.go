package core

import (
	"strconv"
	"strings"
)

// ParseFilter parses a filter expression string into a FilterCondition.
// Example: "(tag:ai OR tag:ml) AND year>2020 AND status IN (draft, final)"
//
// Supported syntax: AND/OR/NOT combinators, parentheses for grouping,
// comparison operators (=, !=, >, >=, <, <=), the ':' shorthand for
// equality, and "field IN (v1, v2, ...)". Values may be quoted strings,
// numbers or booleans; unquoted non-numeric values parse as strings.
func ParseFilter(expr string) (FilterCondition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return FilterCondition{}, InvalidFilterError("empty filter expression")
	}

	// Strip a fully-enclosing parenthesis pair
	if wrapped, inner := enclosedInParens(expr); wrapped {
		return ParseFilter(inner)
	}

	if idx := topLevelIndex(expr, " AND "); idx > 0 {
		left, err := ParseFilter(expr[:idx])
		if err != nil {
			return FilterCondition{}, err
		}
		right, err := ParseFilter(expr[idx+5:])
		if err != nil {
			return FilterCondition{}, err
		}
		return And(left, right), nil
	}

	if idx := topLevelIndex(expr, " OR "); idx > 0 {
		left, err := ParseFilter(expr[:idx])
		if err != nil {
			return FilterCondition{}, err
		}
		right, err := ParseFilter(expr[idx+4:])
		if err != nil {
			return FilterCondition{}, err
		}
		return Or(left, right), nil
	}

	if rest, ok := strings.CutPrefix(expr, "NOT "); ok {
		child, err := ParseFilter(rest)
		if err != nil {
			return FilterCondition{}, err
		}
		return Not(child), nil
	}

	return parseComparison(expr)
}

// enclosedInParens reports whether the whole expression sits inside one
// balanced parenthesis pair
func enclosedInParens(expr string) (bool, string) {
	if !strings.HasPrefix(expr, "(") || !strings.HasSuffix(expr, ")") {
		return false, ""
	}
	depth := 0
	for i, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(expr)-1 {
				return false, ""
			}
		}
	}
	if depth != 0 {
		return false, ""
	}
	return true, expr[1 : len(expr)-1]
}

// topLevelIndex finds the first occurrence of sep outside parentheses
func topLevelIndex(expr, sep string) int {
	depth := 0
	for i := 0; i+len(sep) <= len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && strings.HasPrefix(expr[i:], sep) {
			return i
		}
	}
	return -1
}

func parseComparison(expr string) (FilterCondition, error) {
	// " NOT IN " before " IN " so the shorter keyword does not shadow it
	if field, list, ok := splitKeyword(expr, " NOT IN "); ok {
		values, err := parseValueList(list)
		if err != nil {
			return FilterCondition{}, err
		}
		return NotIn(field, values...), nil
	}

	if field, list, ok := splitKeyword(expr, " IN "); ok {
		values, err := parseValueList(list)
		if err != nil {
			return FilterCondition{}, err
		}
		return In(field, values...), nil
	}

	// Longer operators first so ">=" is not read as ">"
	operators := []struct {
		token string
		op    FilterOp
	}{
		{">=", OpGte},
		{"<=", OpLte},
		{"!=", OpNe},
		{">", OpGt},
		{"<", OpLt},
		{"=", OpEq},
		{":", OpEq}, // shorthand
	}

	for _, candidate := range operators {
		idx := strings.Index(expr, candidate.token)
		if idx <= 0 {
			continue
		}
		field := strings.TrimSpace(expr[:idx])
		value := parseScalar(strings.TrimSpace(expr[idx+len(candidate.token):]))
		return FilterCondition{Op: candidate.op, Field: field, Value: value}, nil
	}

	return FilterCondition{}, InvalidFilterError("invalid filter expression: " + expr)
}

// splitKeyword splits "field KEYWORD rest" when KEYWORD appears outside
// parentheses
func splitKeyword(expr, keyword string) (field, rest string, ok bool) {
	idx := topLevelIndex(expr, keyword)
	if idx <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(expr[:idx]), strings.TrimSpace(expr[idx+len(keyword):]), true
}

func parseValueList(list string) ([]MetadataValue, error) {
	if !strings.HasPrefix(list, "(") || !strings.HasSuffix(list, ")") {
		return nil, InvalidFilterError("IN values must be in parentheses: " + list)
	}
	inner := list[1 : len(list)-1]
	parts := strings.Split(inner, ",")
	values := make([]MetadataValue, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		values = append(values, parseScalar(part))
	}
	if len(values) == 0 {
		return nil, InvalidFilterError("IN requires at least one value")
	}
	return values, nil
}

// parseScalar interprets a literal: quoted strings stay strings, then
// booleans, integers and floats, falling back to a bare string
func parseScalar(s string) MetadataValue {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return StringValue(s[1 : len(s)-1])
		}
	}

	switch s {
	case "true", "TRUE":
		return BoolValue(true)
	case "false", "FALSE":
		return BoolValue(false)
	case "null", "NULL":
		return NullValue()
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f)
	}

	return StringValue(s)
}
