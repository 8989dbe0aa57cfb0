package core

import "strings"

// FilterOp identifies a filter condition node.
type FilterOp string

const (
	OpEq         FilterOp = "eq"
	OpNe         FilterOp = "ne"
	OpGt         FilterOp = "gt"
	OpGte        FilterOp = "gte"
	OpLt         FilterOp = "lt"
	OpLte        FilterOp = "lte"
	OpIn         FilterOp = "in"
	OpNotIn      FilterOp = "not_in"
	OpExists     FilterOp = "exists"
	OpNotExists  FilterOp = "not_exists"
	OpContains   FilterOp = "contains"
	OpStartsWith FilterOp = "starts_with"
	OpEndsWith   FilterOp = "ends_with"
	OpAnd        FilterOp = "and"
	OpOr         FilterOp = "or"
	OpNot        FilterOp = "not"
)

// FilterCondition is a recursive boolean predicate over document metadata.
// Leaf nodes compare one field against Value or Values; And/Or/Not compose
// child conditions. Evaluation is a pure function of the condition and a
// metadata map and never touches the embedding.
type FilterCondition struct {
	Op       FilterOp          `json:"op"`
	Field    string            `json:"field,omitempty"`
	Value    MetadataValue     `json:"value"`
	Values   []MetadataValue   `json:"values,omitempty"`
	Children []FilterCondition `json:"children,omitempty"`
}

// Eq matches when the field is present and equal to value
func Eq(field string, value MetadataValue) FilterCondition {
	return FilterCondition{Op: OpEq, Field: field, Value: value}
}

// Ne matches when the field is absent, or present and not equal to value
func Ne(field string, value MetadataValue) FilterCondition {
	return FilterCondition{Op: OpNe, Field: field, Value: value}
}

// Gt matches when the field compares greater than value. Only
// numeric-numeric and string-string comparisons succeed.
func Gt(field string, value MetadataValue) FilterCondition {
	return FilterCondition{Op: OpGt, Field: field, Value: value}
}

// Gte matches when the field compares greater than or equal to value
func Gte(field string, value MetadataValue) FilterCondition {
	return FilterCondition{Op: OpGte, Field: field, Value: value}
}

// Lt matches when the field compares less than value
func Lt(field string, value MetadataValue) FilterCondition {
	return FilterCondition{Op: OpLt, Field: field, Value: value}
}

// Lte matches when the field compares less than or equal to value
func Lte(field string, value MetadataValue) FilterCondition {
	return FilterCondition{Op: OpLte, Field: field, Value: value}
}

// In matches when the field's value equals any element of values
func In(field string, values ...MetadataValue) FilterCondition {
	return FilterCondition{Op: OpIn, Field: field, Values: values}
}

// NotIn matches when the field is absent or equals none of values
func NotIn(field string, values ...MetadataValue) FilterCondition {
	return FilterCondition{Op: OpNotIn, Field: field, Values: values}
}

// Exists matches when the field is present
func Exists(field string) FilterCondition {
	return FilterCondition{Op: OpExists, Field: field}
}

// NotExists matches when the field is absent
func NotExists(field string) FilterCondition {
	return FilterCondition{Op: OpNotExists, Field: field}
}

// Contains matches string fields containing substring
func Contains(field, substring string) FilterCondition {
	return FilterCondition{Op: OpContains, Field: field, Value: StringValue(substring)}
}

// StartsWith matches string fields starting with prefix
func StartsWith(field, prefix string) FilterCondition {
	return FilterCondition{Op: OpStartsWith, Field: field, Value: StringValue(prefix)}
}

// EndsWith matches string fields ending with suffix
func EndsWith(field, suffix string) FilterCondition {
	return FilterCondition{Op: OpEndsWith, Field: field, Value: StringValue(suffix)}
}

// And matches when every child matches. And() with no children matches
// everything.
func And(conditions ...FilterCondition) FilterCondition {
	return FilterCondition{Op: OpAnd, Children: conditions}
}

// Or matches when any child matches. Or() with no children matches
// nothing.
func Or(conditions ...FilterCondition) FilterCondition {
	return FilterCondition{Op: OpOr, Children: conditions}
}

// Not negates a condition
func Not(condition FilterCondition) FilterCondition {
	return FilterCondition{Op: OpNot, Children: []FilterCondition{condition}}
}

// EvaluateFilter evaluates a filter condition against a metadata map. It
// is a pure function: no side effects, no access to the embedding.
//
// Absence semantics: Eq/Gt/Gte/Lt/Lte/In and the string operators evaluate
// false on a missing field; Ne, NotIn and NotExists evaluate true.
func EvaluateFilter(cond FilterCondition, metadata Metadata) bool {
	switch cond.Op {
	case OpEq:
		v, ok := metadata[cond.Field]
		return ok && v.Equal(cond.Value)

	case OpNe:
		v, ok := metadata[cond.Field]
		return !ok || !v.Equal(cond.Value)

	case OpGt:
		return compareOrdered(metadata, cond.Field, cond.Value, func(c int) bool { return c > 0 })

	case OpGte:
		return compareOrdered(metadata, cond.Field, cond.Value, func(c int) bool { return c >= 0 })

	case OpLt:
		return compareOrdered(metadata, cond.Field, cond.Value, func(c int) bool { return c < 0 })

	case OpLte:
		return compareOrdered(metadata, cond.Field, cond.Value, func(c int) bool { return c <= 0 })

	case OpIn:
		v, ok := metadata[cond.Field]
		if !ok {
			return false
		}
		for _, candidate := range cond.Values {
			if v.Equal(candidate) {
				return true
			}
		}
		return false

	case OpNotIn:
		v, ok := metadata[cond.Field]
		if !ok {
			return true
		}
		for _, candidate := range cond.Values {
			if v.Equal(candidate) {
				return false
			}
		}
		return true

	case OpExists:
		_, ok := metadata[cond.Field]
		return ok

	case OpNotExists:
		_, ok := metadata[cond.Field]
		return !ok

	case OpContains:
		return stringOp(metadata, cond, strings.Contains)

	case OpStartsWith:
		return stringOp(metadata, cond, strings.HasPrefix)

	case OpEndsWith:
		return stringOp(metadata, cond, strings.HasSuffix)

	case OpAnd:
		for _, child := range cond.Children {
			if !EvaluateFilter(child, metadata) {
				return false
			}
		}
		return true

	case OpOr:
		for _, child := range cond.Children {
			if EvaluateFilter(child, metadata) {
				return true
			}
		}
		return false

	case OpNot:
		if len(cond.Children) != 1 {
			return false
		}
		return !EvaluateFilter(cond.Children[0], metadata)

	default:
		return false
	}
}

// compareOrdered handles Gt/Gte/Lt/Lte. Numbers compare against numbers
// (integers coerced to float), strings against strings in natural order.
// A missing field or any type mismatch fails the comparison.
func compareOrdered(metadata Metadata, field string, value MetadataValue, accept func(int) bool) bool {
	v, ok := metadata[field]
	if !ok {
		return false
	}

	if fieldNum, ok := v.AsFloat(); ok {
		filterNum, ok := value.AsFloat()
		if !ok {
			return false
		}
		switch {
		case fieldNum < filterNum:
			return accept(-1)
		case fieldNum > filterNum:
			return accept(1)
		default:
			return accept(0)
		}
	}

	if fieldStr, ok := v.StringVal(); ok {
		filterStr, ok := value.StringVal()
		if !ok {
			return false
		}
		return accept(strings.Compare(fieldStr, filterStr))
	}

	return false
}

// stringOp applies a string predicate to string-typed fields only
func stringOp(metadata Metadata, cond FilterCondition, op func(s, arg string) bool) bool {
	v, ok := metadata[cond.Field]
	if !ok {
		return false
	}
	s, ok := v.StringVal()
	if !ok {
		return false
	}
	arg, _ := cond.Value.StringVal()
	return op(s, arg)
}

// Validate checks the structural sanity of a filter tree
func (c FilterCondition) Validate() error {
	switch c.Op {
	case OpAnd, OpOr:
		for _, child := range c.Children {
			if err := child.Validate(); err != nil {
				return err
			}
		}
		return nil
	case OpNot:
		if len(c.Children) != 1 {
			return InvalidFilterError("not condition requires exactly one child")
		}
		return c.Children[0].Validate()
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpNotIn,
		OpExists, OpNotExists, OpContains, OpStartsWith, OpEndsWith:
		if c.Field == "" {
			return InvalidFilterError("filter condition requires a field name")
		}
		return nil
	default:
		return InvalidFilterError("unknown filter operator: " + string(c.Op))
	}
}
