package core

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueKind discriminates the closed set of metadata value types.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindArray
	KindObject
)

// String returns the string representation of the value kind
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// MetadataValue is a JSON-like value attached to documents. It is a closed
// tagged union: String, Integer, Float, Boolean, Array, Object or Null.
// The zero value is Null.
type MetadataValue struct {
	kind ValueKind
	str  string
	i64  int64
	f64  float64
	b    bool
	arr  []MetadataValue
	obj  map[string]MetadataValue
}

// Metadata maps field names to metadata values.
type Metadata = map[string]MetadataValue

// StringValue creates a string metadata value
func StringValue(s string) MetadataValue {
	return MetadataValue{kind: KindString, str: s}
}

// IntValue creates an integer metadata value
func IntValue(i int64) MetadataValue {
	return MetadataValue{kind: KindInt, i64: i}
}

// FloatValue creates a float metadata value
func FloatValue(f float64) MetadataValue {
	return MetadataValue{kind: KindFloat, f64: f}
}

// BoolValue creates a boolean metadata value
func BoolValue(b bool) MetadataValue {
	return MetadataValue{kind: KindBool, b: b}
}

// ArrayValue creates an array metadata value
func ArrayValue(values ...MetadataValue) MetadataValue {
	return MetadataValue{kind: KindArray, arr: values}
}

// ObjectValue creates an object metadata value
func ObjectValue(fields map[string]MetadataValue) MetadataValue {
	return MetadataValue{kind: KindObject, obj: fields}
}

// NullValue creates a null metadata value
func NullValue() MetadataValue {
	return MetadataValue{kind: KindNull}
}

// Kind returns the kind of this value
func (v MetadataValue) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null
func (v MetadataValue) IsNull() bool { return v.kind == KindNull }

// StringVal returns the string payload if the value is a string
func (v MetadataValue) StringVal() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// IntVal returns the integer payload if the value is an integer
func (v MetadataValue) IntVal() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i64, true
}

// FloatVal returns the float payload if the value is a float
func (v MetadataValue) FloatVal() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f64, true
}

// BoolVal returns the boolean payload if the value is a boolean
func (v MetadataValue) BoolVal() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// ArrayVal returns the element slice if the value is an array
func (v MetadataValue) ArrayVal() ([]MetadataValue, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// ObjectVal returns the field map if the value is an object
func (v MetadataValue) ObjectVal() (map[string]MetadataValue, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// AsFloat coerces integer and float values to float64 for numeric
// comparison. Other kinds are not numeric.
func (v MetadataValue) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i64), true
	case KindFloat:
		return v.f64, true
	default:
		return 0, false
	}
}

// Equal reports deep equality of two metadata values. Integers and floats
// are distinct kinds and never equal each other.
func (v MetadataValue) Equal(other MetadataValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindInt:
		return v.i64 == other.i64
	case KindFloat:
		return v.f64 == other.f64
	case KindBool:
		return v.b == other.b
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, val := range v.obj {
			ov, ok := other.obj[k]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value for diagnostics and CLI output
func (v MetadataValue) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindInt:
		return fmt.Sprintf("%d", v.i64)
	case KindFloat:
		return fmt.Sprintf("%g", v.f64)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.obj[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the value untagged, as plain JSON. Floats always
// carry a decimal point or exponent so whole-valued floats stay
// distinguishable from integers on decode.
func (v MetadataValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindInt:
		return json.Marshal(v.i64)
	case KindFloat:
		if math.IsNaN(v.f64) || math.IsInf(v.f64, 0) {
			return nil, fmt.Errorf("cannot encode non-finite float: %v", v.f64)
		}
		s := strconv.FormatFloat(v.f64, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return []byte(s), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindArray:
		return json.Marshal(v.arr)
	case KindObject:
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("unknown metadata value kind %d", v.kind)
	}
}

// UnmarshalJSON decodes untagged JSON. Number literals without a decimal
// point or exponent become integers, everything else becomes a float.
func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = NullValue()
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '[':
		var arr []MetadataValue
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*v = MetadataValue{kind: KindArray, arr: arr}
	case '{':
		var obj map[string]MetadataValue
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*v = MetadataValue{kind: KindObject, obj: obj}
	default:
		// Parse integer literals directly so values above 2^53 survive
		if !strings.ContainsAny(trimmed, ".eE") {
			if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
				*v = IntValue(i)
				return nil
			}
		}
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = FloatValue(f)
	}
	return nil
}
