package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestMetadataValueKinds(t *testing.T) {
	tests := []struct {
		name  string
		value MetadataValue
		kind  ValueKind
	}{
		{"string", StringValue("hello"), KindString},
		{"int", IntValue(42), KindInt},
		{"float", FloatValue(3.14), KindFloat},
		{"bool", BoolValue(true), KindBool},
		{"array", ArrayValue(IntValue(1), IntValue(2)), KindArray},
		{"object", ObjectValue(map[string]MetadataValue{"k": StringValue("v")}), KindObject},
		{"null", NullValue(), KindNull},
		{"zero value is null", MetadataValue{}, KindNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.value.Kind(), tt.kind)
			}
		})
	}
}

func TestMetadataValueEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     MetadataValue
		expected bool
	}{
		{"equal strings", StringValue("a"), StringValue("a"), true},
		{"different strings", StringValue("a"), StringValue("b"), false},
		{"equal ints", IntValue(5), IntValue(5), true},
		{"int never equals float", IntValue(5), FloatValue(5.0), false},
		{"equal bools", BoolValue(true), BoolValue(true), true},
		{"nulls are equal", NullValue(), NullValue(), true},
		{"null vs string", NullValue(), StringValue(""), false},
		{
			"equal arrays",
			ArrayValue(IntValue(1), StringValue("x")),
			ArrayValue(IntValue(1), StringValue("x")),
			true,
		},
		{
			"arrays differ in order",
			ArrayValue(IntValue(1), IntValue(2)),
			ArrayValue(IntValue(2), IntValue(1)),
			false,
		},
		{
			"equal objects",
			ObjectValue(map[string]MetadataValue{"a": IntValue(1), "b": BoolValue(false)}),
			ObjectValue(map[string]MetadataValue{"b": BoolValue(false), "a": IntValue(1)}),
			true,
		},
		{
			"objects differ in value",
			ObjectValue(map[string]MetadataValue{"a": IntValue(1)}),
			ObjectValue(map[string]MetadataValue{"a": IntValue(2)}),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.expected {
				t.Errorf("Equal() = %v, want %v", got, tt.expected)
			}
			if got := tt.b.Equal(tt.a); got != tt.expected {
				t.Errorf("Equal() not symmetric: %v", got)
			}
		})
	}
}

func TestMetadataValueAsFloat(t *testing.T) {
	if f, ok := IntValue(42).AsFloat(); !ok || f != 42.0 {
		t.Errorf("AsFloat() on int = (%v, %v)", f, ok)
	}
	if f, ok := FloatValue(2.5).AsFloat(); !ok || f != 2.5 {
		t.Errorf("AsFloat() on float = (%v, %v)", f, ok)
	}
	if _, ok := StringValue("42").AsFloat(); ok {
		t.Error("AsFloat() on string should fail")
	}
	if _, ok := BoolValue(true).AsFloat(); ok {
		t.Error("AsFloat() on bool should fail")
	}
}

func TestMetadataValueJSONRoundTrip(t *testing.T) {
	original := ObjectValue(map[string]MetadataValue{
		"name":    StringValue("test"),
		"count":   IntValue(7),
		"score":   FloatValue(0.95),
		"active":  BoolValue(true),
		"missing": NullValue(),
		"tags":    ArrayValue(StringValue("a"), StringValue("b")),
		"nested":  ObjectValue(map[string]MetadataValue{"deep": IntValue(1)}),
	})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded MetadataValue
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !original.Equal(decoded) {
		t.Errorf("round trip mismatch:\n  original: %v\n  decoded:  %v", original, decoded)
	}
}

func TestMetadataValueNumberDecoding(t *testing.T) {
	tests := []struct {
		input string
		kind  ValueKind
	}{
		{"42", KindInt},
		{"-7", KindInt},
		{"0", KindInt},
		{"4.5", KindFloat},
		{"42.0", KindFloat},
		{"1e3", KindFloat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var v MetadataValue
			if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
				t.Fatalf("Unmarshal(%q) failed: %v", tt.input, err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("Unmarshal(%q) kind = %v, want %v", tt.input, v.Kind(), tt.kind)
			}
		})
	}
}

func TestMetadataValueFloatEncoding(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{2.0, "2.0"},
		{-7.0, "-7.0"},
		{4.5, "4.5"},
		{1e21, "1e+21"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			data, err := json.Marshal(FloatValue(tt.value))
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("Marshal(FloatValue(%v)) = %s, want %s", tt.value, data, tt.expected)
			}

			var decoded MetadataValue
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if decoded.Kind() != KindFloat {
				t.Errorf("round trip kind = %v, want float", decoded.Kind())
			}
			if f, _ := decoded.FloatVal(); f != tt.value {
				t.Errorf("round trip value = %v, want %v", f, tt.value)
			}
		})
	}
}

func TestMetadataValueNonFiniteFloat(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := json.Marshal(FloatValue(f)); err == nil {
			t.Errorf("Marshal(FloatValue(%v)) should fail", f)
		}
	}
}

func TestMetadataValueLargeIntRoundTrip(t *testing.T) {
	// Values above 2^53 would corrupt through a float64 intermediate
	for _, i := range []int64{1 << 62, math.MaxInt64, math.MinInt64, 9007199254740993} {
		data, err := json.Marshal(IntValue(i))
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var decoded MetadataValue
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		got, ok := decoded.IntVal()
		if !ok || got != i {
			t.Errorf("round trip of %d = (%v, %v)", i, got, ok)
		}
	}
}

func TestMetadataValueString(t *testing.T) {
	tests := []struct {
		value    MetadataValue
		expected string
	}{
		{StringValue("hi"), "hi"},
		{IntValue(3), "3"},
		{FloatValue(2.5), "2.5"},
		{BoolValue(false), "false"},
		{NullValue(), "null"},
		{ArrayValue(IntValue(1), IntValue(2)), "[1, 2]"},
		{ObjectValue(map[string]MetadataValue{"b": IntValue(2), "a": IntValue(1)}), "{a: 1, b: 2}"},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}
