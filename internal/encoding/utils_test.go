package encoding

import (
	"math"
	"testing"

	"github.com/vexdb-io/vexdb/pkg/core"
)

func TestVectorRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		vector []float32
	}{
		{"basic", []float32{1.0, 2.5, -3.75}},
		{"single element", []float32{0.125}},
		{"empty", []float32{}},
		{"extreme values", []float32{math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeVector(tt.vector)
			if err != nil {
				t.Fatalf("EncodeVector failed: %v", err)
			}

			decoded, err := DecodeVector(data)
			if err != nil {
				t.Fatalf("DecodeVector failed: %v", err)
			}

			if len(decoded) != len(tt.vector) {
				t.Fatalf("length = %d, want %d", len(decoded), len(tt.vector))
			}
			for i := range tt.vector {
				if decoded[i] != tt.vector[i] {
					t.Errorf("element %d = %v, want %v", i, decoded[i], tt.vector[i])
				}
			}
		})
	}
}

func TestEncodeVectorNil(t *testing.T) {
	if _, err := EncodeVector(nil); err == nil {
		t.Error("EncodeVector(nil) should fail")
	}
}

func TestDecodeVectorMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", []byte{1, 0}},
		{"truncated payload", []byte{2, 0, 0, 0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeVector(tt.data); err == nil {
				t.Error("DecodeVector should fail on malformed input")
			}
		})
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	original := core.Metadata{
		"category": core.StringValue("tech"),
		"year":     core.IntValue(2023),
		"rating":   core.FloatValue(4.5),
		"tags":     core.ArrayValue(core.StringValue("a"), core.StringValue("b")),
	}

	encoded, err := EncodeMetadata(original)
	if err != nil {
		t.Fatalf("EncodeMetadata failed: %v", err)
	}

	decoded, err := DecodeMetadata(encoded)
	if err != nil {
		t.Fatalf("DecodeMetadata failed: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("field count = %d, want %d", len(decoded), len(original))
	}
	for k, v := range original {
		if !decoded[k].Equal(v) {
			t.Errorf("field %q = %v, want %v", k, decoded[k], v)
		}
	}
}

func TestMetadataEmpty(t *testing.T) {
	encoded, err := EncodeMetadata(nil)
	if err != nil || encoded != "" {
		t.Errorf("EncodeMetadata(nil) = (%q, %v)", encoded, err)
	}

	decoded, err := DecodeMetadata("")
	if err != nil || decoded != nil {
		t.Errorf("DecodeMetadata(\"\") = (%v, %v)", decoded, err)
	}
}

func TestValidateVector(t *testing.T) {
	tests := []struct {
		name    string
		vector  []float32
		wantErr bool
	}{
		{"valid", []float32{1.0, 2.0}, false},
		{"nil", nil, true},
		{"empty", []float32{}, true},
		{"nan", []float32{1.0, float32(math.NaN())}, true},
		{"positive infinity", []float32{float32(math.Inf(1))}, true},
		{"negative infinity", []float32{float32(math.Inf(-1))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateVector(tt.vector); (err != nil) != tt.wantErr {
				t.Errorf("ValidateVector() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
