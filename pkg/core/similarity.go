package core

import (
	"fmt"
	"math"
	"strings"
)

// SimilarityMetric identifies the scoring strategy bound to an index.
// Each index is bound to exactly one metric at creation time.
type SimilarityMetric int

const (
	// MetricCosine scores by normalized dot product; zero-magnitude
	// vectors score 0, never NaN.
	MetricCosine SimilarityMetric = iota
	// MetricEuclidean converts L2 distance to a similarity in (0, 1]
	// via 1/(1+distance).
	MetricEuclidean
	// MetricDotProduct scores by raw, unnormalized dot product. Scores
	// are unbounded and only comparable within one query.
	MetricDotProduct
)

// String returns the canonical metric name
func (m SimilarityMetric) String() string {
	switch m {
	case MetricCosine:
		return "cosine"
	case MetricEuclidean:
		return "euclidean"
	case MetricDotProduct:
		return "dotproduct"
	default:
		return "unknown"
	}
}

// ParseMetric parses a metric name as produced by String
func ParseMetric(s string) (SimilarityMetric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cosine", "":
		return MetricCosine, nil
	case "euclidean", "l2":
		return MetricEuclidean, nil
	case "dotproduct", "dot":
		return MetricDotProduct, nil
	default:
		return MetricCosine, fmt.Errorf("unknown similarity metric: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m SimilarityMetric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *SimilarityMetric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// SimilarityFunc calculates similarity between two equal-length vectors.
// Higher scores mean closer. Length checks happen in the engines before a
// strategy is ever invoked; the functions themselves are total over
// equal-length inputs and never produce NaN.
type SimilarityFunc func(a, b []float32) float64

// MetricFunc returns the similarity function bound to a metric
func MetricFunc(metric SimilarityMetric) SimilarityFunc {
	switch metric {
	case MetricEuclidean:
		return EuclideanSimilarity
	case MetricDotProduct:
		return DotProduct
	default:
		return CosineSimilarity
	}
}

// CosineSimilarity calculates cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	// Zero-magnitude vectors have no direction
	if normA == 0.0 || normB == 0.0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EuclideanSimilarity converts L2 distance into a similarity score in
// (0, 1], where 1 means identical vectors.
func EuclideanSimilarity(a, b []float32) float64 {
	var sum float64
	for i := 0; i < len(a); i++ {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return 1.0 / (1.0 + math.Sqrt(sum))
}

// DotProduct calculates the raw dot product between two vectors.
func DotProduct(a, b []float32) float64 {
	var result float64
	for i := 0; i < len(a); i++ {
		result += float64(a[i]) * float64(b[i])
	}
	return result
}
