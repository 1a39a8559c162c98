// Package complexity scores the structural complexity of a schema node.
// The score is a structural metric, not a size metric: an enum contributes a
// constant whether it has two values or two hundred. Consumers compare the
// score against a threshold to decide inline-vs-named rendering; the scorer
// itself knows nothing about thresholds or naming.
package complexity

import "github.com/kolah/specir/internal/ir"

// DefaultThreshold is the inline-vs-named cutoff consumers use unless
// configured otherwise.
const DefaultThreshold = 4

// Score computes the structural complexity of s. Referencing is always
// cheap: a bare ref scores 1, and the referenced component is scored
// independently when it is considered for extraction itself.
func Score(s *ir.Schema) int {
	if s == nil {
		return 0
	}
	if s.Ref != "" {
		return 1
	}

	if len(s.AllOf)+len(s.OneOf)+len(s.AnyOf) > 0 || s.Not != nil {
		score := 1
		for _, b := range s.AllOf {
			score += Score(b)
		}
		for _, b := range s.OneOf {
			score += Score(b)
		}
		for _, b := range s.AnyOf {
			score += Score(b)
		}
		if s.Not != nil {
			score += Score(s.Not)
		}
		return score
	}

	switch {
	case s.Type == ir.TypeObject || len(s.Properties) > 0:
		score := 2
		for _, p := range s.Properties {
			score += Score(p.Schema)
		}
		if s.AdditionalProperties != nil {
			score += Score(s.AdditionalProperties)
		}
		return score
	case s.Type == ir.TypeArray || s.Items != nil || len(s.TupleItems) > 0:
		score := 1
		if len(s.TupleItems) > 0 {
			for _, t := range s.TupleItems {
				score += Score(t)
			}
			return score
		}
		return score + Score(s.Items)
	default:
		// Typed primitive with an enum: type cost plus a constant enum
		// cost, independent of cardinality.
		if len(s.Enum) > 0 {
			return 2
		}
		return 1
	}
}

// ShouldExtract reports whether s is complex enough to deserve a named
// declaration at the given threshold.
func ShouldExtract(s *ir.Schema, threshold int) bool {
	return Score(s) > threshold
}
