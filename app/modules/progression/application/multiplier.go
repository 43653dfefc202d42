package progressionservice

import "math"

// Multiplier resolves a subscription tier to its point multiplier. Absent
// or unrecognized tiers resolve to 1. Every award path in the engine goes
// through this method; there is deliberately no second copy of the table.
func (s *ProgressionService) Multiplier(tier string) float64 {
	if tier == "" {
		return 1
	}
	if m, ok := s.multipliers[tier]; ok && m > 0 {
		return m
	}
	return 1
}

// finalAmount applies the multiplier and rounds half-up, once, after the
// multiplication. Per-component rounding would drift from the audited
// base_amount * multiplier product.
func finalAmount(base int64, multiplier float64) int64 {
	return int64(math.Round(float64(base) * multiplier))
}
