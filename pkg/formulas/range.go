package formulas

// RangePosition places value within [low, high] as a percentage:
//
//	(value - low) / (high - low) × 100
//
// Returns nil when the range is empty (high <= low).
func RangePosition(value, low, high float64) *float64 {
	if high <= low {
		return nil
	}
	position := (value - low) / (high - low) * 100
	return &position
}
