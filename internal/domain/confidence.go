package domain

import "math"

// FormatConfidence normalizes a confidence value to a whole percentage.
// Models sometimes answer with a decimal in (0,1] instead of 0-100; those
// are scaled up, everything else is just rounded.
// Parameters:
//   - confidence: raw confidence, either 0-1 decimal or 0-100 percentage.
//
// Returns:
//   - int: percentage rounded to the nearest integer.
func FormatConfidence(confidence float64) int {
	if confidence > 0 && confidence <= 1 {
		return int(math.Round(confidence * 100))
	}
	return int(math.Round(confidence))
}
