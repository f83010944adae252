package common

import (
	"math"
	"strings"
)

// HasAny returns true if s has any of the prefixes.
func HasAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Round rounds half up, so Round(-2.5) is -2 and Round(2.5) is 3.
func Round(f float64) int {
	return int(math.Floor(f + 0.5))
}
