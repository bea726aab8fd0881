package utils

import "strconv"

// ParseLimit parses a limit query value and clamps it to [1, max]. Empty or invalid input yields def.
func ParseLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || raw == "" {
		return ClampLimit(def, max)
	}
	return ClampLimit(n, max)
}

// ClampLimit clamps n to [1, max].
func ClampLimit(n, max int) int {
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}
