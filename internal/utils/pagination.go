// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int. An empty or unparseable string
// returns the provided default value instead.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// LimitParam parses a list-size query parameter: empty or invalid input
// falls back to def, and the result is clamped to [1, max].
func LimitParam(s string, def, max int) int {
	n := AtoiDefault(s, def)
	if n < 1 {
		n = def
	}
	if n > max {
		n = max
	}
	return n
}
