package util

import "cmp"

// Pointer simply returns a pointer to the supplied value
func Pointer[T any](v T) *T {
	return &v
}

// Clamp bounds v to [lo, hi]
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
