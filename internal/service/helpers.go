package service

import "strings"

// sameSlice reports whether a and b share a backing array and length. The
// engines return their input unchanged when an operation is a no-op, so this
// detects "nothing happened" without a deep compare.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func trimDescription(s string) string {
	return strings.TrimSpace(s)
}
