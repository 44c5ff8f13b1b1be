// Package position holds small generic ordering helpers shared by the
// tombstone and position-in-partition types, mirroring the tiny generics
// helpers pebble keeps in internal/base rather than repeating comparison
// boilerplate at every call site.
package position

import "golang.org/x/exp/constraints"

// Max returns the greater of a and b according to the natural ordering of
// Ordered types.
func Max[T constraints.Ordered](a, b T) T {
	if a < b {
		return b
	}
	return a
}

// Min returns the lesser of a and b according to the natural ordering of
// Ordered types.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
