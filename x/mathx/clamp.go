package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampDuration bounds a sampling or retry interval. Zero or negative
// values select def.
func ClampDuration[T constraints.Integer](v, def, lo, hi T) T {
	if v <= 0 {
		return def
	}
	return Clamp(v, lo, hi)
}
