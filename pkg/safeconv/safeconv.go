// Package safeconv converts between int and the unsigned integer types of
// wire protocols without silent wrap-around.
package safeconv

import "math"

// MaxUint32 is the maximum value for uint32 type.
const MaxUint32 = uint32(math.MaxUint32)

// ClampUint32 converts v to uint32, clamping negatives to zero and values
// above MaxUint32 to MaxUint32.
func ClampUint32(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case uint64(v) > uint64(MaxUint32):
		return MaxUint32
	default:
		return uint32(v)
	}
}

// Uint32ToInt converts v to int. On 32-bit platforms values above
// math.MaxInt32 clamp to math.MaxInt.
func Uint32ToInt(v uint32) int {
	if uint64(v) > uint64(math.MaxInt) {
		return math.MaxInt
	}

	return int(v)
}
