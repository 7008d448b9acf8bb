package sketch

import "math"

// MaxHash is the largest value the 64-bit hash function produces.
const MaxHash = math.MaxUint64

// MaxHashForScaled returns the retention bound for a scale factor.
// A hash h is kept by a scaled sketch iff h <= MaxHashForScaled(scaled).
func MaxHashForScaled(scaled uint64) uint64 {
	switch scaled {
	case 0:
		return 0
	case 1:
		return MaxHash
	}
	return uint64(math.Round(float64(MaxHash) / float64(scaled)))
}

// ScaledForMaxHash is the inverse of MaxHashForScaled.
func ScaledForMaxHash(maxHash uint64) uint64 {
	if maxHash == 0 {
		return 0
	}
	return uint64(math.Round(float64(MaxHash) / float64(maxHash)))
}
