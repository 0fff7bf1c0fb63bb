package badger

import "math"

// unitVector returns v scaled to length one. Stored vectors are unit length
// so Search ranks by dot product alone. A zero vector stays zero.
func unitVector(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sumSquares == 0 {
		return out
	}
	scale := 1 / math.Sqrt(sumSquares)
	for i, x := range v {
		out[i] = float32(float64(x) * scale)
	}
	return out
}

// dot sums the pairwise products over the shorter of a and b.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range min(len(a), len(b)) {
		sum += a[i] * b[i]
	}
	return sum
}
