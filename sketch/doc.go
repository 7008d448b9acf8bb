// Package sketch implements the hashed k-mer sketches compared by prefetch.
//
// A MinHash is either scaled (FracMinHash: every hash at or below a bound
// derived from the scale factor is retained) or fixed-size ("num": the num
// smallest hashes are retained). Only scaled sketches can be downsampled and
// compared by containment; num sketches are carried so they can be recognized
// and rejected.
//
// Hash storage is a 64-bit Roaring bitmap, which keeps intersection, union and
// difference of large sketches cheap:
//
//	q := sketch.NewScaled(31, sketch.DNA, 1000)
//	q.AddMany(hashes)
//	coarse, _ := q.Downsample(10000)
//	shared := coarse.IntersectionCount(candidate)
package sketch
