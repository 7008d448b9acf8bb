package testutil

import (
	"bytes"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/hupe1980/prefetch/signature"
	"github.com/hupe1980/prefetch/sketch"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Hashes returns n distinct hashes in [0, bound], sorted ascending.
// bound must leave room for n distinct values.
func (r *RNG) Hashes(n int, bound uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hashesLocked(n, bound, nil)
}

func (r *RNG) hashesLocked(n int, bound uint64, exclude map[uint64]struct{}) []uint64 {
	seen := make(map[uint64]struct{}, n)
	out := make([]uint64, 0, n)
	for len(out) < n {
		var h uint64
		if bound == sketch.MaxHash {
			h = r.rand.Uint64()
		} else {
			h = r.rand.Uint64() % (bound + 1)
		}
		if _, ok := seen[h]; ok {
			continue
		}
		if _, ok := exclude[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// ScaledSketch returns a DNA scaled sketch holding n random hashes that
// all survive the scaled bound.
func (r *RNG) ScaledSketch(ksize uint32, scaled uint64, n int) *sketch.MinHash {
	mh := sketch.NewScaled(ksize, sketch.DNA, scaled)
	mh.AddMany(r.Hashes(n, mh.MaxHash()))
	return mh
}

// Overlapping returns a sketch with base's parameters that shares shared
// hashes with base and holds extra hashes base does not.
func (r *RNG) Overlapping(base *sketch.MinHash, shared, extra int) *sketch.MinHash {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool := base.Sorted()
	r.rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	out := base.CopyAndClear()
	out.AddMany(pool[:min(shared, len(pool))])

	exclude := make(map[uint64]struct{}, len(pool))
	for _, h := range pool {
		exclude[h] = struct{}{}
	}
	bound := base.MaxHash()
	if bound == 0 {
		bound = sketch.MaxHash
	}
	out.AddMany(r.hashesLocked(extra, bound, exclude))
	return out
}

// SignatureJSON encodes sigs as an uncompressed signature file.
func SignatureJSON(tb testing.TB, sigs ...*signature.Signature) []byte {
	tb.Helper()

	var buf bytes.Buffer
	if err := signature.Save(&buf, sigs, signature.CompressionNone, nil); err != nil {
		tb.Fatalf("encode signatures: %v", err)
	}
	return buf.Bytes()
}
