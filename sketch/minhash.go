package sketch

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// DefaultSeed is the murmur seed used by sketches unless stated otherwise.
const DefaultSeed uint64 = 42

var (
	// ErrFinerScale is returned when downsampling to a finer resolution is requested.
	ErrFinerScale = errors.New("cannot downsample to a finer resolution")

	// ErrIncompatible is returned when two sketches cannot be compared.
	ErrIncompatible = errors.New("incompatible sketches")

	// ErrNumSketch is returned when a scaled-only operation is applied to a num sketch.
	ErrNumSketch = errors.New("operation requires a scaled sketch")
)

// MinHash is a bounded hash set over the k-mers of a sequence.
//
// A MinHash is not safe for concurrent mutation.
type MinHash struct {
	ksize   uint32
	moltype Moltype
	seed    uint64
	num     uint32
	maxHash uint64
	hashes  *roaring64.Bitmap
}

// NewScaled creates an empty scaled sketch.
func NewScaled(ksize uint32, moltype Moltype, scaled uint64) *MinHash {
	return &MinHash{
		ksize:   ksize,
		moltype: moltype,
		seed:    DefaultSeed,
		maxHash: MaxHashForScaled(scaled),
		hashes:  roaring64.New(),
	}
}

// NewNum creates an empty fixed-size sketch keeping the num smallest hashes.
func NewNum(ksize uint32, moltype Moltype, num uint32) *MinHash {
	return &MinHash{
		ksize:   ksize,
		moltype: moltype,
		seed:    DefaultSeed,
		num:     num,
		hashes:  roaring64.New(),
	}
}

// Params describes a sketch without its hashes.
type Params struct {
	Ksize   uint32
	Moltype Moltype
	Seed    uint64
	Num     uint32
	MaxHash uint64
}

// FromParams creates a sketch with the given parameters and hashes.
// Hashes outside a scaled sketch's bound are dropped.
func FromParams(p Params, hashes []uint64) *MinHash {
	seed := p.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	mh := &MinHash{
		ksize:   p.Ksize,
		moltype: p.Moltype,
		seed:    seed,
		num:     p.Num,
		maxHash: p.MaxHash,
		hashes:  roaring64.New(),
	}
	mh.AddMany(hashes)
	return mh
}

// Params returns the sketch parameters.
func (mh *MinHash) Params() Params {
	return Params{
		Ksize:   mh.ksize,
		Moltype: mh.moltype,
		Seed:    mh.seed,
		Num:     mh.num,
		MaxHash: mh.maxHash,
	}
}

// Ksize returns the k-mer size.
func (mh *MinHash) Ksize() uint32 { return mh.ksize }

// Moltype returns the molecule type the k-mers were hashed from.
func (mh *MinHash) Moltype() Moltype { return mh.moltype }

// Seed returns the hash seed.
func (mh *MinHash) Seed() uint64 { return mh.seed }

// Num returns the fixed size of a num sketch, or 0 for scaled sketches.
func (mh *MinHash) Num() uint32 { return mh.num }

// MaxHash returns the retention bound of a scaled sketch, or 0 for num sketches.
func (mh *MinHash) MaxHash() uint64 { return mh.maxHash }

// Scaled returns the scale factor, or 0 for num sketches.
func (mh *MinHash) Scaled() uint64 { return ScaledForMaxHash(mh.maxHash) }

// IsScaled reports whether the sketch is a scaled sketch.
func (mh *MinHash) IsScaled() bool { return mh.num == 0 && mh.maxHash != 0 }

// Size returns the number of distinct hashes.
func (mh *MinHash) Size() int { return int(mh.hashes.GetCardinality()) }

// IsEmpty reports whether the sketch holds no hashes.
func (mh *MinHash) IsEmpty() bool { return mh.hashes.IsEmpty() }

// Add inserts a hash, honoring the sketch bound.
func (mh *MinHash) Add(h uint64) {
	if mh.maxHash != 0 && h > mh.maxHash {
		return
	}
	mh.hashes.Add(h)
	mh.trimNum()
}

// AddMany inserts hashes, honoring the sketch bound.
func (mh *MinHash) AddMany(hashes []uint64) {
	if mh.maxHash == 0 {
		mh.hashes.AddMany(hashes)
		mh.trimNum()
		return
	}
	for _, h := range hashes {
		if h <= mh.maxHash {
			mh.hashes.Add(h)
		}
	}
}

// Remove deletes a hash.
func (mh *MinHash) Remove(h uint64) { mh.hashes.Remove(h) }

// Contains reports whether h is in the sketch.
func (mh *MinHash) Contains(h uint64) bool { return mh.hashes.Contains(h) }

// Hashes iterates the hashes in ascending order.
func (mh *MinHash) Hashes() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		it := mh.hashes.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Sorted returns the hashes in ascending order.
func (mh *MinHash) Sorted() []uint64 { return mh.hashes.ToArray() }

// Copy returns a deep copy.
func (mh *MinHash) Copy() *MinHash {
	c := mh.CopyAndClear()
	c.hashes = mh.hashes.Clone()
	return c
}

// CopyAndClear returns an empty sketch with the same parameters.
func (mh *MinHash) CopyAndClear() *MinHash {
	return &MinHash{
		ksize:   mh.ksize,
		moltype: mh.moltype,
		seed:    mh.seed,
		num:     mh.num,
		maxHash: mh.maxHash,
		hashes:  roaring64.New(),
	}
}

// Downsample returns a copy at a coarser (or equal) scale.
// Downsampling to the current scale returns a plain copy.
func (mh *MinHash) Downsample(scaled uint64) (*MinHash, error) {
	if !mh.IsScaled() {
		return nil, ErrNumSketch
	}
	cur := mh.Scaled()
	if scaled < cur {
		return nil, fmt.Errorf("%w: %d < %d", ErrFinerScale, scaled, cur)
	}
	if scaled == cur {
		return mh.Copy(), nil
	}

	bound := MaxHashForScaled(scaled)
	out := mh.CopyAndClear()
	out.maxHash = bound

	it := mh.hashes.Iterator()
	for it.HasNext() {
		h := it.Next()
		if h > bound {
			break
		}
		out.hashes.Add(h)
	}
	return out, nil
}

// IsCompatible reports whether two sketches hash the same k-mers the same way.
func (mh *MinHash) IsCompatible(other *MinHash) bool {
	return mh.ksize == other.ksize && mh.moltype == other.moltype && mh.seed == other.seed
}

// Intersection returns the hashes present in both sketches, with mh's parameters.
// Both sketches must be at the same resolution for the result to be meaningful.
func (mh *MinHash) Intersection(other *MinHash) *MinHash {
	out := mh.CopyAndClear()
	out.hashes = roaring64.And(mh.hashes, other.hashes)
	return out
}

// IntersectionCount returns |mh ∩ other|.
func (mh *MinHash) IntersectionCount(other *MinHash) uint64 {
	return roaring64.And(mh.hashes, other.hashes).GetCardinality()
}

// Merge adds all hashes of other into mh.
func (mh *MinHash) Merge(other *MinHash) {
	mh.hashes.Or(other.hashes)
	mh.trimNum()
}

// Subtract removes all hashes of other from mh.
func (mh *MinHash) Subtract(other *MinHash) {
	mh.hashes.AndNot(other.hashes)
}

// Equal reports whether both sketches have the same parameters and hashes.
func (mh *MinHash) Equal(other *MinHash) bool {
	if other == nil {
		return false
	}
	return mh.Params() == other.Params() && mh.hashes.Equals(other.hashes)
}

// MD5 returns the sketch checksum: k followed by every hash in ascending
// order, all as decimal text.
func (mh *MinHash) MD5() string {
	sum := md5.New()
	sum.Write([]byte(strconv.FormatUint(uint64(mh.ksize), 10)))

	var buf []byte
	it := mh.hashes.Iterator()
	for it.HasNext() {
		buf = strconv.AppendUint(buf[:0], it.Next(), 10)
		sum.Write(buf)
	}
	return hex.EncodeToString(sum.Sum(nil))
}

func (mh *MinHash) trimNum() {
	if mh.num == 0 {
		return
	}
	for mh.hashes.GetCardinality() > uint64(mh.num) {
		mh.hashes.Remove(mh.hashes.Maximum())
	}
}
