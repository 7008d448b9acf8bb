package prefetch

import (
	"testing"

	"github.com/hupe1980/prefetch/signature"
	"github.com/hupe1980/prefetch/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectQuery(t *testing.T) {
	k21 := sketch.NewScaled(21, sketch.DNA, 1000)
	k31 := sketch.NewScaled(31, sketch.DNA, 1000)
	k51 := sketch.NewScaled(51, sketch.DNA, 1000)
	prot := sketch.NewScaled(31, sketch.Protein, 200)
	sig := signature.New(shewanella, k21, k31, k51)

	t.Run("ByKsize", func(t *testing.T) {
		q, err := SelectQuery([]*signature.Signature{sig}, Selection{Ksize: 31})
		require.NoError(t, err)
		assert.Same(t, k31, q.Sketch)
		assert.Equal(t, uint32(31), q.Ksize())
		assert.Equal(t, sketch.DNA, q.Moltype())
		assert.Equal(t, shewanella, q.Name())
	})

	t.Run("ByMoltype", func(t *testing.T) {
		other := signature.New("prot", prot)
		q, err := SelectQuery([]*signature.Signature{sig, other}, Selection{Ksize: 31, Moltype: sketch.Protein})
		require.NoError(t, err)
		assert.Same(t, prot, q.Sketch)
	})

	t.Run("Ambiguous", func(t *testing.T) {
		_, err := SelectQuery([]*signature.Signature{sig}, Selection{})
		require.ErrorIs(t, err, ErrAmbiguousSelection)

		var selErr *SelectionError
		require.ErrorAs(t, err, &selErr)
		assert.ElementsMatch(t, []uint32{21, 31, 51}, selErr.Available)
		assert.Contains(t, err.Error(), "available k sizes: 21, 31, 51")
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := SelectQuery([]*signature.Signature{sig}, Selection{Ksize: 25})
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "k=25")
	})

	t.Run("NumSketch", func(t *testing.T) {
		num := signature.New("num", sketch.NewNum(31, sketch.DNA, 500))
		_, err := SelectQuery([]*signature.Signature{num}, Selection{Ksize: 31})
		assert.ErrorIs(t, err, ErrUnsupportedSketchKind)
	})
}

func TestSelectComparable(t *testing.T) {
	q := queryOf(sketch.NewScaled(31, sketch.DNA, 1000))

	t.Run("FirstCompatibleScaled", func(t *testing.T) {
		a := sketch.NewScaled(21, sketch.DNA, 1000)
		b := sketch.NewScaled(31, sketch.DNA, 2000)
		c := sketch.NewScaled(31, sketch.DNA, 100)

		mh, reason, ok := SelectComparable(signature.New("x", a, b, c), q)
		require.True(t, ok)
		assert.Empty(t, reason)
		assert.Same(t, b, mh)
	})

	t.Run("Incompatible", func(t *testing.T) {
		_, reason, ok := SelectComparable(signature.New("x", sketch.NewScaled(21, sketch.DNA, 1000)), q)
		assert.False(t, ok)
		assert.Equal(t, SkipIncompatible, reason)
	})

	t.Run("OnlyNum", func(t *testing.T) {
		_, reason, ok := SelectComparable(signature.New("x", sketch.NewNum(31, sketch.DNA, 500)), q)
		assert.False(t, ok)
		assert.Equal(t, SkipNumSketch, reason)
	})

	t.Run("SeedMismatch", func(t *testing.T) {
		other := sketch.FromParams(sketch.Params{Ksize: 31, Moltype: sketch.DNA, Seed: 7, MaxHash: q.Sketch.MaxHash()}, nil)
		_, reason, ok := SelectComparable(signature.New("x", other), q)
		assert.False(t, ok)
		assert.Equal(t, SkipIncompatible, reason)
	})
}
