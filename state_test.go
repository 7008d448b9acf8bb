package prefetch

import (
	"testing"

	"github.com/hupe1980/prefetch/sketch"
	"github.com/hupe1980/prefetch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunState(t *testing.T) {
	rng := testutil.NewRNG(1)
	q := queryOf(rng.ScaledSketch(31, 1000, 2000))

	t.Run("NativeScale", func(t *testing.T) {
		s, err := NewRunState(q, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), s.WorkingScale())
		assert.Equal(t, 2000, s.QueryView().Size())
		assert.Equal(t, 2000, s.Remaining().Size())
		assert.True(t, s.Matched().IsEmpty())
		assertPartition(t, s)
	})

	t.Run("FinerFloorIgnored", func(t *testing.T) {
		s, err := NewRunState(q, 100)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), s.WorkingScale())
	})

	t.Run("CoarserFloor", func(t *testing.T) {
		s, err := NewRunState(q, 10000)
		require.NoError(t, err)
		assert.Equal(t, uint64(10000), s.WorkingScale())

		want, err := q.Sketch.Downsample(10000)
		require.NoError(t, err)
		assert.True(t, s.QueryView().Equal(want))
		assert.Less(t, s.QueryView().Size(), q.Sketch.Size())
		assertPartition(t, s)
	})

	t.Run("FloorEmptiesQuery", func(t *testing.T) {
		base := sketch.MaxHashForScaled(1000)
		hashes := make([]uint64, 100)
		for i := range hashes {
			hashes[i] = base - uint64(i)
		}
		high := queryOf(withHashes(sketch.NewScaled(31, sketch.DNA, 1000), hashes))

		_, err := NewRunState(high, 1_000_000_000)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("EmptyQuery", func(t *testing.T) {
		_, err := NewRunState(queryOf(sketch.NewScaled(31, sketch.DNA, 1000)), 0)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("NumQuery", func(t *testing.T) {
		_, err := NewRunState(queryOf(sketch.NewNum(31, sketch.DNA, 10)), 0)
		assert.ErrorIs(t, err, ErrUnsupportedSketchKind)
	})
}

func TestRunState_Reconcile(t *testing.T) {
	rng := testutil.NewRNG(2)
	qmh := rng.ScaledSketch(31, 100, 5000)
	q := queryOf(qmh)

	s, err := NewRunState(q, 0)
	require.NoError(t, err)

	// Match something at the native scale first so the aggregates are
	// non-trivial when the scale coarsens.
	first := rng.Overlapping(qmh, 2500, 10)
	qv, c, coarsened, err := s.Reconcile(first)
	require.NoError(t, err)
	assert.False(t, coarsened)
	require.NotNil(t, s.Accumulate(qv, c, &Candidate{}, 0))
	assertPartition(t, s)

	t.Run("Finer", func(t *testing.T) {
		fine := rng.ScaledSketch(31, 10, 100)
		qv, c, coarsened, err := s.Reconcile(fine)
		require.NoError(t, err)
		assert.False(t, coarsened)
		assert.Equal(t, uint64(100), c.Scaled())
		assert.Same(t, s.QueryView(), qv)
		// The candidate itself is left alone.
		assert.Equal(t, uint64(10), fine.Scaled())
		assert.Equal(t, uint64(100), s.WorkingScale())
	})

	t.Run("Coarser", func(t *testing.T) {
		coarse := sketch.NewScaled(31, sketch.DNA, 1000)
		qv, c, coarsened, err := s.Reconcile(coarse)
		require.NoError(t, err)
		assert.True(t, coarsened)
		assert.Same(t, coarse, c)
		assert.Equal(t, uint64(1000), s.WorkingScale())
		assert.Equal(t, uint64(1000), qv.Scaled())

		want, err := qmh.Downsample(1000)
		require.NoError(t, err)
		assert.True(t, s.QueryView().Equal(want))
		assertPartition(t, s)
	})

	t.Run("Monotone", func(t *testing.T) {
		for _, scaled := range []uint64{10, 5000, 100, 2000, 1} {
			before := s.WorkingScale()
			_, _, _, err := s.Reconcile(sketch.NewScaled(31, sketch.DNA, scaled))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, s.WorkingScale(), before)
			assertPartition(t, s)
		}
		assert.Equal(t, uint64(5000), s.WorkingScale())
	})
}

func TestRunState_ReconcileEmptiesQuery(t *testing.T) {
	base := sketch.MaxHashForScaled(1000)
	q := queryOf(withHashes(sketch.NewScaled(31, sketch.DNA, 1000), []uint64{base, base - 1}))

	s, err := NewRunState(q, 0)
	require.NoError(t, err)

	_, _, coarsened, err := s.Reconcile(sketch.NewScaled(31, sketch.DNA, 1_000_000))
	assert.True(t, coarsened)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}
