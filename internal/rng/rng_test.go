package rng

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJumpMatchesStepping(t *testing.T) {
	start := uint128{hi: 0x0123456789abcdef, lo: 0xfedcba9876543210}
	for _, delta := range []uint64{0, 1, 2, 7, 64, 1000} {
		stepped := rand.NewPCG(start.hi, start.lo)
		for i := uint64(0); i < delta; i++ {
			stepped.Uint64()
		}
		st := jump(start, uint128{lo: delta})
		jumped := rand.NewPCG(st.hi, st.lo)
		for i := 0; i < 5; i++ {
			require.Equal(t, stepped.Uint64(), jumped.Uint64(), "delta %d draw %d", delta, i)
		}
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	a := NewSeeded(8675309)
	b := NewSeeded(8675309)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float(StreamArrival), b.Float(StreamArrival))
		assert.Equal(t, a.Uniform(0.5, 2.5, StreamMovementTime), b.Uniform(0.5, 2.5, StreamMovementTime))
	}
}

func TestStreamsAreIsolated(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	// Heavy use of one stream must not shift another.
	for i := 0; i < 1000; i++ {
		a.Float(StreamInfection)
		a.IntN(10, StreamMoveChoice)
	}
	for i := 0; i < 50; i++ {
		require.Equal(t, b.Exponential(1, StreamArrival), a.Exponential(1, StreamArrival))
	}
}

func TestStreamsDiffer(t *testing.T) {
	m := NewSeeded(1)
	seen := make(map[float64]Stream)
	for s := Stream(0); s < NumStreams; s++ {
		v := m.Float(s)
		_, dup := seen[v]
		assert.False(t, dup, "stream %v repeats a first draw", s)
		seen[v] = s
	}
}

func TestSetSeedRestartsStreams(t *testing.T) {
	m := NewSeeded(7)
	first := []float64{m.Float(StreamRecovery), m.Float(StreamRecovery)}
	m.SetSeed(7)
	assert.Equal(t, first, []float64{m.Float(StreamRecovery), m.Float(StreamRecovery)})
}

func TestLazyInitialization(t *testing.T) {
	m := New()
	_, ok := m.Seed()
	require.False(t, ok)

	v := m.Float(StreamArrival)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)
	_, ok = m.Seed()
	assert.True(t, ok)
}

func TestGeometricCountsFailures(t *testing.T) {
	m := NewSeeded(3)
	assert.Equal(t, int64(0), m.Geometric(1, StreamArrival))

	var sum int64
	const n = 20000
	for i := 0; i < n; i++ {
		k := m.Geometric(0.25, StreamArrival)
		require.GreaterOrEqual(t, k, int64(0))
		sum += k
	}
	// Mean of failures-before-success is (1-p)/p = 3.
	assert.InDelta(t, 3.0, float64(sum)/n, 0.15)
}

func TestDistributionRanges(t *testing.T) {
	m := NewSeeded(11)
	for i := 0; i < 1000; i++ {
		u := m.Uniform(0.2, 0.257, StreamExposureUnvaxed)
		assert.True(t, u >= 0.2 && u < 0.257)

		n := m.RandInt(-2, 2, StreamMoveChoice)
		assert.True(t, n >= -2 && n <= 2)

		assert.Greater(t, m.Gamma(0.5, 2, StreamArrival), 0.0)
		assert.GreaterOrEqual(t, m.Exponential(2, StreamArrival), 0.0)
	}
}

func TestGammaMean(t *testing.T) {
	m := NewSeeded(5)
	var sum float64
	const n = 20000
	for i := 0; i < n; i++ {
		sum += m.Gamma(3, 2, StreamArrival)
	}
	assert.InDelta(t, 6.0, sum/n, 0.2)
}

func TestInvalidParametersPanic(t *testing.T) {
	m := NewSeeded(1)
	for name, draw := range map[string]func(){
		"geometric zero":  func() { m.Geometric(0, StreamArrival) },
		"geometric > 1":   func() { m.Geometric(1.5, StreamArrival) },
		"exponential":     func() { m.Exponential(0, StreamArrival) },
		"gamma":           func() { m.Gamma(-1, 1, StreamArrival) },
		"uniform":         func() { m.Uniform(2, 1, StreamArrival) },
		"intn":            func() { m.IntN(0, StreamArrival) },
		"randint":         func() { m.RandInt(3, 2, StreamArrival) },
		"unknown stream":  func() { m.Float(NumStreams) },
		"uniform nan arg": func() { m.Uniform(math.NaN(), 1, StreamArrival) },
	} {
		assert.Panics(t, draw, name)
	}
}

func TestStreamString(t *testing.T) {
	assert.Equal(t, "arrival", StreamArrival.String())
	assert.Equal(t, "stream(200)", Stream(200).String())
}
