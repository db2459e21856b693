// Package rng provides reproducible, mutually independent random streams,
// one per stochastic concern of the simulation, all derived from one seed.
//
// A base PCG sequence is built from the seed; stream i is that sequence
// jumped ahead by i*2^64 steps, so no two streams overlap for any realistic
// number of draws. Reseeding and redrawing a stream yields the same values
// regardless of how many draws other streams have consumed.
package rng

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrInvalidParameter is raised when a distribution parameter is outside
// its domain.
var ErrInvalidParameter = errors.New("rng: invalid distribution parameter")

// Manager owns the generators for every Stream of one simulation run.
// It is not safe for concurrent use.
type Manager struct {
	seed    uint64
	seeded  bool
	streams [NumStreams]*rand.Rand
}

// New returns a Manager that seeds itself from crypto/rand on first draw
// unless SetSeed is called before.
func New() *Manager {
	return &Manager{}
}

// NewSeeded returns a Manager whose streams are derived from seed.
func NewSeeded(seed uint64) *Manager {
	m := &Manager{}
	m.SetSeed(seed)
	return m
}

// SetSeed (re)initializes every stream from seed.
func (m *Manager) SetSeed(seed uint64) {
	m.seed = seed
	m.seeded = true
	m.initStreams()
}

// Seed returns the seed in use and whether one has been established yet.
func (m *Manager) Seed() (uint64, bool) {
	return m.seed, m.seeded
}

func (m *Manager) initStreams() {
	sm := splitMix64(m.seed)
	base := uint128{hi: sm.next(), lo: sm.next()}
	for i := Stream(0); i < NumStreams; i++ {
		st := jump(base, streamOffset(i))
		m.streams[i] = rand.New(rand.NewPCG(st.hi, st.lo))
	}
}

func (m *Manager) stream(s Stream) *rand.Rand {
	if !m.seeded {
		m.SetSeed(CryptoSeed())
	}
	if s >= NumStreams {
		panic(fmt.Errorf("%w: unknown %v", ErrInvalidParameter, s))
	}
	return m.streams[s]
}

// Float returns a unit-uniform value in [0, 1).
func (m *Manager) Float(s Stream) float64 {
	return m.stream(s).Float64()
}

// Uniform returns a value drawn uniformly from [a, b).
func (m *Manager) Uniform(a, b float64, s Stream) float64 {
	if b < a || math.IsNaN(a) || math.IsNaN(b) {
		panic(fmt.Errorf("%w: uniform(%g, %g)", ErrInvalidParameter, a, b))
	}
	return a + (b-a)*m.stream(s).Float64()
}

// Exponential returns an exponentially distributed value with the given
// rate; the mean is 1/rate.
func (m *Manager) Exponential(rate float64, s Stream) float64 {
	if !(rate > 0) {
		panic(fmt.Errorf("%w: exponential rate %g", ErrInvalidParameter, rate))
	}
	return m.stream(s).ExpFloat64() / rate
}

// Geometric returns the number of failures before the first success in
// independent Bernoulli(p) trials. The result is always >= 0.
func (m *Manager) Geometric(p float64, s Stream) int64 {
	if !(p > 0 && p <= 1) {
		panic(fmt.Errorf("%w: geometric p %g", ErrInvalidParameter, p))
	}
	r := m.stream(s)
	if p == 1 {
		return 0
	}
	// Inversion on u in (0, 1] counts trials minus one directly.
	u := 1 - r.Float64()
	return int64(math.Floor(math.Log(u) / math.Log1p(-p)))
}

// Gamma returns a gamma(shape, scale) value with mean shape*scale.
func (m *Manager) Gamma(shape, scale float64, s Stream) float64 {
	if !(shape > 0) || !(scale > 0) {
		panic(fmt.Errorf("%w: gamma(%g, %g)", ErrInvalidParameter, shape, scale))
	}
	return marsagliaTsang(m.stream(s), shape) * scale
}

// IntN returns a value in [0, n) from the stream.
func (m *Manager) IntN(n int, s Stream) int {
	if n <= 0 {
		panic(fmt.Errorf("%w: intn(%d)", ErrInvalidParameter, n))
	}
	return m.stream(s).IntN(n)
}

// RandInt returns a value in [a, b], both bounds inclusive.
func (m *Manager) RandInt(a, b int, s Stream) int {
	if b < a {
		panic(fmt.Errorf("%w: randint(%d, %d)", ErrInvalidParameter, a, b))
	}
	return a + m.stream(s).IntN(b-a+1)
}

// marsagliaTsang draws gamma(shape, 1).
func marsagliaTsang(r *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := r.Float64()
		for u == 0 {
			u = r.Float64()
		}
		return marsagliaTsang(r, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := r.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := r.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
