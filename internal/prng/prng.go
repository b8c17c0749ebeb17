// Package prng provides the deterministic random stream threaded through
// every stochastic operation of the inference kernels.
//
// A Stream is exclusively owned: the component constructed with it is its
// sole mutator, and reproducibility of a run is defined by the construction
// seed plus the sequence of draws. Stream implements the
// golang.org/x/exp/rand Source interface so it can back gonum distuv
// distributions directly.
package prng

import (
	"golang.org/x/exp/rand"
)

// Stream is a deterministic pseudo-random stream (PCG). It is NOT safe for
// concurrent use; callers that parallelize must derive child streams via
// Split before fanning out.
type Stream struct {
	src  rand.Source
	rnd  *rand.Rand
	seed uint64
}

// New creates a Stream seeded with seed.
func New(seed uint64) *Stream {
	src := rand.NewSource(seed)
	return &Stream{
		src:  src,
		rnd:  rand.New(src),
		seed: seed,
	}
}

// InitialSeed returns the seed the stream was created (or last re-seeded) with.
func (s *Stream) InitialSeed() uint64 { return s.seed }

// Seed re-seeds the stream. Implements rand.Source.
func (s *Stream) Seed(seed uint64) {
	s.seed = seed
	s.src.Seed(seed)
}

// Uint64 returns the next value of the stream. Implements rand.Source.
func (s *Stream) Uint64() uint64 { return s.rnd.Uint64() }

// Float64 returns a value in [0.0, 1.0).
func (s *Stream) Float64() float64 { return s.rnd.Float64() }

// NormFloat64 returns a standard-normal value.
func (s *Stream) NormFloat64() float64 { return s.rnd.NormFloat64() }

// Intn returns a value in [0, n). Panics if n <= 0.
func (s *Stream) Intn(n int) int { return s.rnd.Intn(n) }

// Perm returns a pseudo-random permutation of [0, n).
func (s *Stream) Perm(n int) []int { return s.rnd.Perm(n) }

// Shuffle pseudo-randomizes the order of n elements via swap.
func (s *Stream) Shuffle(n int, swap func(i, j int)) { s.rnd.Shuffle(n, swap) }

// Split derives n child streams by drawing one seed per child from the
// parent. The parent advances by exactly n draws, so the derivation is
// reproducible for a fixed seed and a fixed n. Children are independent of
// each other and of the parent's subsequent draws.
func (s *Stream) Split(n int) []*Stream {
	children := make([]*Stream, n)
	for i := range children {
		children[i] = New(s.Uint64())
	}
	return children
}
