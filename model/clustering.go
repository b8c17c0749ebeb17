package model

import (
	"fmt"

	"github.com/hupe1980/crosscat/internal/prng"
)

// PitmanYor is the two-parameter Chinese restaurant process prior over
// partitions. Alpha is the concentration parameter, Delta the discount.
// Delta = 0 recovers the Dirichlet process.
type PitmanYor struct {
	Alpha float64 `json:"alpha"`
	Delta float64 `json:"delta"`
}

// DefaultClustering returns the clustering prior used when nothing better is
// known.
func DefaultClustering() PitmanYor {
	return PitmanYor{Alpha: 1.0, Delta: 0.0}
}

// Validate checks the parameter ranges.
func (p PitmanYor) Validate() error {
	if !(p.Alpha > 0) {
		return fmt.Errorf("model: clustering alpha must be positive, got %v", p.Alpha)
	}
	if p.Delta < 0 || p.Delta >= 1 {
		return fmt.Errorf("model: clustering delta must be in [0, 1), got %v", p.Delta)
	}
	return nil
}

// SampleAssignments draws a partition of n elements by sequential seating and
// returns dense group labels. The group count is one plus the largest label.
func (p PitmanYor) SampleAssignments(n int, rng *prng.Stream) []GroupID {
	groups := make([]GroupID, n)
	if n == 0 {
		return groups
	}
	counts := make([]float64, 1, 8)
	counts[0] = 1
	for i := 1; i < n; i++ {
		// Seating mass totals i + alpha: each occupied group holds
		// count - delta, the remainder opens a new group.
		u := rng.Float64() * (float64(i) + p.Alpha)
		g := len(counts)
		for j, c := range counts {
			if u < c-p.Delta {
				g = j
				break
			}
			u -= c - p.Delta
		}
		if g == len(counts) {
			counts = append(counts, 0)
		}
		counts[g]++
		groups[i] = GroupID(g)
	}
	return groups
}

// SeatWeights writes the unnormalized seating weight of one more element into
// dst, one entry per group in counts, and returns dst. Groups with a zero
// count are treated as vacant and share the new-group mass evenly, so adding
// an element to any of them is equivalent to opening a fresh group.
func (p PitmanYor) SeatWeights(counts []int, dst []float64) []float64 {
	if cap(dst) < len(counts) {
		dst = make([]float64, len(counts))
	}
	dst = dst[:len(counts)]

	occupied := 0
	vacant := 0
	for _, c := range counts {
		if c > 0 {
			occupied++
		} else {
			vacant++
		}
	}
	fresh := p.Alpha + p.Delta*float64(occupied)
	for i, c := range counts {
		if c > 0 {
			dst[i] = float64(c) - p.Delta
		} else {
			dst[i] = fresh / float64(vacant)
		}
	}
	return dst
}
