package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/crosscat/model"
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

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a standard normal pseudo-random number.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Plant describes the structure planted into a synthetic dataset: how the
// features split into views, how many row groups each view partitions the
// rows into, and how strongly the groups separate.
type Plant struct {
	// Views holds the number of features per planted view.
	Views []int

	// Groups is the number of row groups each view partitions the rows
	// into. Values below 1 mean a single group.
	Groups int

	// Separation scales the spread of the group centers. Centers are drawn
	// from N(0, Separation²) per feature and group.
	Separation float64

	// Noise is the within-group standard deviation. Zero plants noiseless
	// cells, so rows of one group carry identical values per feature.
	Noise float64

	// Density is the probability that a cell is observed. Zero means 1;
	// unobserved cells keep the tare value and land in the column mask.
	Density float64
}

// Structure is the ground truth a planted dataset was generated from.
type Structure struct {
	// FeatureViews maps each feature to its planted view.
	FeatureViews []int

	// RowGroups holds each view's row partition, one label per row.
	RowGroups [][]int
}

// Features returns the number of planted features.
func (s Structure) Features() int {
	return len(s.FeatureViews)
}

// PlantedDataset generates a dataset with known CrossCat structure: the
// views partition the features, each view partitions the rows on its own,
// and a cell is its group center plus Gaussian noise. The tare value is
// zero for every feature. Returns the dataset and the planted ground truth.
func (r *RNG) PlantedDataset(rows int, plant Plant) (*model.Dataset, Structure) {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups := plant.Groups
	if groups < 1 {
		groups = 1
	}
	density := plant.Density
	if density <= 0 {
		density = 1
	}

	features := 0
	for _, width := range plant.Views {
		features += width
	}

	truth := Structure{
		FeatureViews: make([]int, 0, features),
		RowGroups:    make([][]int, len(plant.Views)),
	}

	cols := make([]model.Column, 0, features)
	for v, width := range plant.Views {
		labels := make([]int, rows)
		for i := range labels {
			labels[i] = r.rand.Intn(groups)
		}
		truth.RowGroups[v] = labels

		for i := 0; i < width; i++ {
			truth.FeatureViews = append(truth.FeatureViews, v)

			centers := make([]float64, groups)
			for g := range centers {
				centers[g] = r.rand.NormFloat64() * plant.Separation
			}

			values := make([]float64, rows)
			var observed *roaring.Bitmap
			if density < 1 {
				observed = roaring.New()
			}
			for i := range values {
				if observed != nil {
					if r.rand.Float64() >= density {
						continue
					}
					observed.Add(uint32(i))
				}
				values[i] = centers[labels[i]] + r.rand.NormFloat64()*plant.Noise
			}
			cols = append(cols, model.Column{Values: values, Observed: observed})
		}
	}

	ds, err := model.NewDataset(cols, make([]float64, features), rows)
	if err != nil {
		panic(err)
	}
	return ds, truth
}

// CoassignmentAccuracy returns the fraction of index pairs on which two
// partitions agree about co-membership: both place the pair together, or
// both place it apart. 1.0 means the partitions are equal up to relabeling.
// Fewer than two labels score 1.0.
func CoassignmentAccuracy[A, B comparable](truth []A, learned []B) float64 {
	if len(truth) != len(learned) {
		panic(fmt.Sprintf("crosscat: co-assignment over %d and %d labels", len(truth), len(learned)))
	}

	n := len(truth)
	if n < 2 {
		return 1.0
	}

	agree, pairs := 0, 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs++
			if (truth[i] == truth[j]) == (learned[i] == learned[j]) {
				agree++
			}
		}
	}
	return float64(agree) / float64(pairs)
}
