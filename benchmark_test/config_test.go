package benchmark_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/hupe1980/crosscat"
	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/testutil"
)

// ============================================================================
// Benchmark Configuration
// ============================================================================

// Standard dataset shapes used across benchmarks for consistency.
const (
	rowsSmall  = 200   // Fast CI benchmarks
	rowsMedium = 1_000 // Default
	rowsLarge  = 5_000 // Production-scale windows

	featuresSmall = 8
	featuresLarge = 32
)

// Seed for deterministic benchmarks - enables reproducible comparisons.
const benchSeed = 42

// ============================================================================
// Benchmark Helpers
// ============================================================================

// benchDataset plants a two-view dataset with three row groups per view.
func benchDataset(b *testing.B, rows, features int, density float64) (*model.Dataset, testutil.Structure) {
	b.Helper()
	rng := testutil.NewRNG(benchSeed)
	return rng.PlantedDataset(rows, testutil.Plant{
		Views:      []int{features - features/2, features / 2},
		Groups:     3,
		Separation: 6,
		Noise:      0.8,
		Density:    density,
	})
}

// benchEngine builds an engine over a planted dataset and steps it once to
// move past the bootstrap seating.
func benchEngine(b *testing.B, rows, features int, optFns ...crosscat.Option) *crosscat.Engine {
	b.Helper()
	ds, _ := benchDataset(b, rows, features, 1)
	opts := append([]crosscat.Option{crosscat.WithSeed(benchSeed)}, optFns...)
	eng, err := crosscat.New(ds, opts...)
	if err != nil {
		b.Fatalf("failed to build engine: %v", err)
	}
	if _, err := eng.Step(context.Background()); err != nil {
		b.Fatalf("warmup step failed: %v", err)
	}
	return eng
}

func formatRows(n int) string {
	if n >= 1000 && n%1000 == 0 {
		return fmt.Sprintf("%dk", n/1000)
	}
	return strconv.Itoa(n)
}
