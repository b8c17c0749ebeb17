// Package testutil provides testing utilities for crosscat.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating datasets with planted CrossCat
// structure and for scoring how well a learned structure matches a
// reference partition.
//
// # Planted Datasets
//
//	rng := testutil.NewRNG(seed)
//	ds, truth := rng.PlantedDataset(1000, testutil.Plant{
//	    Views:      []int{4, 4},
//	    Groups:     3,
//	    Separation: 10,
//	    Noise:      0.5,
//	})
//
// # Structure Scoring
//
//	acc := testutil.CoassignmentAccuracy(truth.FeatureViews, eng.Model().Mapping())
package testutil
