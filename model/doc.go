// Package model defines the joint-model entities of the crosscat engine.
//
// # Identity Types
//
//   - FeatureID: Dense, stable identifier for a feature (uint32)
//   - KindID: Dense, position-based identifier for a kind (uint32)
//   - GroupID: Kind-local identifier for a row group (int32)
//
// KindIDs are positional: removing a kind renumbers the kinds after it, so a
// KindID must never be held across a structural mutation. The JointModel keeps
// a dispatch index from FeatureID to KindID that is updated in lockstep with
// every mutation.
//
// # Data Types
//
//   - GaussianPrior: Normal-inverse-chi-squared prior over one feature
//   - GroupStats: Sufficient statistics of one group for one feature
//   - PitmanYor: Two-parameter CRP prior over partitions
//   - Mixture: One kind's group sizes plus per-feature statistics
//   - Kind: Clustering prior, mixture and assigned-feature set
//   - JointModel: The ordered kind collection with its dispatch index
//   - Assignments: Per-kind row group labels, index-aligned with the kinds
//   - Dataset: Column-major row window with tare defaults
//
// Entities in this package are passive data structures with validation; all
// stochastic mutation is orchestrated by the kernel package and scored by the
// proposer package.
package model
