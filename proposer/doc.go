// Package proposer implements the structure search that reassigns features
// among kinds.
//
// A StructureProposer scores candidate placements of every feature against
// every kind and samples a new feature-to-kind mapping; the kind kernel
// applies the accepted moves. BlockGibbs is the standard implementation: a
// collapsed Gibbs sampler over the feature partition whose scoring phase can
// fan out across workers without changing the sampled result.
package proposer
