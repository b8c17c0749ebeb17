package proposer

import (
	"time"

	"github.com/hupe1980/crosscat/internal/prng"
	"github.com/hupe1980/crosscat/model"
)

// Timing is the phase breakdown of one structure search.
type Timing struct {
	// Preparation covers partition snapshots and buffer layout.
	Preparation time.Duration

	// Scoring covers the feature-by-kind likelihood matrix.
	Scoring time.Duration

	// Sampling covers the sweeps that reseat features.
	Sampling time.Duration
}

// Total returns the summed duration of all phases.
func (t Timing) Total() time.Duration {
	return t.Preparation + t.Scoring + t.Sampling
}

// StructureProposer searches for a better feature-to-kind mapping and moves
// feature statistics between kinds on behalf of the caller. Implementations
// may parallelize scoring internally, but a search must be reproducible for a
// fixed stream seed: all draws from rng happen in a scheduling-independent
// order.
type StructureProposer interface {
	// Rows returns the row count of the data the proposer scores against.
	Rows() int

	// Search runs the given number of sweeps over the current mapping and
	// returns a proposed mapping plus the phase timing breakdown. The
	// proposal assigns exactly one kind per feature and may equal the
	// current mapping.
	Search(m *model.JointModel, asn *model.Assignments, current []model.KindID, sweeps int, parallel bool, rng *prng.Stream) ([]model.KindID, Timing, error)

	// TransferFeature moves the feature's sufficient statistics out of its
	// current kind into kind to, updating both mixtures, the feature sets
	// and the dispatch index. useCache permits reuse of aggregates computed
	// by the last Search; rng serves models whose transfer resamples cached
	// state. Transferring a feature to its current kind fails.
	TransferFeature(m *model.JointModel, asn *model.Assignments, f model.FeatureID, to model.KindID, useCache bool, rng *prng.Stream) error
}
