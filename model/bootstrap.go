package model

import (
	"fmt"

	"github.com/hupe1980/crosscat/internal/prng"
)

// BootstrapParams configures Bootstrap.
type BootstrapParams struct {
	// Priors holds one feature prior per dataset column.
	Priors []GaussianPrior
	// FeatureClustering is the prior over the feature partition.
	FeatureClustering PitmanYor
	// KindClustering is the row-clustering prior of the initial kind.
	KindClustering PitmanYor
	// Grid is the hyperprior grid fresh kinds will draw from.
	Grid Grid
	// VacantGroups is the number of zero-count groups appended to the
	// initial kind's seating.
	VacantGroups int
}

// Bootstrap builds a single-kind joint model over the dataset: every feature
// is assigned to kind 0 and the rows are seated by sequential sampling from
// the kind clustering. Structure learning starts from this state.
func Bootstrap(ds *Dataset, params BootstrapParams, rng *prng.Stream) (*JointModel, *Assignments, error) {
	if len(params.Priors) != ds.Features() {
		return nil, nil, fmt.Errorf("model: bootstrap: %d priors for %d features", len(params.Priors), ds.Features())
	}
	if err := params.KindClustering.Validate(); err != nil {
		return nil, nil, err
	}
	if params.VacantGroups < 0 {
		return nil, nil, fmt.Errorf("model: bootstrap: negative vacant group count %d", params.VacantGroups)
	}

	m, err := NewJointModel(params.Priors, params.FeatureClustering, params.Grid)
	if err != nil {
		return nil, nil, err
	}

	labels := params.KindClustering.SampleAssignments(ds.Rows(), rng)
	groups := 0
	for _, g := range labels {
		if int(g)+1 > groups {
			groups = int(g) + 1
		}
	}
	counts := make([]int, groups+params.VacantGroups)
	for _, g := range labels {
		counts[g]++
	}

	kind := NewKind(params.KindClustering, NewMixture(counts))
	for f := 0; f < ds.Features(); f++ {
		stats, err := ds.GroupStatsUnder(FeatureID(f), labels, len(counts))
		if err != nil {
			return nil, nil, err
		}
		if err := kind.AddFeature(FeatureID(f), stats); err != nil {
			return nil, nil, err
		}
	}
	if _, err := m.AppendKind(kind); err != nil {
		return nil, nil, err
	}

	asn := NewAssignments(ds.Rows())
	if err := asn.Append(labels); err != nil {
		return nil, nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	return m, asn, nil
}
