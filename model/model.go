package model

import (
	"fmt"
)

// JointModel is the ordered collection of kinds plus the dispatch index
// mapping every feature to its kind. Structural mutations keep the index
// consistent; Validate cross-checks the whole structure.
type JointModel struct {
	kinds    []*Kind
	dispatch []KindID

	priors            []GaussianPrior
	featureClustering PitmanYor
	grid              Grid
}

// NewJointModel builds a model with no kinds. priors holds one prior per
// feature, indexed by FeatureID; featureClustering is the prior over the
// feature partition and grid the hyperprior fresh kinds draw from.
func NewJointModel(priors []GaussianPrior, featureClustering PitmanYor, grid Grid) (*JointModel, error) {
	for f, p := range priors {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("model: feature %d: %w", f, err)
		}
	}
	if err := featureClustering.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return &JointModel{
		dispatch:          make([]KindID, len(priors)),
		priors:            priors,
		featureClustering: featureClustering,
		grid:              grid,
	}, nil
}

// FeatureCount returns the number of features the model covers.
func (m *JointModel) FeatureCount() int {
	return len(m.priors)
}

// Prior returns the feature's prior.
func (m *JointModel) Prior(f FeatureID) GaussianPrior {
	return m.priors[f]
}

// Priors returns the live per-feature prior slice. It must not be mutated.
func (m *JointModel) Priors() []GaussianPrior {
	return m.priors
}

// FeatureClustering returns the prior over the feature partition.
func (m *JointModel) FeatureClustering() PitmanYor {
	return m.featureClustering
}

// Grid returns the hyperprior grid.
func (m *JointModel) Grid() Grid {
	return m.grid
}

// KindCount returns the number of kinds, empty ones included.
func (m *JointModel) KindCount() int {
	return len(m.kinds)
}

// Kind returns the kind at the given position.
func (m *JointModel) Kind(id KindID) *Kind {
	return m.kinds[id]
}

// Kinds returns the live kind slice. It must not be mutated.
func (m *JointModel) Kinds() []*Kind {
	return m.kinds
}

// RowCount returns the number of rows the kinds' mixtures seat, or zero when
// the model has no kinds yet.
func (m *JointModel) RowCount() int {
	if len(m.kinds) == 0 {
		return 0
	}
	return m.kinds[0].Mixture.RowCount()
}

// KindOf returns the kind the feature is assigned to via the dispatch index.
func (m *JointModel) KindOf(f FeatureID) KindID {
	return m.dispatch[f]
}

// Mapping returns a copy of the dispatch index, one KindID per feature.
func (m *JointModel) Mapping() []KindID {
	out := make([]KindID, len(m.dispatch))
	copy(out, m.dispatch)
	return out
}

// EmptyKinds returns the positions of all kinds with no features assigned,
// in ascending order.
func (m *JointModel) EmptyKinds() []KindID {
	var ids []KindID
	for id, k := range m.kinds {
		if k.IsEmpty() {
			ids = append(ids, KindID(id))
		}
	}
	return ids
}

// AppendKind adds the kind at the end of the collection and points its
// features at the new slot.
func (m *JointModel) AppendKind(k *Kind) (KindID, error) {
	id := KindID(len(m.kinds))
	it := k.features.Iterator()
	for it.HasNext() {
		f := it.Next()
		if int(f) >= len(m.dispatch) {
			return 0, fmt.Errorf("model: append kind: feature %d: %w", f, ErrFeatureRange)
		}
	}
	m.kinds = append(m.kinds, k)
	it = k.features.Iterator()
	for it.HasNext() {
		m.dispatch[it.Next()] = id
	}
	return id, nil
}

// SwapRemoveKind removes an empty kind by moving the last kind into its slot
// and repoints the moved kind's features in the dispatch index. Removing a
// kind that still has features fails.
func (m *JointModel) SwapRemoveKind(id KindID) error {
	if int(id) >= len(m.kinds) {
		return ErrKindRange
	}
	if !m.kinds[id].IsEmpty() {
		return fmt.Errorf("model: remove kind %d: %w", id, ErrKindNotEmpty)
	}
	last := len(m.kinds) - 1
	if int(id) != last {
		moved := m.kinds[last]
		m.kinds[id] = moved
		it := moved.features.Iterator()
		for it.HasNext() {
			m.dispatch[it.Next()] = id
		}
	}
	m.kinds[last] = nil
	m.kinds = m.kinds[:last]
	return nil
}

// MoveFeature reassigns the feature between kinds, attaching the given
// statistics under the destination kind's partition and updating the dispatch
// index. The statistics must be computed by the caller because a feature's
// per-group breakdown changes with the destination's row partition.
func (m *JointModel) MoveFeature(f FeatureID, from, to KindID, stats []GroupStats) error {
	if int(f) >= len(m.dispatch) {
		return ErrFeatureRange
	}
	if int(from) >= len(m.kinds) || int(to) >= len(m.kinds) {
		return ErrKindRange
	}
	if from == to {
		return fmt.Errorf("model: move feature %d: source and destination are both kind %d", f, from)
	}
	if m.dispatch[f] != from {
		return fmt.Errorf("model: move feature %d: dispatch says kind %d, caller says kind %d", f, m.dispatch[f], from)
	}
	if _, err := m.kinds[from].RemoveFeature(f); err != nil {
		return err
	}
	if err := m.kinds[to].AddFeature(f, stats); err != nil {
		return err
	}
	m.dispatch[f] = to
	return nil
}

// RebuildDispatch recomputes the dispatch index from the kinds' feature sets.
// It fails if the sets do not partition the feature range. Loading a model
// from a checkpoint ends with a rebuild.
func (m *JointModel) RebuildDispatch() error {
	seen := make([]bool, len(m.dispatch))
	for id, k := range m.kinds {
		it := k.features.Iterator()
		for it.HasNext() {
			f := it.Next()
			if int(f) >= len(m.dispatch) {
				return fmt.Errorf("model: rebuild dispatch: feature %d: %w", f, ErrFeatureRange)
			}
			if seen[f] {
				return fmt.Errorf("model: rebuild dispatch: feature %d assigned to multiple kinds", f)
			}
			seen[f] = true
			m.dispatch[f] = KindID(id)
		}
	}
	for f, ok := range seen {
		if !ok {
			return fmt.Errorf("model: rebuild dispatch: feature %d assigned to no kind", f)
		}
	}
	return nil
}

// Validate checks the full structure: priors and grid, every kind, agreement
// between the dispatch index and the kinds' feature sets, and a shared row
// count across all mixtures.
func (m *JointModel) Validate() error {
	for f, p := range m.priors {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("model: feature %d: %w", f, err)
		}
	}
	if err := m.featureClustering.Validate(); err != nil {
		return err
	}
	if err := m.grid.Validate(); err != nil {
		return err
	}

	total := 0
	rows := m.RowCount()
	for id, k := range m.kinds {
		if err := k.Validate(); err != nil {
			return fmt.Errorf("model: kind %d: %w", id, err)
		}
		if got := k.Mixture.RowCount(); got != rows {
			return fmt.Errorf("model: kind %d: %w", id, &RowCountError{Expected: rows, Actual: got})
		}
		total += k.FeatureCount()
	}
	if total != len(m.priors) {
		return fmt.Errorf("model: kinds hold %d features, model covers %d", total, len(m.priors))
	}
	for f, id := range m.dispatch {
		if int(id) >= len(m.kinds) {
			return fmt.Errorf("model: dispatch for feature %d points at kind %d of %d", f, id, len(m.kinds))
		}
		if !m.kinds[id].HasFeature(FeatureID(f)) {
			return fmt.Errorf("model: dispatch for feature %d points at kind %d which does not hold it", f, id)
		}
	}
	return nil
}
