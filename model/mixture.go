package model

import (
	"fmt"
)

// Mixture holds one kind's row-clustering state: group sizes plus per-feature
// per-group sufficient statistics. Trailing zero counts are legal and mark
// vacant groups kept around for seating.
type Mixture struct {
	counts []int
	rows   int
	feats  map[FeatureID][]GroupStats
}

// NewMixture builds a mixture over the given group sizes. The slice is owned
// by the mixture afterwards.
func NewMixture(counts []int) *Mixture {
	rows := 0
	for _, c := range counts {
		rows += c
	}
	return &Mixture{
		counts: counts,
		rows:   rows,
		feats:  make(map[FeatureID][]GroupStats),
	}
}

// RowCount returns the number of rows seated in the mixture.
func (m *Mixture) RowCount() int {
	return m.rows
}

// GroupCount returns the number of groups, vacant ones included.
func (m *Mixture) GroupCount() int {
	return len(m.counts)
}

// Counts returns the live group-size slice. It must not be mutated.
func (m *Mixture) Counts() []int {
	return m.counts
}

// VacantGroups returns the number of zero-count groups.
func (m *Mixture) VacantGroups() int {
	n := 0
	for _, c := range m.counts {
		if c == 0 {
			n++
		}
	}
	return n
}

// FeatureCount returns the number of features tracked by the mixture.
func (m *Mixture) FeatureCount() int {
	return len(m.feats)
}

// FeatureStats returns the per-group statistics tracked for the feature. The
// slice is live and must not be mutated by readers.
func (m *Mixture) FeatureStats(f FeatureID) ([]GroupStats, bool) {
	st, ok := m.feats[f]
	return st, ok
}

// AttachFeature starts tracking the feature with the given per-group
// statistics. The stats length must match the group count.
func (m *Mixture) AttachFeature(f FeatureID, stats []GroupStats) error {
	if _, ok := m.feats[f]; ok {
		return fmt.Errorf("model: attach feature %d: %w", f, ErrFeatureAttached)
	}
	if len(stats) != len(m.counts) {
		return fmt.Errorf("model: attach feature %d: %w", f, &GroupCountError{Expected: len(m.counts), Actual: len(stats)})
	}
	m.feats[f] = stats
	return nil
}

// DetachFeature stops tracking the feature and returns its statistics.
func (m *Mixture) DetachFeature(f FeatureID) ([]GroupStats, error) {
	st, ok := m.feats[f]
	if !ok {
		return nil, fmt.Errorf("model: detach feature %d: %w", f, ErrFeatureDetached)
	}
	delete(m.feats, f)
	return st, nil
}

// Validate cross-checks the group layout: tracked features must span exactly
// the mixture's groups and their statistics must seat the same number of rows
// as the counts do.
func (m *Mixture) Validate() error {
	rows := 0
	for g, c := range m.counts {
		if c < 0 {
			return fmt.Errorf("model: mixture group %d has negative count %d", g, c)
		}
		rows += c
	}
	if rows != m.rows {
		return &RowCountError{Expected: m.rows, Actual: rows}
	}
	for f, st := range m.feats {
		if len(st) != len(m.counts) {
			return fmt.Errorf("model: mixture feature %d: %w", f, &GroupCountError{Expected: len(m.counts), Actual: len(st)})
		}
		n := 0.0
		for g, s := range st {
			if s.N < 0 {
				return fmt.Errorf("model: mixture feature %d group %d has negative weight %v", f, g, s.N)
			}
			if m.counts[g] == 0 && !s.IsEmpty() {
				return fmt.Errorf("model: mixture feature %d has statistics in vacant group %d", f, g)
			}
			n += s.N
		}
		if n != float64(m.rows) {
			return fmt.Errorf("model: mixture feature %d seats %v observations across %d rows", f, n, m.rows)
		}
	}
	return nil
}
