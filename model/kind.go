package model

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Kind is one feature group: a row-clustering prior, the mixture statistics
// of its row partition and the set of features assigned to it.
type Kind struct {
	Clustering PitmanYor
	Mixture    *Mixture

	features *roaring.Bitmap
}

// NewKind builds a kind with no features assigned.
func NewKind(clustering PitmanYor, mixture *Mixture) *Kind {
	return &Kind{
		Clustering: clustering,
		Mixture:    mixture,
		features:   roaring.New(),
	}
}

// FeatureCount returns the number of features assigned to the kind.
func (k *Kind) FeatureCount() int {
	return int(k.features.GetCardinality())
}

// IsEmpty reports whether no features are assigned.
func (k *Kind) IsEmpty() bool {
	return k.features.IsEmpty()
}

// HasFeature reports whether the feature is assigned to the kind.
func (k *Kind) HasFeature(f FeatureID) bool {
	return k.features.Contains(uint32(f))
}

// FeatureIDs returns the assigned features in ascending order.
func (k *Kind) FeatureIDs() []FeatureID {
	raw := k.features.ToArray()
	ids := make([]FeatureID, len(raw))
	for i, f := range raw {
		ids[i] = FeatureID(f)
	}
	return ids
}

// AddFeature assigns the feature to the kind and attaches its per-group
// statistics to the mixture.
func (k *Kind) AddFeature(f FeatureID, stats []GroupStats) error {
	if k.features.Contains(uint32(f)) {
		return fmt.Errorf("model: kind add feature %d: %w", f, ErrFeatureAttached)
	}
	if err := k.Mixture.AttachFeature(f, stats); err != nil {
		return err
	}
	k.features.Add(uint32(f))
	return nil
}

// RemoveFeature unassigns the feature and returns its statistics.
func (k *Kind) RemoveFeature(f FeatureID) ([]GroupStats, error) {
	if !k.features.Contains(uint32(f)) {
		return nil, fmt.Errorf("model: kind remove feature %d: %w", f, ErrFeatureDetached)
	}
	st, err := k.Mixture.DetachFeature(f)
	if err != nil {
		return nil, err
	}
	k.features.Remove(uint32(f))
	return st, nil
}

// Validate cross-checks the feature set against the mixture and validates
// both the clustering prior and the mixture.
func (k *Kind) Validate() error {
	if err := k.Clustering.Validate(); err != nil {
		return err
	}
	if k.Mixture == nil {
		return fmt.Errorf("model: kind has no mixture")
	}
	if err := k.Mixture.Validate(); err != nil {
		return err
	}
	if got, want := k.Mixture.FeatureCount(), k.FeatureCount(); got != want {
		return fmt.Errorf("model: kind tracks %d features but mixture tracks %d", want, got)
	}
	it := k.features.Iterator()
	for it.HasNext() {
		f := FeatureID(it.Next())
		if _, ok := k.Mixture.FeatureStats(f); !ok {
			return fmt.Errorf("model: kind feature %d missing from mixture", f)
		}
	}
	return nil
}
