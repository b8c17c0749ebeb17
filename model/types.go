package model

import (
	"fmt"
)

// FeatureID is the dense, stable identifier of a feature. Feature ids never
// change; only the kind a feature belongs to does.
type FeatureID uint32

// KindID identifies a kind by its position in the joint model. It is
// transient: removing a kind moves the last kind into the freed slot, so ids
// held before a structural mutation are invalid after it.
type KindID uint32

// GroupID is a kind-local identifier for a row group. Groups are dense per
// kind and renumbering follows the same swap-remove convention as kinds.
type GroupID int32

// Placement locates a feature inside the joint model.
type Placement struct {
	Feature FeatureID
	Kind    KindID
}

// String returns a string representation of the Placement.
func (p Placement) String() string {
	return fmt.Sprintf("Placement(%d@%d)", p.Feature, p.Kind)
}
