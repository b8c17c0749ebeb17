package model

import (
	"errors"
	"fmt"
)

var (
	// ErrKindRange is returned when a KindID does not address a kind.
	ErrKindRange = errors.New("model: kind id out of range")

	// ErrFeatureRange is returned when a FeatureID does not address a feature.
	ErrFeatureRange = errors.New("model: feature id out of range")

	// ErrKindNotEmpty is returned when a structural removal targets a kind
	// that still has features assigned.
	ErrKindNotEmpty = errors.New("model: kind still has features assigned")

	// ErrFeatureAttached is returned when a feature is added to a kind that
	// already tracks it.
	ErrFeatureAttached = errors.New("model: feature already attached")

	// ErrFeatureDetached is returned when a feature is removed from a kind
	// that does not track it.
	ErrFeatureDetached = errors.New("model: feature not attached")
)

// RowCountError is returned when two index-aligned structures disagree about
// the number of rows they cover.
type RowCountError struct {
	Expected int
	Actual   int
}

func (e *RowCountError) Error() string {
	return fmt.Sprintf("model: row count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// GroupCountError is returned when per-group statistics disagree with the
// group layout of their mixture.
type GroupCountError struct {
	Expected int
	Actual   int
}

func (e *GroupCountError) Error() string {
	return fmt.Sprintf("model: group count mismatch: expected %d, got %d", e.Expected, e.Actual)
}
