package model

import (
	"fmt"
)

// Assignments records each row's group label per kind. The outer order is
// index-aligned with the joint model's kinds and follows the same swap-remove
// convention, so the pair must be mutated in lockstep.
type Assignments struct {
	kinds [][]GroupID
	rows  int
}

// NewAssignments builds an empty assignment table over the given row count.
func NewAssignments(rows int) *Assignments {
	return &Assignments{rows: rows}
}

// RowCount returns the number of rows each kind's labels cover.
func (a *Assignments) RowCount() int {
	return a.rows
}

// KindCount returns the number of kinds covered.
func (a *Assignments) KindCount() int {
	return len(a.kinds)
}

// Kind returns the live label slice for the kind. It must not be mutated by
// readers.
func (a *Assignments) Kind(id KindID) []GroupID {
	return a.kinds[id]
}

// Append adds a kind's labels at the end of the table.
func (a *Assignments) Append(groups []GroupID) error {
	if len(groups) != a.rows {
		return &RowCountError{Expected: a.rows, Actual: len(groups)}
	}
	a.kinds = append(a.kinds, groups)
	return nil
}

// SwapRemove removes the kind's labels by moving the last entry into its
// slot, mirroring the joint model's kind removal.
func (a *Assignments) SwapRemove(id KindID) error {
	if int(id) >= len(a.kinds) {
		return ErrKindRange
	}
	last := len(a.kinds) - 1
	a.kinds[id] = a.kinds[last]
	a.kinds[last] = nil
	a.kinds = a.kinds[:last]
	return nil
}

// Validate checks that every kind covers exactly the row count with
// non-negative labels.
func (a *Assignments) Validate() error {
	for id, groups := range a.kinds {
		if len(groups) != a.rows {
			return fmt.Errorf("model: assignments kind %d: %w", id, &RowCountError{Expected: a.rows, Actual: len(groups)})
		}
		for r, g := range groups {
			if g < 0 {
				return fmt.Errorf("model: assignments kind %d row %d has negative group %d", id, r, g)
			}
		}
	}
	return nil
}

// GroupCounts tallies the group sizes for the kind's labels into a slice of
// at least minGroups entries.
func (a *Assignments) GroupCounts(id KindID, minGroups int) []int {
	groups := a.kinds[id]
	max := minGroups
	for _, g := range groups {
		if int(g)+1 > max {
			max = int(g) + 1
		}
	}
	counts := make([]int, max)
	for _, g := range groups {
		counts[g]++
	}
	return counts
}
