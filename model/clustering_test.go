package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crosscat/internal/prng"
)

func TestPitmanYorValidate(t *testing.T) {
	tests := []struct {
		name    string
		prior   PitmanYor
		wantErr bool
	}{
		{"default", DefaultClustering(), false},
		{"with discount", PitmanYor{Alpha: 0.5, Delta: 0.3}, false},
		{"zero alpha", PitmanYor{Alpha: 0, Delta: 0}, true},
		{"negative delta", PitmanYor{Alpha: 1, Delta: -0.1}, true},
		{"delta one", PitmanYor{Alpha: 1, Delta: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prior.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSampleAssignmentsDenseLabels(t *testing.T) {
	rng := prng.New(7)
	labels := PitmanYor{Alpha: 2, Delta: 0.1}.SampleAssignments(200, rng)
	require.Len(t, labels, 200)

	max := GroupID(0)
	for _, g := range labels {
		require.GreaterOrEqual(t, g, GroupID(0))
		if g > max {
			max = g
		}
	}
	seen := make([]bool, max+1)
	for _, g := range labels {
		seen[g] = true
	}
	for g, ok := range seen {
		assert.True(t, ok, "group %d unused", g)
	}
}

func TestSampleAssignmentsDeterministic(t *testing.T) {
	a := DefaultClustering().SampleAssignments(100, prng.New(11))
	b := DefaultClustering().SampleAssignments(100, prng.New(11))
	assert.Equal(t, a, b)
}

func TestSampleAssignmentsConcentration(t *testing.T) {
	groupsOf := func(labels []GroupID) int {
		max := GroupID(-1)
		for _, g := range labels {
			if g > max {
				max = g
			}
		}
		return int(max) + 1
	}

	tiny := PitmanYor{Alpha: 1e-9}.SampleAssignments(100, prng.New(3))
	assert.Equal(t, 1, groupsOf(tiny))

	large := PitmanYor{Alpha: 1000}.SampleAssignments(100, prng.New(3))
	assert.Greater(t, groupsOf(large), 20)
}

func TestSeatWeights(t *testing.T) {
	p := PitmanYor{Alpha: 2, Delta: 0.5}
	w := p.SeatWeights([]int{3, 1, 0, 0}, nil)

	require.Len(t, w, 4)
	// Occupied groups hold count-delta; the two vacant groups split
	// alpha + delta*occupied = 3 evenly.
	assert.InDeltaSlice(t, []float64{2.5, 0.5, 1.5, 1.5}, w, 1e-12)

	total := 0.0
	for _, x := range w {
		total += x
	}
	assert.InDelta(t, 4+p.Alpha, total, 1e-12)
}

func TestSeatWeightsReusesBuffer(t *testing.T) {
	buf := make([]float64, 8)
	w := DefaultClustering().SeatWeights([]int{1, 2}, buf)
	require.Len(t, w, 2)
	assert.Same(t, &buf[0], &w[0])
}
