package kernel

import (
	"fmt"

	"github.com/hupe1980/crosscat/internal/prng"
	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/proposer"
)

// Counters summarizes the structural effect of the last run step.
type Counters struct {
	// Total is the number of features the step considered.
	Total int

	// Changed is the number of features that moved to another kind.
	Changed int

	// Born is the number of kinds empty before the step and occupied after.
	Born int

	// Died is the number of kinds occupied before the step and empty after.
	Died int
}

// KindKernel reassigns features among kinds, one run step at a time. It is
// the sole mutator of its model, assignments and random stream; no other
// code may touch them between New and Close.
type KindKernel struct {
	opts Options

	m    *model.JointModel
	asn  *model.Assignments
	prop proposer.StructureProposer
	rng  *prng.Stream

	counters Counters
	timing   proposer.Timing
	closed   bool
}

// New builds a kernel over the model/assignments pair and tops the empty-kind
// buffer up to the configured size. It panics on invalid options or on a row
// count disagreement between the model, the assignments and the proposer.
func New(m *model.JointModel, asn *model.Assignments, prop proposer.StructureProposer, seed uint64, optFns ...func(o *Options)) *KindKernel {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Sweeps <= 0 {
		panic(fmt.Sprintf("crosscat: sweep count must be positive, got %d", opts.Sweeps))
	}
	if opts.EmptyKinds <= 0 {
		panic(fmt.Sprintf("crosscat: empty kind count must be positive, got %d", opts.EmptyKinds))
	}
	if opts.EmptyGroups < 0 {
		panic(fmt.Sprintf("crosscat: empty group count must not be negative, got %d", opts.EmptyGroups))
	}

	k := &KindKernel{
		opts: opts,
		m:    m,
		asn:  asn,
		prop: prop,
		rng:  prng.New(seed),
	}
	k.mustConsistentRows()
	k.initEmptyKinds(opts.EmptyKinds)
	return k
}

// Run performs one inference step and reports whether any feature moved.
// An unchanged proposal is a normal outcome; the empty-kind buffer is
// normalized either way.
func (k *KindKernel) Run() bool {
	if k.closed {
		panic("crosscat: run on closed kernel")
	}
	k.mustConsistentRows()
	k.mustValidate()

	old := k.m.Mapping()
	proposed, timing, err := k.prop.Search(k.m, k.asn, old, k.opts.Sweeps, k.opts.Parallel, k.rng)
	if err != nil {
		panic(fmt.Sprintf("crosscat: structure search: %v", err))
	}
	if len(proposed) != len(old) {
		panic(fmt.Sprintf("crosscat: proposal covers %d features, model has %d", len(proposed), len(old)))
	}
	k.timing = timing

	changed := 0
	for f, to := range proposed {
		if to != old[f] {
			k.moveFeature(model.FeatureID(f), to)
			changed++
		}
	}
	k.counters.Total = len(old)
	k.counters.Changed = changed

	// Occupancy tally per kind: bit 0 = held features before the step,
	// bit 1 = holds features after. State 1 is a death, state 2 a birth.
	states := make([]uint8, k.m.KindCount())
	for _, id := range old {
		states[id] = 1
	}
	for _, id := range proposed {
		states[id] |= 2
	}
	var tally [4]int
	for _, s := range states {
		tally[s]++
	}
	k.counters.Died = tally[1]
	k.counters.Born = tally[2]

	k.initEmptyKinds(k.opts.EmptyKinds)
	return changed > 0
}

// Close drains the empty-kind buffer so the pair holds only occupied kinds.
// It must run even when the owning process stops early. Closing twice is a
// no-op.
func (k *KindKernel) Close() error {
	if k.closed {
		return nil
	}
	k.closed = true
	k.initEmptyKinds(0)
	return nil
}

// Counters returns the counters of the last run step.
func (k *KindKernel) Counters() Counters {
	return k.counters
}

// Timing returns the search phase breakdown of the last run step.
func (k *KindKernel) Timing() proposer.Timing {
	return k.timing
}

// moveFeature reassigns one feature. It is the atomic unit of structural
// change: statistics transfer, feature sets and the dispatch index update
// together, and the structure revalidates before the next move applies.
func (k *KindKernel) moveFeature(f model.FeatureID, to model.KindID) {
	from := k.m.KindOf(f)
	if from == to {
		panic(fmt.Sprintf("crosscat: move feature %d: already in kind %d", f, to))
	}
	if err := k.prop.TransferFeature(k.m, k.asn, f, to, k.opts.CacheStats, k.rng); err != nil {
		panic(fmt.Sprintf("crosscat: move feature %d to kind %d: %v", f, to, err))
	}
	k.mustValidate()
}

// initEmptyKinds removes every currently empty kind and adds fresh ones until
// target empty kinds exist, then rebuilds the dispatch index and revalidates.
func (k *KindKernel) initEmptyKinds(target int) {
	// Scan back to front: swap-remove pulls the last kind into the freed
	// slot, and every kind behind the cursor has already been checked.
	for id := k.m.KindCount() - 1; id >= 0; id-- {
		if k.m.Kind(model.KindID(id)).IsEmpty() {
			k.removeEmptyKind(model.KindID(id))
		}
	}
	for i := 0; i < target; i++ {
		k.addEmptyKind()
	}
	if err := k.m.RebuildDispatch(); err != nil {
		panic(fmt.Sprintf("crosscat: rebuild dispatch: %v", err))
	}
	k.mustValidate()
}

// addEmptyKind appends a featureless kind. Its clustering comes from the
// hyperprior grid, or from kind 0 when the grid is empty; its row seating is
// sampled fresh and padded with the configured vacant groups.
func (k *KindKernel) addEmptyKind() {
	var clustering model.PitmanYor
	switch {
	case !k.m.Grid().IsEmpty():
		clustering = k.m.Grid().Sample(k.rng)
	case k.m.KindCount() > 0:
		clustering = k.m.Kind(0).Clustering
	default:
		panic("crosscat: add empty kind: empty grid and no kind to copy clustering from")
	}

	labels := clustering.SampleAssignments(k.asn.RowCount(), k.rng)
	groups := 0
	for _, g := range labels {
		if int(g)+1 > groups {
			groups = int(g) + 1
		}
	}
	counts := make([]int, groups+k.opts.EmptyGroups)
	for _, g := range labels {
		counts[g]++
	}

	if _, err := k.m.AppendKind(model.NewKind(clustering, model.NewMixture(counts))); err != nil {
		panic(fmt.Sprintf("crosscat: add empty kind: %v", err))
	}
	if err := k.asn.Append(labels); err != nil {
		panic(fmt.Sprintf("crosscat: add empty kind assignments: %v", err))
	}
}

// removeEmptyKind removes a featureless kind by swap-remove, repointing the
// dispatch entries of whichever kind moved into the freed slot. Removing a
// kind that still holds features is an invariant violation.
func (k *KindKernel) removeEmptyKind(id model.KindID) {
	if !k.m.Kind(id).IsEmpty() {
		panic(fmt.Sprintf("crosscat: remove kind %d: kind still holds features", id))
	}
	if err := k.m.SwapRemoveKind(id); err != nil {
		panic(fmt.Sprintf("crosscat: remove kind %d: %v", id, err))
	}
	if err := k.asn.SwapRemove(id); err != nil {
		panic(fmt.Sprintf("crosscat: remove kind %d assignments: %v", id, err))
	}
}

// mustConsistentRows panics unless the model, the assignments and the
// proposer agree on the row count.
func (k *KindKernel) mustConsistentRows() {
	rows := k.asn.RowCount()
	if got := k.m.RowCount(); got != rows {
		panic(fmt.Sprintf("crosscat: model seats %d rows, assignments %d", got, rows))
	}
	if got := k.prop.Rows(); got != rows {
		panic(fmt.Sprintf("crosscat: proposer scores %d rows, assignments %d", got, rows))
	}
}

// mustValidate panics unless the model and assignments are individually valid
// and agree kind by kind on group seating.
func (k *KindKernel) mustValidate() {
	if err := k.m.Validate(); err != nil {
		panic(fmt.Sprintf("crosscat: %v", err))
	}
	if err := k.asn.Validate(); err != nil {
		panic(fmt.Sprintf("crosscat: %v", err))
	}
	if k.m.KindCount() != k.asn.KindCount() {
		panic(fmt.Sprintf("crosscat: model tracks %d kinds, assignments %d", k.m.KindCount(), k.asn.KindCount()))
	}
	for id := 0; id < k.m.KindCount(); id++ {
		mix := k.m.Kind(model.KindID(id)).Mixture
		want := mix.Counts()
		got := k.asn.GroupCounts(model.KindID(id), mix.GroupCount())
		if len(got) != len(want) {
			panic(fmt.Sprintf("crosscat: kind %d labels use %d groups, mixture has %d", id, len(got), len(want)))
		}
		for g := range want {
			if want[g] != got[g] {
				panic(fmt.Sprintf("crosscat: kind %d group %d seats %d rows, labels say %d", id, g, want[g], got[g]))
			}
		}
	}
}
