package kernel

// Options configures New. New validates the options and panics on violation;
// a kernel never runs on a configuration it cannot honor.
type Options struct {
	// EmptyKinds is the size of the auxiliary empty-kind buffer kept between
	// runs. Must be positive: the buffer is what lets new kinds be born.
	EmptyKinds int

	// EmptyGroups is the number of vacant row groups padded into every fresh
	// kind's seating. Must not be negative.
	EmptyGroups int

	// Sweeps is the number of search sweeps per run step. Must be positive.
	Sweeps int

	// Parallel enables parallel candidate scoring inside the proposer.
	Parallel bool

	// CacheStats lets moves reuse aggregates computed during the search.
	// Disable it while hyperparameters are being re-inferred elsewhere, as
	// cached aggregates would embed the old values.
	CacheStats bool
}

// DefaultOptions returns the default kernel options.
var DefaultOptions = Options{
	EmptyKinds:  8,
	EmptyGroups: 1,
	Sweeps:      10,
	Parallel:    false,
	CacheStats:  true,
}
