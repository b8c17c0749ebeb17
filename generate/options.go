package generate

// Options configures New. New validates the options and panics on violation.
type Options struct {
	// Density is the probability that any one cell is observed. Must be in
	// [0, 1]; 1 generates fully observed rows.
	Density float64
}

// DefaultOptions returns the default generator options.
var DefaultOptions = Options{
	Density: 1,
}
