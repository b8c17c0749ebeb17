// This file implements a fluent sampling API for drawing synthetic rows
// from an engine's learned model.

package crosscat

import (
	"fmt"

	"github.com/hupe1980/crosscat/generate"
	"github.com/hupe1980/crosscat/model"
)

// Sample creates a fluent sampler over the engine's current model.
//
// Example:
//
//	rows, err := eng.Sample().
//	    Rows(1000).
//	    Density(0.8).
//	    Seed(7).
//	    Collect()
//
// The sampler reads the live model, so draws between steps reflect the
// latest structure. Collecting locks the engine and waits for any step in
// flight.
func (e *Engine) Sample() *Sampler {
	return &Sampler{
		eng:     e,
		n:       1,
		density: generate.DefaultOptions.Density,
	}
}

// Sampler is a fluent builder for drawing synthetic rows from the model's
// posterior predictive.
type Sampler struct {
	eng     *Engine
	n       int
	density float64
	seed    uint64
}

// Rows sets the number of rows to draw. Default: 1.
func (s *Sampler) Rows(n int) *Sampler {
	s.n = n
	return s
}

// Density sets the per-cell observation probability in [0, 1]; 1 draws
// fully observed rows. Default: 1.
func (s *Sampler) Density(d float64) *Sampler {
	s.density = d
	return s
}

// Seed sets the sampler's random stream seed. Draws never touch the
// engine's inference stream, so sampling does not perturb the chain.
func (s *Sampler) Seed(seed uint64) *Sampler {
	s.seed = seed
	return s
}

// Collect draws the configured rows.
func (s *Sampler) Collect() ([]model.Row, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()
	g := generate.New(s.eng.m, s.seed, func(o *generate.Options) {
		o.Density = s.density
	})
	return g.Rows(s.n), nil
}

// MustCollect draws the configured rows, panicking on error.
// Use this only in tests or when you're certain the configuration is valid.
func (s *Sampler) MustCollect() []model.Row {
	rows, err := s.Collect()
	if err != nil {
		panic(err)
	}
	return rows
}

// ToFile draws the configured rows into the named row stream. The name's
// suffix picks the compression codec; see the stream package for the
// naming scheme.
func (s *Sampler) ToFile(name string) error {
	if err := s.validate(); err != nil {
		return err
	}
	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()
	return generate.ToFile(name, s.eng.m, s.n, s.seed, func(o *generate.Options) {
		o.Density = s.density
	})
}

func (s *Sampler) validate() error {
	if s.n < 0 {
		return fmt.Errorf("crosscat: sample row count must not be negative, got %d", s.n)
	}
	if s.density < 0 || s.density > 1 {
		return fmt.Errorf("crosscat: sample density must be in [0, 1], got %v", s.density)
	}
	return nil
}
