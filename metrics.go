package crosscat

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    stepCounter   prometheus.Counter
//	    stepHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordStep(duration time.Duration, moved int) {
//	    p.stepCounter.Inc()
//	    // ... record duration, moved features, etc.
//	}
type MetricsCollector interface {
	// RecordStep is called after each inference step.
	// duration is the total time taken, moved is the number of features
	// that changed kind.
	RecordStep(duration time.Duration, moved int)

	// RecordCheckpoint is called after each checkpoint save.
	// duration is the total time taken, err is nil if successful.
	RecordCheckpoint(duration time.Duration, err error)

	// RecordRestore is called after each checkpoint restore.
	RecordRestore(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStep(time.Duration, int)         {}
func (NoopMetricsCollector) RecordCheckpoint(time.Duration, error) {}
func (NoopMetricsCollector) RecordRestore(time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	StepCount        atomic.Int64
	StepTotalNanos   atomic.Int64
	FeaturesMoved    atomic.Int64
	CheckpointCount  atomic.Int64
	CheckpointErrors atomic.Int64
	RestoreCount     atomic.Int64
	RestoreErrors    atomic.Int64
}

// RecordStep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStep(duration time.Duration, moved int) {
	b.StepCount.Add(1)
	b.StepTotalNanos.Add(duration.Nanoseconds())
	b.FeaturesMoved.Add(int64(moved))
}

// RecordCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckpoint(duration time.Duration, err error) {
	b.CheckpointCount.Add(1)
	if err != nil {
		b.CheckpointErrors.Add(1)
	}
}

// RecordRestore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRestore(duration time.Duration, err error) {
	b.RestoreCount.Add(1)
	if err != nil {
		b.RestoreErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StepCount:        b.StepCount.Load(),
		StepAvgNanos:     b.getAvgStepNanos(),
		FeaturesMoved:    b.FeaturesMoved.Load(),
		CheckpointCount:  b.CheckpointCount.Load(),
		CheckpointErrors: b.CheckpointErrors.Load(),
		RestoreCount:     b.RestoreCount.Load(),
		RestoreErrors:    b.RestoreErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgStepNanos() int64 {
	count := b.StepCount.Load()
	if count == 0 {
		return 0
	}
	return b.StepTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StepCount        int64
	StepAvgNanos     int64
	FeaturesMoved    int64
	CheckpointCount  int64
	CheckpointErrors int64
	RestoreCount     int64
	RestoreErrors    int64
}
