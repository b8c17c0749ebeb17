package benchmark_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hupe1980/crosscat"
)

var streamSuffixes = []string{".stream", ".stream.gz", ".stream.zst", ".stream.lz4"}

// BenchmarkSample measures posterior-predictive draw throughput.
func BenchmarkSample(b *testing.B) {
	for _, n := range []int{100, 1000} {
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			b.ReportAllocs()

			eng := benchEngine(b, rowsMedium, featuresSmall)
			defer eng.Close()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				rows, err := eng.Sample().Rows(n).Seed(uint64(i)).Collect()
				if err != nil {
					b.Fatal(err)
				}
				if len(rows) != n {
					b.Fatalf("drew %d rows, want %d", len(rows), n)
				}
			}
			b.StopTimer()
			b.ReportMetric(float64(n*b.N)/b.Elapsed().Seconds(), "rows/s")
		})
	}
}

// BenchmarkRowStreamWrite measures streaming draws to disk per codec.
func BenchmarkRowStreamWrite(b *testing.B) {
	const n = 1000

	for _, suffix := range streamSuffixes {
		b.Run(suffix[1:], func(b *testing.B) {
			b.ReportAllocs()

			eng := benchEngine(b, rowsMedium, featuresSmall)
			defer eng.Close()

			name := filepath.Join(b.TempDir(), "rows"+suffix)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := eng.Sample().Rows(n).Seed(benchSeed).ToFile(name); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()
			b.ReportMetric(float64(n*b.N)/b.Elapsed().Seconds(), "rows/s")
		})
	}
}

// BenchmarkRowStreamRead measures loading a row stream back into a
// column-major dataset per codec.
func BenchmarkRowStreamRead(b *testing.B) {
	const n = 1000

	for _, suffix := range streamSuffixes {
		b.Run(suffix[1:], func(b *testing.B) {
			b.ReportAllocs()

			eng := benchEngine(b, rowsMedium, featuresSmall)
			name := filepath.Join(b.TempDir(), "rows"+suffix)
			if err := eng.Sample().Rows(n).Seed(benchSeed).ToFile(name); err != nil {
				b.Fatal(err)
			}
			if err := eng.Close(); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ds, err := crosscat.LoadRows(name)
				if err != nil {
					b.Fatal(err)
				}
				if ds.Rows() != n {
					b.Fatalf("loaded %d rows, want %d", ds.Rows(), n)
				}
			}
			b.StopTimer()
			b.ReportMetric(float64(n*b.N)/b.Elapsed().Seconds(), "rows/s")
		})
	}
}
