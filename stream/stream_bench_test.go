package stream

import (
	"encoding/binary"
	"path/filepath"
	"testing"
)

func benchRecords(n, size int) [][]byte {
	records := make([][]byte, n)
	for i := range records {
		rec := make([]byte, size)
		for off := 0; off+8 <= size; off += 8 {
			binary.LittleEndian.PutUint64(rec[off:], uint64(i*size+off))
		}
		records[i] = rec
	}
	return records
}

// BenchmarkWrite measures framed writes per codec suffix.
func BenchmarkWrite(b *testing.B) {
	records := benchRecords(1000, 256)

	for _, suffix := range []string{".stream", ".stream.gz", ".stream.zst", ".stream.lz4"} {
		b.Run(suffix[1:], func(b *testing.B) {
			b.ReportAllocs()
			name := filepath.Join(b.TempDir(), "bench"+suffix)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := WriteAll(name, records); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()
			b.ReportMetric(float64(len(records)*b.N)/b.Elapsed().Seconds(), "records/s")
		})
	}
}

// BenchmarkRead measures framed reads per codec suffix.
func BenchmarkRead(b *testing.B) {
	records := benchRecords(1000, 256)

	for _, suffix := range []string{".stream", ".stream.gz", ".stream.zst", ".stream.lz4"} {
		b.Run(suffix[1:], func(b *testing.B) {
			b.ReportAllocs()
			name := filepath.Join(b.TempDir(), "bench"+suffix)
			if err := WriteAll(name, records); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				got, err := ReadAll(name)
				if err != nil {
					b.Fatal(err)
				}
				if len(got) != len(records) {
					b.Fatalf("read %d records, want %d", len(got), len(records))
				}
			}
			b.StopTimer()
			b.ReportMetric(float64(len(records)*b.N)/b.Elapsed().Seconds(), "records/s")
		})
	}
}

// BenchmarkCyclicRead measures wrap-around reads over a short stream.
func BenchmarkCyclicRead(b *testing.B) {
	b.ReportAllocs()

	records := benchRecords(16, 256)
	name := filepath.Join(b.TempDir(), "bench.stream")
	if err := WriteAll(name, records); err != nil {
		b.Fatal(err)
	}

	r, err := NewReader(name, func(o *ReaderOptions) {
		o.Cyclic = true
	})
	if err != nil {
		b.Fatal(err)
	}
	defer r.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Next(); err != nil {
			b.Fatal(err)
		}
	}
}
