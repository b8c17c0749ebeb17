package stream

import (
	"github.com/hupe1980/crosscat/internal/prng"
)

// Shuffle rewrites the records of src into dst in a seeded random order. The
// whole stream is held in memory, so it suits datasets that fit in RAM.
func Shuffle(src, dst string, seed uint64, optFns ...func(o *WriterOptions)) error {
	records, err := ReadAll(src)
	if err != nil {
		return err
	}

	rng := prng.New(seed)
	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	return WriteAll(dst, records, optFns...)
}
