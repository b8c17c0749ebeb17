package checkpoint

import (
	"errors"
	"fmt"

	"github.com/hupe1980/crosscat/codec"
	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/stream"
)

// CurrentName is the blob holding the name of the latest committed
// checkpoint. Stores with conditional writes give this blob special
// treatment; see blobstore/s3.DDBCommitStore.
const CurrentName = "CURRENT"

var (
	// ErrCorrupt is returned when a checkpoint fails verification against its
	// manifest.
	ErrCorrupt = errors.New("checkpoint: corrupt checkpoint")

	// ErrInvalidVersion is returned when a manifest was written by an
	// unsupported format version.
	ErrInvalidVersion = errors.New("checkpoint: unsupported format version")

	// ErrNoDataset is returned when a checkpoint written without rows is
	// loaded without supplying a dataset.
	ErrNoDataset = errors.New("checkpoint: rows segment missing and no dataset supplied")
)

// ChecksumError is returned when a segment's bytes do not match the manifest.
type ChecksumError struct {
	Segment  string
	Expected uint32
	Actual   uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checkpoint: segment %s checksum mismatch: expected 0x%08x, got 0x%08x", e.Segment, e.Expected, e.Actual)
}

// Unwrap classifies the mismatch as corruption for errors.Is.
func (e *ChecksumError) Unwrap() error { return ErrCorrupt }

// State is the engine state a checkpoint captures.
type State struct {
	Model       *model.JointModel
	Assignments *model.Assignments

	// Dataset is the row window the mixtures were computed over. Save
	// requires it when IncludeRows is set; Load always returns one.
	Dataset *model.Dataset

	// Step is the run-step counter the state belongs to. It names the
	// checkpoint.
	Step uint64
}

// Options configures Save.
type Options struct {
	// Codec encodes the model segment's records. The manifest names it so a
	// load can pick the matching decoder.
	Codec codec.Codec

	// Compression is the whole-stream compression applied to every segment.
	Compression stream.Codec

	// Level is the compression level, on the zstd scale.
	Level int

	// IncludeRows writes the dataset rows into the checkpoint, making it
	// loadable without an external row source.
	IncludeRows bool
}

// DefaultOptions returns the default save options.
var DefaultOptions = Options{
	Codec:       codec.Default,
	Compression: stream.CodecZstd,
	Level:       3,
	IncludeRows: true,
}

// LoadOptions configures Load and LoadAt.
type LoadOptions struct {
	// Dataset supplies the row window when the checkpoint was written
	// without rows. Ignored when the checkpoint carries its own.
	Dataset *model.Dataset

	// MaxRecordSize bounds the record length accepted while reading
	// segments.
	MaxRecordSize uint32
}

// DefaultLoadOptions returns the default load options.
var DefaultLoadOptions = LoadOptions{
	Dataset:       nil,
	MaxRecordSize: stream.DefaultMaxRecordSize,
}
