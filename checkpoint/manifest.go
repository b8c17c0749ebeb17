package checkpoint

import (
	"fmt"
	"time"
)

// FormatVersion is the manifest format this package writes.
const FormatVersion = 1

// ManifestName is the blob name of the manifest, relative to the checkpoint
// prefix. The manifest itself is always plain JSON; the Codec field governs
// the model segment's records.
const ManifestName = "manifest.json"

// Segment names relative to the checkpoint prefix, before the compression
// suffix is appended.
const (
	SegmentModel       = "model.stream"
	SegmentAssignments = "assignments.stream"
	SegmentRows        = "rows.stream"
)

// Manifest describes one checkpoint's contents.
type Manifest struct {
	FormatVersion int       `json:"format_version"`
	CreatedAt     time.Time `json:"created_at"`

	// Codec is the name of the codec encoding the model segment's records.
	Codec string `json:"codec"`

	// Step is the run-step counter the checkpoint was taken at.
	Step uint64 `json:"step"`

	Rows     int `json:"rows"`
	Features int `json:"features"`
	Kinds    int `json:"kinds"`

	Segments []Segment `json:"segments"`
}

// Segment describes one record-stream blob of a checkpoint.
type Segment struct {
	// Name is the blob name relative to the checkpoint prefix. Its suffix
	// implies the whole-stream compression.
	Name string `json:"name"`

	// Records is the number of records in the stream.
	Records uint64 `json:"records"`

	// Size is the compressed size in bytes.
	Size int64 `json:"size"`

	// CRC32C is the CRC32-Castagnoli of the compressed bytes.
	CRC32C uint32 `json:"crc32c"`
}

// Segment returns the segment whose name starts with the given base name
// (the compression suffix varies with the save options).
func (m Manifest) Segment(base string) (Segment, bool) {
	for _, s := range m.Segments {
		if s.Name == base || hasBase(s.Name, base) {
			return s, true
		}
	}
	return Segment{}, false
}

func hasBase(name, base string) bool {
	if len(name) <= len(base) {
		return false
	}
	return name[:len(base)] == base && name[len(base)] == '.'
}

// Name returns the blob-name prefix of the checkpoint taken at the given
// step, e.g. "chk-000042".
func Name(step uint64) string {
	return fmt.Sprintf("chk-%06d", step)
}
