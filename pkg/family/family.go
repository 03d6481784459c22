package family

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kintreehq/kintree/pkg/core/tree"
	"github.com/kintreehq/kintree/pkg/errors"
)

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot converts a snapshot to JSON bytes.
// Persons are sorted by id for deterministic output, which makes the bytes
// usable as cache-key material.
func MarshalSnapshot(s *tree.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeSnapshotTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSnapshotFile writes a snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteSnapshotFile(s *tree.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeSnapshotTo(s, f)
}

// WriteSnapshot writes a snapshot as JSON to an io.Writer.
func WriteSnapshot(s *tree.Snapshot, w io.Writer) error {
	return writeSnapshotTo(s, w)
}

// ReadSnapshotFile reads a JSON file and returns the decoded snapshot.
// The path is validated first since it usually arrives straight from a
// CLI argument. Returns validation errors for malformed records.
func ReadSnapshotFile(path string) (*tree.Snapshot, error) {
	if err := errors.ValidateSnapshotPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readSnapshotFrom(f)
}

// ReadSnapshot decodes a JSON snapshot from an io.Reader.
// Use ReadSnapshotFile for files or pass bytes.NewReader for in-memory data.
func ReadSnapshot(r io.Reader) (*tree.Snapshot, error) {
	return readSnapshotFrom(r)
}

// UnmarshalFamily deserializes JSON bytes to a Family.
func UnmarshalFamily(data []byte) (Family, error) {
	var f Family
	if err := json.Unmarshal(data, &f); err != nil {
		return Family{}, err
	}
	return f, nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeSnapshotTo(s *tree.Snapshot, w io.Writer) error {
	out := FromSnapshot(s)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readSnapshotFrom(r io.Reader) (*tree.Snapshot, error) {
	var data Family
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToSnapshot(data)
}
