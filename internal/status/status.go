// Package status reads the shared status record that drives the avatar.
//
// The record is owned by an external collaborator which rewrites the file at
// will. It is parsed as data on every read, never executed.
package status

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrMalformed is returned when the source exists but cannot be decoded.
var ErrMalformed = errors.New("malformed status")

// ExternalStatus is one observation of the collaborator's state.
// Nil pointers mean the value is absent from the source.
type ExternalStatus struct {
	Processing bool
	Emotion    *string
	Output     *string
	Waiting    bool
}

// Snapshot is what a Provider hands the poll loop each tick.
type Snapshot struct {
	// Revision fingerprints the raw content; equal revisions mean equal content.
	Revision uint64
	// Present is false when the source does not exist.
	Present bool
	Status  ExternalStatus
}

// Same reports whether two snapshots were taken from identical content.
func (s Snapshot) Same(other Snapshot) bool {
	return s.Present == other.Present && s.Revision == other.Revision
}

// Provider yields the current status snapshot.
type Provider interface {
	Snapshot() (Snapshot, error)
}

// Decoder turns raw source content into a status.
type Decoder func([]byte) (ExternalStatus, error)

// FileProvider re-reads a status file in full on every call.
type FileProvider struct {
	path   string
	decode Decoder
}

// NewFileProvider picks a decoder from the file extension: YAML/JSON files
// are decoded as documents, everything else as name = value assignments.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path, decode: DecoderFor(path)}
}

// Path returns the watched file.
func (p *FileProvider) Path() string { return p.path }

// Snapshot reads and decodes the file. A missing file is not an error.
// On decode failure the returned snapshot still carries the revision so
// callers can tell repeated failures of the same content apart.
func (p *FileProvider) Snapshot() (Snapshot, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("read status %s: %w", p.path, err)
	}

	snap := Snapshot{Revision: xxhash.Sum64(raw), Present: true}
	st, err := p.decode(raw)
	if err != nil {
		return snap, fmt.Errorf("decode status %s: %w", p.path, err)
	}
	snap.Status = st
	return snap, nil
}

// DecoderFor returns the decoder matching a status file name.
func DecoderFor(path string) Decoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return DecodeYAML
	default:
		return DecodeAssignments
	}
}

func strPtr(s string) *string { return &s }
