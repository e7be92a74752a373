// Package storage archives raw submission payloads. Every accepted upload is
// kept byte-for-byte so scores can be audited after the fact.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists raw submission payloads and hands back an opaque reference.
type Store interface {
	// Save writes payload and returns a reference usable with Open.
	Save(userID string, payload []byte) (string, error)
	// Open returns the payload previously stored under ref.
	Open(ref string) ([]byte, error)
	// Remove deletes the payload stored under ref. Only payloads whose
	// submission was never ledgered should be removed.
	Remove(ref string) error
}

// DiskStore keeps payloads as flat files under a single directory. References
// are file names, never full paths, so the archive can be relocated.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed and returns a store rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes payload under a collision-free name carrying the uploader id.
func (s *DiskStore) Save(userID string, payload []byte) (string, error) {
	ref := fmt.Sprintf("%s_%s.csv", userID, uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.dir, ref), payload, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return ref, nil
}

// Open reads back the payload stored under ref.
func (s *DiskStore) Open(ref string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return data, nil
}

// Remove deletes the payload stored under ref.
func (s *DiskStore) Remove(ref string) error {
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(ref))); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

var _ Store = (*DiskStore)(nil)
