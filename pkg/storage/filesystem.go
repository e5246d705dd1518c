package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

// FileStore keeps records in a flat text file, one record per line
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store. The file itself is created on
// the first Save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load implements RecordStore.Load. A missing file loads as an empty set.
func (s *FileStore) Load(ctx context.Context, catalog *plans.Catalog) ([]*subscribers.Subscriber, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	defer f.Close()

	subs, _, err := Decode(f, catalog)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Save implements RecordStore.Save. Content goes to a temp file that is
// renamed over the target, so readers see either the old or the new set.
func (s *FileStore) Save(ctx context.Context, subs []*subscribers.Subscriber) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, subs); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync store file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close store file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set store file mode: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}

// Close implements RecordStore.Close
func (s *FileStore) Close() error {
	return nil
}
