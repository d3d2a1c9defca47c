package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/urchin/pkg/logger"
)

const defaultFileMode fs.FileMode = 0o644

// FileStore persists the history snapshot as one JSON file. Saves write to
// a temp file in the same directory and rename into place, so a crash mid
// write never corrupts the previous snapshot.
type FileStore struct {
	path     string
	fileMode fs.FileMode
	mu       sync.Mutex
	log      logger.Logger
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:     path,
		fileMode: defaultFileMode,
		log:      logger.Get().Named("history-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted snapshot. A missing file yields an empty
// snapshot; unreadable JSON is reported as ErrCorruptSnapshot.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.log.Warn(ctx, "history snapshot unreadable, starting empty",
			logger.String("path", s.path), logger.Error(err))
		return Snapshot{}, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return snapshot, nil
}

// Save replaces the persisted snapshot atomically.
func (s *FileStore) Save(ctx context.Context, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.SavedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if err := os.Chmod(tmpName, s.fileMode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	s.log.Debug(ctx, "history snapshot saved",
		logger.String("path", s.path),
		logger.Int("entries", len(snapshot.Entries)),
	)
	return nil
}

// NullStore is a Store that persists nothing, used when persistence is
// disabled.
type NullStore struct{}

// Load always returns an empty snapshot.
func (NullStore) Load(_ context.Context) (Snapshot, error) {
	return Snapshot{}, nil
}

// Save discards the snapshot.
func (NullStore) Save(_ context.Context, _ Snapshot) error {
	return nil
}
