package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

// Store persists checkpoint state as a single JSON document. Saves
// replace the document atomically: the state is written to a temporary
// file in the same directory and renamed over the target, so a crash
// mid-save never leaves a half-written checkpoint behind.
type Store struct {
	path string
}

// NewStore creates a store persisting to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted checkpoint. A missing file yields nil with
// no error. An unreadable or unparsable file also yields nil, together
// with an error describing why, so the caller can warn and start
// fresh instead of failing the run.
func (s *Store) Load() (*domain.Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", s.path, err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", s.path, err)
	}
	if cp.Repos == nil {
		cp.Repos = make(map[string]domain.RepoCheckpoint)
	}
	if cp.Users == nil {
		cp.Users = make(map[string]*domain.UserRecord)
	}
	return &cp, nil
}

// Save atomically replaces the persisted checkpoint.
func (s *Store) Save(cp *domain.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace checkpoint %s: %w", s.path, err)
	}
	return nil
}
