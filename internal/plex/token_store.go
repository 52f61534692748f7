package plex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// TokenRecord is the persisted authentication state shared between runs.
type TokenRecord struct {
	Token            string `json:"auth_token"`
	ServerURL        string `json:"server_url,omitempty"`
	ClientIdentifier string `json:"client_identifier"`
}

// TokenStore abstracts persistence for Plex authentication state.
type TokenStore interface {
	Load() (TokenRecord, bool, error)
	Save(TokenRecord) error
	Delete() error
}

// FileTokenStore writes the token record to a JSON file on disk. Concurrent
// post-processing jobs share one record, so every operation holds a sidecar
// file lock.
type FileTokenStore struct {
	path string
	lock *flock.Flock
}

// NewFileTokenStore builds a FileTokenStore rooted at the provided path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the backing file location.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the token record from disk. A missing, unreadable, or
// undecodable file resolves to ok=false rather than an error so callers fall
// through to a fresh sign-in; a corrupt record must never block a run. An
// undecodable file is removed so the next save starts clean.
func (s *FileTokenStore) Load() (TokenRecord, bool, error) {
	if err := s.acquire(); err != nil {
		return TokenRecord{}, false, err
	}
	defer s.release()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return TokenRecord{}, false, nil
	}

	var record TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		_ = os.Remove(s.path)
		return TokenRecord{}, false, nil
	}
	if strings.TrimSpace(record.Token) == "" {
		return record, false, nil
	}
	return record, true, nil
}

// Save persists the token record with restricted permissions. The write goes
// through a temp file and rename so a crashed run never leaves a torn record.
func (s *FileTokenStore) Save(record TokenRecord) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure auth state directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plex auth state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write plex auth state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit plex auth state: %w", err)
	}
	return nil
}

// Delete removes the persisted record. A missing file is not an error.
func (s *FileTokenStore) Delete() error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove plex auth state: %w", err)
	}
	return nil
}

func (s *FileTokenStore) acquire() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure auth state directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock plex auth state: %w", err)
	}
	return nil
}

func (s *FileTokenStore) release() {
	_ = s.lock.Unlock()
}
