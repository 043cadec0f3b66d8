package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StoredToken is the persisted result of the one-time authorization flow.
type StoredToken struct {
	RefreshToken string    `json:"refresh_token"`
	Obtained     time.Time `json:"obtained"`
}

// FileTokenStore persists the OAuth refresh token to a JSON file.
type FileTokenStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileTokenStore creates a token store that persists to the given path.
// The directory is created automatically on first write.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads the stored token from disk. Returns nil with no error when the
// file is missing or corrupt.
func (s *FileTokenStore) Load() (*StoredToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var token StoredToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, nil // corrupt file, treat as absent
	}
	if token.RefreshToken == "" {
		return nil, nil
	}
	return &token, nil
}

// Save writes the token to disk with 0600 permissions.
func (s *FileTokenStore) Save(token *StoredToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// defaultTokenPath returns the default location for the stored refresh token.
func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".sheets-mcp", "token.json")
	}
	return filepath.Join(home, ".sheets-mcp", "token.json")
}
