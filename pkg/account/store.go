// Package account persists authenticated accounts to a JSON file and
// resolves them for target selection and task execution.
package account

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const storeVersion = 1

// Account is one authenticated platform identity. Unique by
// (Platform, ID).
type Account struct {
	Platform  string    `json:"platform"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IconURL   string    `json:"icon_url,omitempty"`
	Token     string    `json:"token"`
	Refreshed time.Time `json:"refreshed"`
}

// storeData is the on-disk shape.
type storeData struct {
	Version  int       `json:"version"`
	Accounts []Account `json:"accounts"`
}

// Store owns the account list. Task execution only reads it; removal
// on auth failure happens through the refresh flow.
type Store struct {
	mu       sync.RWMutex
	filePath string
	data     storeData
	onChange func()
}

// Open creates or loads the account store at dir/accounts.json.
func Open(dir string) (*Store, error) {
	s := &Store{
		filePath: filepath.Join(dir, "accounts.json"),
		data:     storeData{Version: storeVersion},
	}

	if data, err := os.ReadFile(s.filePath); err == nil {
		if err := json.Unmarshal(data, &s.data); err != nil {
			return nil, fmt.Errorf("failed to parse account store: %w", err)
		}
		if s.data.Version > storeVersion {
			return nil, fmt.Errorf("account store version %d is newer than supported %d", s.data.Version, storeVersion)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read account store: %w", err)
	}

	return s, nil
}

// OnChange registers a callback invoked after every persisted change.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// List returns a copy of all stored accounts.
func (s *Store) List() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Account(nil), s.data.Accounts...)
}

// Get returns the account for (platform, id).
func (s *Store) Get(platformKey, id string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.data.Accounts {
		if acc.Platform == platformKey && acc.ID == id {
			return acc, true
		}
	}
	return Account{}, false
}

// ByPlatform returns all accounts for one platform.
func (s *Store) ByPlatform(platformKey string) []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Account
	for _, acc := range s.data.Accounts {
		if acc.Platform == platformKey {
			out = append(out, acc)
		}
	}
	return out
}

// Upsert inserts or replaces the account keyed by (Platform, ID) and
// persists the store.
func (s *Store) Upsert(acc Account) error {
	s.mu.Lock()
	replaced := false
	for i, existing := range s.data.Accounts {
		if existing.Platform == acc.Platform && existing.ID == acc.ID {
			s.data.Accounts[i] = acc
			replaced = true
			break
		}
	}
	if !replaced {
		s.data.Accounts = append(s.data.Accounts, acc)
	}
	err := s.saveLocked()
	fn := s.onChange
	s.mu.Unlock()

	if err == nil && fn != nil {
		fn()
	}
	return err
}

// Remove deletes the account for (platform, id) and persists the
// store. Removing a missing account is a no-op.
func (s *Store) Remove(platformKey, id string) error {
	s.mu.Lock()
	kept := s.data.Accounts[:0]
	removed := false
	for _, acc := range s.data.Accounts {
		if acc.Platform == platformKey && acc.ID == id {
			removed = true
			continue
		}
		kept = append(kept, acc)
	}
	s.data.Accounts = kept

	var err error
	if removed {
		err = s.saveLocked()
	}
	fn := s.onChange
	s.mu.Unlock()

	if err == nil && removed && fn != nil {
		fn()
	}
	return err
}

// saveLocked writes the store atomically. Callers hold s.mu.
func (s *Store) saveLocked() error {
	s.data.Version = storeVersion

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal account store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write account store: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename account store: %w", err)
	}
	return nil
}
