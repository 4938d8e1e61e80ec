package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TokenCache persists the catalog credential between process restarts.
type TokenCache struct {
	path string
}

// NewTokenCache creates a TokenCache backed by the file at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path returns the file path where the credential is stored.
func (c *TokenCache) Path() string {
	return c.path
}

// Load reads the cached credential from disk.
// Returns (nil, nil) if the file does not exist.
func (c *TokenCache) Load() (*Credential, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	if cred.Token == "" {
		return nil, nil
	}

	return &cred, nil
}

// Save writes the credential to disk, creating the parent directory if needed.
func (c *TokenCache) Save(cred *Credential) error {
	if cred == nil {
		return errors.New("cannot save nil credential")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

// Delete removes the cached credential file.
// Returns nil if the file does not exist.
func (c *TokenCache) Delete() error {
	err := os.Remove(c.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
