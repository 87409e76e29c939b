package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ResolveSessionID picks the session id for this process: an explicit value
// wins, then the configured one, then the id kept in the data directory. A
// new id is generated and kept when none exists yet.
func ResolveSessionID(explicit string, cfg Config) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		return id, nil
	}
	if id := cfg.SessionID(); id != "" {
		return id, nil
	}
	path, err := SessionPath()
	if err != nil {
		return "", err
	}
	return loadOrCreateSessionID(path)
}

func loadOrCreateSessionID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", err
	}
	return id, nil
}
