// Package devicepref persists the preferred output device per application.
// Moving a session to another device survives both the session and the mixer
// restarting, so the mapping is keyed by executable name rather than pid and
// written straight to disk on every change.
package devicepref

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Store reads and writes the executable → device id mapping.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// Open loads (or creates) the mapping file at path.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("devicepref: read %s: %w", path, err)
			}
		}
		// Missing file is a fresh install.
	}

	return &Store{v: v, path: path}, nil
}

// DefaultPath places the mapping next to the deskmix config.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "deskmix", "devices.yaml")
	}
	return "devices.yaml"
}

// Get returns the preferred device id for exe, if one was stored.
func (s *Store) Get(exe string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.v.GetString(key(exe))
	return id, id != ""
}

// Set stores the preferred device id for exe and writes the file.
func (s *Store) Set(exe, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key(exe), deviceID)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("devicepref: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("devicepref: write %s: %w", s.path, err)
	}
	return nil
}

// Remove clears the stored device for exe, returning the session to the
// system default on next launch.
func (s *Store) Remove(exe string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key(exe), "")
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("devicepref: write %s: %w", s.path, err)
	}
	return nil
}

// key lowercases and strips viper's delimiter so "Mail.app" and "mail.app"
// share one entry.
func key(exe string) string {
	return "devices." + strings.ReplaceAll(strings.ToLower(exe), ".", "_")
}
