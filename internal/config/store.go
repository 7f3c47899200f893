package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// BlobStore persists opaque values by key.
type BlobStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// SettingsStore loads and saves the settings blob.
type SettingsStore struct {
	blobs BlobStore
	log   *Logger
}

// NewSettingsStore returns a store over blobs. log may be nil.
func NewSettingsStore(blobs BlobStore, log *Logger) *SettingsStore {
	return &SettingsStore{blobs: blobs, log: log}
}

// Load returns the saved settings merged over the defaults. Missing,
// unreadable or corrupt blobs yield the defaults; failures are logged only.
func (s *SettingsStore) Load() Settings {
	blob, ok, err := s.blobs.Get(StorageKey)
	if err != nil {
		s.log.Printf("settings: read %s: %v", StorageKey, err)
		return DefaultSettings()
	}
	if !ok {
		return DefaultSettings()
	}
	settings, err := DecodeSettings(blob)
	if err != nil {
		s.log.Printf("settings: discarding corrupt blob: %v", err)
		return DefaultSettings()
	}
	return settings
}

// Save writes settings.
func (s *SettingsStore) Save(settings Settings) error {
	data, err := EncodeSettings(settings)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(StorageKey, data); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// FileBlobStore keeps one JSON file per key in Dir.
type FileBlobStore struct {
	Dir string
}

// NewFileBlobStore returns a store rooted at ConfigDir.
func NewFileBlobStore() *FileBlobStore {
	return &FileBlobStore{Dir: ConfigDir()}
}

func (f *FileBlobStore) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

// Get reads the value for key. A missing file reports ok=false.
func (f *FileBlobStore) Get(key string) ([]byte, bool, error) {
	if f.Dir == "" {
		return nil, false, errors.New("could not determine config directory")
	}
	p := f.path(key)
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	warnInsecurePermissions(p)
	return data, true, nil
}

// Put writes the value for key with owner-only permissions.
func (f *FileBlobStore) Put(key string, value []byte) error {
	if f.Dir == "" {
		return errors.New("could not determine config directory")
	}
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(f.path(key), value, 0o600)
}

// warnInsecurePermissions prints a warning to stderr if the file is
// readable by group or others. Skipped on Windows where mode bits don't map
// to ACLs.
func warnInsecurePermissions(path string) {
	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm()&0o077 != 0 {
		fmt.Fprintf(os.Stderr, "WARNING: %s is readable by others (mode %o). Run: chmod 600 %s\n",
			path, info.Mode().Perm(), path)
	}
}
