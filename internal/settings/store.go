package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrReadOnly is returned by Save on stores that cannot persist.
var ErrReadOnly = errors.New("settings store is read-only")

// Store persists settings snapshots.
type Store interface {
	// Load returns the persisted snapshot, or Default() when nothing has
	// been saved yet.
	Load() (WallpaperSettings, error)
	// Save persists s, replacing any previous snapshot.
	Save(s WallpaperSettings) error
}

// FileStore keeps the JSON export of a snapshot in a single file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load implements Store.
func (f *FileStore) Load() (WallpaperSettings, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return WallpaperSettings{}, fmt.Errorf("read settings %s: %w", f.Path, err)
	}
	s, err := Import(data)
	if err != nil {
		return WallpaperSettings{}, fmt.Errorf("load settings %s: %w", f.Path, err)
	}
	return ExpandImageRefs(s), nil
}

// Save implements Store. The file is replaced atomically so that a
// concurrent reader or watcher never sees a partial write.
func (f *FileStore) Save(s WallpaperSettings) error {
	data, err := Export(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace settings %s: %w", f.Path, err)
	}
	return nil
}

// MemoryStore keeps a snapshot in memory.
type MemoryStore struct {
	mu    sync.Mutex
	saved *WallpaperSettings
	saves int
}

// NewMemoryStore returns an empty store. Load returns Default() until the
// first Save.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load() (WallpaperSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return Default(), nil
	}
	return m.saved.With(nil), nil
}

// Save implements Store.
func (m *MemoryStore) Save(s WallpaperSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := s.With(nil)
	m.saved = &c
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// OpenStore picks a store implementation from the file extension:
// ".lua" scripts are read through a LuaStore, anything else is a FileStore.
func OpenStore(path string) Store {
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		return NewLuaStore(path)
	}
	return NewFileStore(path)
}
