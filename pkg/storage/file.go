package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jwalitptl/notifier/pkg/errors"
)

// FileStore persists the key-value map as one JSON file. Writes go through a
// temp file and rename so a crash mid-write cannot truncate the cache.
type FileStore struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Storage("read", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		// A corrupt cache file is not fatal: start from empty.
		s.data = make(map[string]string)
	}
	return s, nil
}

func (s *FileStore) GetItem(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *FileStore) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value

	raw, err := json.Marshal(s.data)
	if err != nil {
		return errors.Storage("encode", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Storage("mkdir", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Storage("write", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Storage("rename", err)
	}
	return nil
}
