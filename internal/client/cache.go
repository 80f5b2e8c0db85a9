package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	keyStatus = "local_attendance_status"
	keyTime   = "local_attendance_time"
)

// KV is the minimal key-value surface the status cache needs. Get
// returns "" for a missing key.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// StatusCache persists the last submission outcome so the reconciler
// can bridge server lag across process restarts.
type StatusCache struct {
	kv KV
}

func NewStatusCache(kv KV) *StatusCache {
	return &StatusCache{kv: kv}
}

// Load returns nil without error when no usable entry is stored:
// a missing status, an unknown status value or an unparseable
// timestamp all read as an empty cache rather than a failure.
func (c *StatusCache) Load() (*CachedStatus, error) {
	status, err := c.kv.Get(keyStatus)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", keyStatus, err)
	}
	if State(status) != StateCheckedIn && State(status) != StateCheckedOut {
		return nil, nil
	}
	raw, err := c.kv.Get(keyTime)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", keyTime, err)
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, nil
	}
	return &CachedStatus{Status: State(status), Timestamp: ts}, nil
}

func (c *StatusCache) Store(status State, at time.Time) error {
	if err := c.kv.Set(keyStatus, string(status)); err != nil {
		return fmt.Errorf("write %s: %w", keyStatus, err)
	}
	if err := c.kv.Set(keyTime, at.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("write %s: %w", keyTime, err)
	}
	return nil
}

// FileStore is a small JSON-file KV for the agent. Writes go through
// a temp file and rename so a crash never leaves a torn file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return "", err
	}
	return data[key], nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return err
	}
	data[key] = value
	return s.write(data)
}

func (s *FileStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return data, nil
}

func (s *FileStore) write(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
