package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// State is console state that survives between runs.
type State struct {
	// StatusEndpointSupported is nil until the status endpoint has been tried.
	StatusEndpointSupported *bool `json:"status_endpoint_supported,omitempty"`
}

// StatusEndpointDisabled reports whether a previous run found no status endpoint.
func (s State) StatusEndpointDisabled() bool {
	return s.StatusEndpointSupported != nil && !*s.StatusEndpointSupported
}

type StateStore interface {
	Load() (State, error)
	Save(st State) error
}

type FileStateStore struct {
	Path string
}

func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{Path: path}
}

func (s *FileStateStore) Load() (State, error) {
	var st State
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, fmt.Errorf("read state: %w", err)
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, fmt.Errorf("parse state: %w", err)
	}
	return st, nil
}

func (s *FileStateStore) Save(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(s.Path, b, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// MemStateStore is an in-process StateStore.
type MemStateStore struct {
	mu sync.Mutex
	st State
}

func (s *MemStateStore) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st, nil
}

func (s *MemStateStore) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = st
	return nil
}
