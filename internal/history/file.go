package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ppiankov/factlens/internal/model"
)

// FileStore keeps history as a JSON array in a single file. Every write
// replaces the file atomically.
type FileStore struct {
	path     string
	capacity int
	mu       sync.Mutex
}

// NewFileStore creates a file store; the file is created on first Add
func NewFileStore(path string, capacity int) *FileStore {
	if capacity <= 0 {
		capacity = model.HistoryCapacity
	}
	return &FileStore{path: path, capacity: capacity}
}

// List returns the entries, newest first. A missing or unreadable file is
// an empty history.
func (s *FileStore) List(_ context.Context) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

// Add prepends entry and drops whatever exceeds the capacity
func (s *FileStore) Add(_ context.Context, entry model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(prepend(s.read(), entry, s.capacity))
}

// Clear removes every entry
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() []model.HistoryEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []model.HistoryEntry{}
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []model.HistoryEntry{}
	}
	if len(entries) > s.capacity {
		entries = entries[:s.capacity]
	}
	return entries
}

func (s *FileStore) write(entries []model.HistoryEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
