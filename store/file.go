package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"stockledger/domain"
	"stockledger/ledger"
)

// FileStore keeps the session in memory and snapshots it to a JSON file
// after every successful update.
type FileStore struct {
	mu    sync.RWMutex
	state *domain.State
	path  string
}

// compile-time assertion
var _ domain.Store = (*FileStore)(nil)

// NewFileStore constructs a FileStore at the given path. If the file exists it will be loaded.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		state: domain.NewState(),
		path:  path,
	}
	if err := s.loadFromFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) loadFromFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// no file yet; that's fine
			return nil
		}
		return err
	}
	if len(b) == 0 {
		return nil
	}
	st := domain.NewState()
	if err := json.Unmarshal(b, st); err != nil {
		return err
	}
	if st.Inventory == nil {
		st.Inventory = ledger.New()
	}
	s.state = st
	return nil
}

func (s *FileStore) saveToFile(st *domain.State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Empty reports whether nothing has been loaded or written yet.
func (s *FileStore) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Products) == 0 && len(s.state.Warehouses) == 0 && len(s.state.History) == 0
}

func (s *FileStore) View(ctx context.Context, fn func(*domain.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// Update applies fn to a clone; the clone is written to disk before it
// becomes visible, so a failed write leaves both file and memory unchanged.
func (s *FileStore) Update(ctx context.Context, fn func(*domain.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.saveToFile(next); err != nil {
		return err
	}
	s.state = next
	return nil
}
