package boardstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"adcanvas/internal/board"
)

const fileExt = ".json"

// FileStore writes one indented JSON file per board.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

func NewFileStore(dir string) *FileStore {
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(".", "data", "boards")
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) path(id string) string { return filepath.Join(s.dir, id+fileExt) }

func (s *FileStore) Save(_ context.Context, snap board.Snapshot) error {
	id, err := checkID(snap.ID)
	if err != nil {
		return err
	}
	snap.ID = id
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode board %s: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(id))
}

func (s *FileStore) Load(_ context.Context, id string) (board.Snapshot, error) {
	id, err := checkID(id)
	if err != nil {
		return board.Snapshot{}, err
	}
	s.mu.RLock()
	b, err := os.ReadFile(s.path(id))
	s.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return board.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return board.Snapshot{}, err
	}
	var snap board.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return board.Snapshot{}, fmt.Errorf("decode board %s: %w", id, err)
	}
	return snap, nil
}

func (s *FileStore) List(ctx context.Context) ([]board.Summary, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.dir)
	s.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]board.Summary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		snap, err := s.Load(ctx, strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		out = append(out, snap.Summary())
	}
	sort.Slice(out, byRecent(out))
	return out, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	id, err := checkID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err = os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
