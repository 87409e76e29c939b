package store

import (
	"context"
	"errors"
	"os"
	"sync"

	"leadboard/internal/types"
)

type AppStateStore interface {
	Load(ctx context.Context) (*types.AppState, error)
	Save(ctx context.Context, state *types.AppState) error
}

// FileAppStateStore keeps the app state as a JSON file. A missing or empty
// file loads as the zero state.
type FileAppStateStore struct {
	path string
	mu   sync.Mutex
}

func NewFileAppStateStore(path string) *FileAppStateStore {
	return &FileAppStateStore{path: path}
}

func (s *FileAppStateStore) Path() string { return s.path }

func (s *FileAppStateStore) Load(ctx context.Context) (*types.AppState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &types.AppState{}
	if err := readJSON(s.path, state); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, errEmptyFile) {
			return state, nil
		}
		return nil, err
	}
	return state, nil
}

func (s *FileAppStateStore) Save(ctx context.Context, state *types.AppState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if state == nil {
		return errors.New("state is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONAtomic(s.path, state)
}
