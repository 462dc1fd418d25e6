package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/pkg/logger"
)

// Syncer backs up the state file after every successful write.
type Syncer interface {
	Sync(ctx context.Context) error
}

type FileStore struct {
	path   string
	mu     sync.Mutex
	syncer Syncer
}

type FileOption func(*FileStore)

func WithGitSync(s Syncer) FileOption {
	return func(f *FileStore) {
		f.syncer = s
	}
}

func NewFileStore(path string, opts ...FileOption) *FileStore {
	f := &FileStore{path: path}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FileStore) Load(ctx context.Context) (*models.BotState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("State file not found, starting fresh", logger.String("path", f.path))
			return models.NewBotState(), nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", f.path, err)
	}

	return decodeState(data, f.path), nil
}

// Save writes the state through a temp file and rename. A failing backup sync
// is logged and does not fail the save.
func (f *FileStore) Save(ctx context.Context, state *models.BotState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state dir: %w", err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	if f.syncer != nil {
		if err := f.syncer.Sync(ctx); err != nil {
			logger.Error("Failed to sync state file", logger.Err(err), logger.String("path", f.path))
		}
	}

	return nil
}

func (f *FileStore) Close() error {
	return nil
}
