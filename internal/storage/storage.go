package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/pkg/logger"
)

var ErrUnknownBackend = errors.New("unknown state backend")

// Store persists the bot state document.
type Store interface {
	Load(ctx context.Context) (*models.BotState, error)
	Save(ctx context.Context, state *models.BotState) error
	Close() error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		var opts []FileOption
		if cfg.File.GitSync {
			opts = append(opts, WithGitSync(NewGitSync(cfg.File.Path, cfg.File.GitRemote, cfg.File.GitBranch)))
		}
		return NewFileStore(cfg.File.Path, opts...), nil
	case "postgres":
		db, err := Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db, cfg.Database.StateKey), nil
	case "s3":
		store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// decodeState turns a stored document into a state. Corrupt documents are
// logged and replaced by a fresh state.
func decodeState(data []byte, source string) *models.BotState {
	state := models.NewBotState()
	if err := json.Unmarshal(data, state); err != nil {
		logger.Warn("State document is corrupt, starting fresh",
			logger.String("source", source),
			logger.Err(err),
		)
		return models.NewBotState()
	}
	return state
}

func encodeState(state *models.BotState) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}
