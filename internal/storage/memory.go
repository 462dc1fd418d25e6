package storage

import (
	"context"
	"sync"

	"vk-compliment-bot/internal/models"
)

// MemoryStore keeps the encoded state in memory. Used for dry runs and tests.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	Saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*models.BotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return models.NewBotState(), nil
	}
	return decodeState(s.data, "memory"), nil
}

func (s *MemoryStore) Save(ctx context.Context, state *models.BotState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.Saves++
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
