package compliment

import (
	"context"
	"math/rand/v2"
	"slices"

	"vk-compliment-bot/internal/catalog"
	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/pkg/logger"
)

type Saver interface {
	Save(ctx context.Context, state *models.BotState) error
}

type Rand interface {
	IntN(n int) int
}

type Selector struct {
	catalog *catalog.Catalog
	saver   Saver
	rnd     Rand
}

func New(c *catalog.Catalog, saver Saver, opts ...Option) *Selector {
	s := &Selector{
		catalog: c,
		saver:   saver,
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type Option func(*Selector)

func WithRand(r Rand) Option {
	return func(s *Selector) {
		s.rnd = r
	}
}

// Select picks a message for the category that has not been used in the
// current cycle, records it and persists the state before returning.
func (s *Selector) Select(ctx context.Context, category models.Category, state *models.BotState) string {
	pool := s.catalog.Pool(category)
	if len(pool) == 0 {
		logger.Warn("Message pool is empty", logger.String("category", string(category)))
		return s.catalog.FallbackMessage
	}

	used := state.Used(category)
	candidates := make([]string, 0, len(pool))
	for _, msg := range pool {
		if !slices.Contains(used, msg) {
			candidates = append(candidates, msg)
		}
	}

	if len(candidates) == 0 {
		logger.Info("Message pool exhausted, starting a new cycle",
			logger.String("category", string(category)),
			logger.Int("pool_size", len(pool)),
		)
		state.ResetUsed(category)
		candidates = pool
	}

	msg := candidates[s.rnd.IntN(len(candidates))]
	state.AddUsed(category, msg)

	if err := s.saver.Save(ctx, state); err != nil {
		logger.Error("Failed to persist state after selection",
			logger.Err(err),
			logger.String("category", string(category)),
		)
	}

	return msg
}
