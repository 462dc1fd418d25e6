package job

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/internal/notifier"
	"vk-compliment-bot/internal/wall"
	"vk-compliment-bot/pkg/logger"

	"github.com/google/uuid"
)

type Store interface {
	Load(ctx context.Context) (*models.BotState, error)
	Save(ctx context.Context, state *models.BotState) error
}

type Poller interface {
	PollOnce(ctx context.Context, state *models.BotState) wall.Result
}

type Captioner interface {
	Caption(ctx context.Context, imageURL string) string
}

type Classifier interface {
	Classify(body, caption string, kind models.MediaKind) models.Category
}

type Selector interface {
	Select(ctx context.Context, category models.Category, state *models.BotState) string
}

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Deps struct {
	Store          Store
	Poller         Poller
	Captioner      Captioner
	Classifier     Classifier
	Selector       Selector
	Notifier       Notifier
	NoPhotoMessage string
}

// Status describes the last finished run.
type Status struct {
	RunID      string    `json:"run_id,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Failed     bool      `json:"failed"`
}

// Runner executes one job at a time against the shared bot state.
type Runner struct {
	deps Deps

	mu     sync.Mutex
	state  *models.BotState
	status Status

	chance   float64
	now      func() time.Time
	random   func() float64
	location *time.Location
}

func New(deps Deps, opts ...Option) *Runner {
	r := &Runner{
		deps:     deps,
		chance:   1.0 / 7,
		now:      time.Now,
		random:   rand.Float64,
		location: time.Local,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

type Option func(*Runner)

// WithWeeklyChance sets the probability of an equipment_and_studio send on an
// eligible day.
func WithWeeklyChance(p float64) Option {
	return func(r *Runner) {
		r.chance = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func WithRandom(random func() float64) Option {
	return func(r *Runner) {
		r.random = random
	}
}

func WithLocation(loc *time.Location) Option {
	return func(r *Runner) {
		if loc != nil {
			r.location = loc
		}
	}
}

// Run polls the wall when category is empty and sends a scheduled message for
// the named category otherwise. Only an unknown category name is reported;
// failures inside the run are logged and swallowed.
func (r *Runner) Run(ctx context.Context, category string) error {
	if category == "" {
		r.RunPoll(ctx)
		return nil
	}

	c, err := models.ParseCategory(category)
	if err != nil {
		return err
	}
	r.RunCategory(ctx, c)
	return nil
}

func (r *Runner) RunPoll(ctx context.Context) {
	r.execute(ctx, "poll", r.poll)
}

func (r *Runner) RunCategory(ctx context.Context, category models.Category) {
	r.execute(ctx, string(category), func(ctx context.Context, state *models.BotState) error {
		return r.scheduled(ctx, category, state)
	})
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) execute(ctx context.Context, mode string, fn func(context.Context, *models.BotState) error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()
	ctx = notifier.WithRunID(ctx, runID)
	start := time.Now()
	failed := false

	logger.Info("Run started", logger.String("run_id", runID), logger.String("mode", mode))

	defer func() {
		if rec := recover(); rec != nil {
			failed = true
			logger.Error("Run panicked",
				logger.String("run_id", runID),
				logger.Any("panic", rec),
			)
			r.persist(ctx, runID)
		}

		r.status = Status{RunID: runID, Mode: mode, FinishedAt: r.now(), Failed: failed}
		logger.Info("Run finished",
			logger.String("run_id", runID),
			logger.Bool("failed", failed),
			logger.Duration("took", time.Since(start)),
		)
	}()

	state, err := r.loadState(ctx)
	if err != nil {
		failed = true
		logger.Error("Failed to load state, skipping run", logger.String("run_id", runID), logger.Err(err))
		return
	}

	if err := fn(ctx, state); err != nil {
		failed = true
		logger.Error("Run failed", logger.String("run_id", runID), logger.Err(err))
		r.persist(ctx, runID)
	}
}

// loadState reads the state on first use and keeps it for later runs.
func (r *Runner) loadState(ctx context.Context) (*models.BotState, error) {
	if r.state != nil {
		return r.state, nil
	}

	state, err := r.deps.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	r.state = state
	return state, nil
}

func (r *Runner) persist(ctx context.Context, runID string) {
	if r.state == nil {
		return
	}
	if err := r.deps.Store.Save(ctx, r.state); err != nil {
		logger.Error("Failed to persist state", logger.String("run_id", runID), logger.Err(err))
	}
}

func (r *Runner) poll(ctx context.Context, state *models.BotState) error {
	res := r.deps.Poller.PollOnce(ctx, state)
	if !res.Found {
		return nil
	}

	var message string
	switch {
	case res.MediaURL != "":
		caption := ""
		if res.MediaKind == models.MediaPhoto {
			caption = r.deps.Captioner.Caption(ctx, res.MediaURL)
		}
		category := r.deps.Classifier.Classify(res.Text, caption, res.MediaKind)
		message = r.deps.Selector.Select(ctx, category, state)
	case res.Text != "":
		category := r.deps.Classifier.Classify(res.Text, "", res.MediaKind)
		message = r.deps.Selector.Select(ctx, category, state)
	default:
		message = r.deps.NoPhotoMessage
	}

	return r.notify(ctx, message)
}

func (r *Runner) scheduled(ctx context.Context, category models.Category, state *models.BotState) error {
	if category != models.CategoryEquipmentAndStudio {
		message := r.deps.Selector.Select(ctx, category, state)
		return r.notify(ctx, message)
	}

	now := r.now().In(r.location)
	if !r.weeklyGate(now, state) {
		return nil
	}

	message := r.deps.Selector.Select(ctx, category, state)
	err := r.deps.Notifier.Notify(ctx, message)
	if errors.Is(err, notifier.ErrNotConfigured) {
		logger.Warn("equipment_and_studio not delivered, weekly slot kept open")
		return nil
	}
	if err != nil {
		return err
	}

	// The gate only moves once a message actually went out.
	day := int(now.Weekday())
	state.LastEquipmentAndStudioDay = &day
	state.LastEquipmentAndStudioWeek = weekTag(now)
	if err := r.deps.Store.Save(ctx, state); err != nil {
		logger.Error("Failed to persist weekly send", logger.Err(err))
	}
	return nil
}

// weeklyGate allows at most one equipment_and_studio send per ISO week and
// then only with the configured chance.
func (r *Runner) weeklyGate(now time.Time, state *models.BotState) bool {
	if state.LastEquipmentAndStudioWeek != "" {
		if state.LastEquipmentAndStudioWeek == weekTag(now) {
			logger.Info("equipment_and_studio already sent this week")
			return false
		}
	} else if d := state.LastEquipmentAndStudioDay; d != nil && *d == int(now.Weekday()) {
		logger.Info("equipment_and_studio already sent on this weekday")
		return false
	}

	if r.random() >= r.chance {
		logger.Info("equipment_and_studio not chosen today")
		return false
	}
	return true
}

func (r *Runner) notify(ctx context.Context, message string) error {
	err := r.deps.Notifier.Notify(ctx, message)
	if errors.Is(err, notifier.ErrNotConfigured) {
		return nil
	}
	return err
}

func weekTag(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
