package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/pkg/logger"

	"github.com/robfig/cron/v3"
)

var ErrInvalidWindow = errors.New("invalid schedule window")

type Runner interface {
	RunPoll(ctx context.Context)
	RunCategory(ctx context.Context, category models.Category)
}

// Scheduler fires the wall poll on a fixed interval and every scheduled
// category at a random minute inside its window.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	cfg    config.ScheduleConfig
	intN   func(int) int
}

func New(cfg config.ScheduleConfig, runner Runner, opts ...Option) (*Scheduler, error) {
	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	log := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		runner: runner,
		cfg:    cfg,
		intN:   rand.IntN,
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.register(); err != nil {
		return nil, err
	}

	return s, nil
}

type Option func(*Scheduler)

// WithIntN replaces the source of the random minute offsets.
func WithIntN(intN func(int) int) Option {
	return func(s *Scheduler) {
		s.intN = intN
	}
}

func (s *Scheduler) register() error {
	if s.cfg.PollInterval > 0 {
		spec := "@every " + s.cfg.PollInterval.String()
		if _, err := s.cron.AddFunc(spec, func() { s.runner.RunPoll(context.Background()) }); err != nil {
			return fmt.Errorf("failed to schedule poll: %w", err)
		}
		logger.Info("Poll scheduled", logger.String("spec", spec))
	}

	for _, rule := range s.cfg.Rules {
		category, err := models.ParseCategory(rule.Category)
		if err != nil {
			return err
		}

		spec, err := Spec(rule, s.intN)
		if err != nil {
			return fmt.Errorf("rule %s: %w", rule.Category, err)
		}

		if _, err := s.cron.AddFunc(spec, func() { s.runner.RunCategory(context.Background(), category) }); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", rule.Category, err)
		}
		logger.Info("Category scheduled", logger.String("category", string(category)), logger.String("spec", spec))
	}

	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Entries returns the next activation of every registered job.
func (s *Scheduler) Entries() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		next = append(next, e.Next)
	}
	return next
}

// Spec turns a rule into a five-field cron expression firing at a random minute
// in [WindowStart, WindowEnd) on the rule's days.
func Spec(rule config.ScheduleRule, intN func(int) int) (string, error) {
	start, err := parseClock(rule.WindowStart)
	if err != nil {
		return "", err
	}
	end, err := parseClock(rule.WindowEnd)
	if err != nil {
		return "", err
	}
	if end <= start {
		return "", fmt.Errorf("%w: %s-%s", ErrInvalidWindow, rule.WindowStart, rule.WindowEnd)
	}

	days := strings.TrimSpace(rule.Days)
	if days == "" {
		days = "*"
	}

	at := start + intN(end-start)
	spec := fmt.Sprintf("%d %d * * %s", at%60, at/60, days)

	if _, err := cron.ParseStandard(spec); err != nil {
		return "", fmt.Errorf("invalid days %q: %w", rule.Days, err)
	}
	return spec, nil
}

// parseClock returns minutes since midnight for "HH:MM".
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	return h*60 + m, nil
}

// cronLogger routes cron's own logging into pkg/logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, fields(keysAndValues)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(fields(keysAndValues), logger.Err(err))...)
}

func fields(keysAndValues []interface{}) []logger.Field {
	out := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		out = append(out, logger.Any(key, keysAndValues[i+1]))
	}
	return out
}
