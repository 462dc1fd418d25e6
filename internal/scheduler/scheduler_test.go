package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/internal/models"

	"github.com/robfig/cron/v3"
)

type fakeRunner struct {
	polls      int
	categories []models.Category
}

func (f *fakeRunner) RunPoll(ctx context.Context) { f.polls++ }

func (f *fakeRunner) RunCategory(ctx context.Context, category models.Category) {
	f.categories = append(f.categories, category)
}

func fixed(n int) func(int) int {
	return func(max int) int {
		if n >= max {
			return max - 1
		}
		return n
	}
}

func TestSpec(t *testing.T) {
	tests := []struct {
		name    string
		rule    config.ScheduleRule
		offset  int
		want    string
		wantErr bool
	}{
		{
			name:   "window start",
			rule:   config.ScheduleRule{Days: "MON", WindowStart: "10:00", WindowEnd: "13:00"},
			offset: 0,
			want:   "0 10 * * MON",
		},
		{
			name:   "inside window",
			rule:   config.ScheduleRule{Days: "WED", WindowStart: "10:00", WindowEnd: "13:00"},
			offset: 95,
			want:   "35 11 * * WED",
		},
		{
			name:   "last minute",
			rule:   config.ScheduleRule{Days: "FRI", WindowStart: "10:00", WindowEnd: "13:00"},
			offset: 1000,
			want:   "59 12 * * FRI",
		},
		{
			name:   "every day",
			rule:   config.ScheduleRule{Days: "", WindowStart: "09:30", WindowEnd: "09:45"},
			offset: 5,
			want:   "35 9 * * *",
		},
		{name: "empty window", rule: config.ScheduleRule{WindowStart: "13:00", WindowEnd: "10:00"}, wantErr: true},
		{name: "bad clock", rule: config.ScheduleRule{WindowStart: "ten", WindowEnd: "13:00"}, wantErr: true},
		{name: "bad days", rule: config.ScheduleRule{Days: "FUNDAY", WindowStart: "10:00", WindowEnd: "13:00"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Spec(tt.rule, fixed(tt.offset))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Spec() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Spec() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpecStaysInsideWindow(t *testing.T) {
	rule := config.ScheduleRule{Days: "*", WindowStart: "10:00", WindowEnd: "13:00"}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for offset := 0; offset < 180; offset += 7 {
		spec, err := Spec(rule, fixed(offset))
		if err != nil {
			t.Fatalf("Spec() error = %v", err)
		}
		sched, err := parser.Parse(spec)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", spec, err)
		}
		next := sched.Next(base)
		if next.Hour() < 10 || next.Hour() >= 13 {
			t.Errorf("spec %q fires at %v, outside 10:00-13:00", spec, next)
		}
	}
}

func TestNewRegistersJobs(t *testing.T) {
	cfg := config.ScheduleConfig{
		PollInterval: time.Minute,
		Timezone:     "UTC",
		Rules:        config.DefaultRules(),
	}

	s, err := New(cfg, &fakeRunner{}, WithIntN(fixed(0)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := len(s.Entries()); got != len(cfg.Rules)+1 {
		t.Errorf("entries = %d, want %d", got, len(cfg.Rules)+1)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.ScheduleConfig
		check func(error) bool
	}{
		{
			name:  "unknown category",
			cfg:   config.ScheduleConfig{Rules: []config.ScheduleRule{{Category: "memes", WindowStart: "10:00", WindowEnd: "11:00"}}},
			check: func(err error) bool { return errors.Is(err, models.ErrUnknownCategory) },
		},
		{
			name:  "bad window",
			cfg:   config.ScheduleConfig{Rules: []config.ScheduleRule{{Category: "weekly", WindowStart: "11:00", WindowEnd: "11:00"}}},
			check: func(err error) bool { return errors.Is(err, ErrInvalidWindow) },
		},
		{
			name:  "bad timezone",
			cfg:   config.ScheduleConfig{Timezone: "Mars/Olympus"},
			check: func(err error) bool { return err != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, &fakeRunner{})
			if !tt.check(err) {
				t.Errorf("New() error = %v", err)
			}
		})
	}
}

func TestJobsCallRunner(t *testing.T) {
	runner := &fakeRunner{}
	s, err := New(config.ScheduleConfig{
		Timezone: "UTC",
		Rules:    []config.ScheduleRule{{Category: "tattoo_ideas", Days: "*", WindowStart: "10:00", WindowEnd: "13:00"}},
	}, runner)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, e := range s.cron.Entries() {
		e.Job.Run()
	}

	if len(runner.categories) != 1 || runner.categories[0] != models.CategoryTattooIdeas {
		t.Errorf("categories = %v", runner.categories)
	}
}

func TestCronLoggerFields(t *testing.T) {
	got := fields([]interface{}{"entry", 1, 42, "x", "dangling"})
	if len(got) != 2 {
		t.Errorf("len(fields) = %d, want 2", len(got))
	}
}
