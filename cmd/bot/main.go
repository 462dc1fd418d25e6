package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"vk-compliment-bot/internal/captioner"
	"vk-compliment-bot/internal/catalog"
	"vk-compliment-bot/internal/classifier"
	"vk-compliment-bot/internal/compliment"
	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/internal/job"
	"vk-compliment-bot/internal/notifier"
	"vk-compliment-bot/internal/queue"
	"vk-compliment-bot/internal/scheduler"
	"vk-compliment-bot/internal/server"
	"vk-compliment-bot/internal/storage"
	"vk-compliment-bot/internal/translator"
	"vk-compliment-bot/internal/wall"
	"vk-compliment-bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	serve := flag.Bool("serve", false, "run as a daemon with the built-in scheduler and admin server")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-serve] [category]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.App.LogLevel, nil)
	logger.Info("Starting vk-compliment-bot",
		logger.String("app", cfg.App.Name),
		logger.String("environment", cfg.App.Environment),
		logger.Bool("serve", *serve),
	)
	if missing := cfg.Missing(); len(missing) > 0 {
		logger.Warn("Configuration is incomplete, affected calls will be skipped", logger.Any("missing", missing))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		var dbErr *storage.ConnectionError
		if errors.As(err, &dbErr) {
			logger.Error("Failed to connect to database",
				logger.Err(dbErr),
				logger.String("host", dbErr.Host),
				logger.Int("port", dbErr.Port),
			)
		} else {
			logger.Error("Failed to open state store", logger.Err(err), logger.String("backend", cfg.Storage.Backend))
		}
		os.Exit(1)
	}
	defer store.Close()

	tg, err := notifier.NewTelegram(cfg.Telegram)
	if err != nil {
		logger.Error("Telegram disabled", logger.Err(err))
		tg = notifier.NewTelegramWithSender(nil, nil)
	}

	var q *queue.NATS
	var out job.Notifier = tg
	if *serve && cfg.NATS.Enabled {
		q, err = queue.New(cfg.NATS)
		if err != nil {
			logger.Error("Failed to connect to NATS, sending directly", logger.Err(err))
		} else {
			defer q.Close()
			out = notifier.NewQueued(q, tg.Chats())
			logger.Info("Connected to NATS", logger.String("url", cfg.NATS.URL))
		}
	}

	runner := newRunner(ctx, cfg, store, out)

	if !*serve {
		if err := runner.Run(ctx, flag.Arg(0)); err != nil {
			logger.Error("Nothing to run", logger.Err(err), logger.String("category", flag.Arg(0)))
		}
		return
	}

	if err := runServe(ctx, cfg, runner, tg, q); err != nil {
		logger.Error("Daemon failed", logger.Err(err))
		os.Exit(1)
	}
}

func newRunner(ctx context.Context, cfg *config.Config, store storage.Store, out job.Notifier) *job.Runner {
	cat, err := catalog.LoadFile(cfg.App.CatalogPath)
	if err != nil {
		logger.Error("Failed to load catalog, using built-in messages", logger.Err(err))
		cat = catalog.Default()
	}
	if empty := cat.EmptyPools(); len(empty) > 0 {
		logger.Warn("Some categories have no messages", logger.Any("categories", empty))
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logger.Warn("Unknown timezone, using local time", logger.String("timezone", cfg.Schedule.Timezone))
		loc = time.Local
	}

	tr := translator.New(cfg.Captioner, cat.Translations)
	capt := captioner.New(
		captioner.NewProviders(ctx, cfg.Captioner),
		tr,
		cat.DefaultCaption,
		captioner.WithDownloadTimeout(cfg.Captioner.DownloadTimeout),
	)

	return job.New(job.Deps{
		Store:          store,
		Poller:         wall.NewPoller(wall.New(cfg.VK), store, wall.WithWatermarkLocation(loc)),
		Captioner:      capt,
		Classifier:     classifier.New(cat),
		Selector:       compliment.New(cat, store),
		Notifier:       out,
		NoPhotoMessage: cat.NoPhotoMessage,
	},
		job.WithWeeklyChance(cfg.Schedule.EquipmentStudioChance),
		job.WithLocation(loc),
	)
}

func runServe(ctx context.Context, cfg *config.Config, runner *job.Runner, tg *notifier.Telegram, q *queue.NATS) error {
	sched, err := scheduler.New(cfg.Schedule, runner)
	if err != nil {
		return fmt.Errorf("failed to build schedule: %w", err)
	}
	sched.Start()
	logger.Info("Scheduler started")

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(cfg.Health, runner)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("Admin server error", logger.Err(err))
		}
	}()

	if q != nil {
		go func() {
			logger.Info("Starting notification relay...")
			if err := notifier.Relay(ctx, q, tg); err != nil {
				logger.Error("Notification relay error", logger.Err(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down admin server", logger.Err(err))
	}

	logger.Info("Bot stopped gracefully")
	return nil
}
