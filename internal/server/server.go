package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/internal/job"
	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Runner interface {
	RunPoll(ctx context.Context)
	RunCategory(ctx context.Context, category models.Category)
	Status() job.Status
}

// Server exposes a health check and manual job triggers in daemon mode.
type Server struct {
	runner  Runner
	started time.Time
	http    *http.Server
	// background starts triggered runs; tests replace it to run inline.
	background func(func())
}

func New(cfg config.HealthConfig, runner Runner) *Server {
	s := &Server{
		runner:     runner,
		started:    time.Now(),
		background: func(fn func()) { go fn() },
	}

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Router(cfg.Endpoint),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Router(healthPath string) *gin.Engine {
	if healthPath == "" {
		healthPath = "/healthz"
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET(healthPath, s.health)
	r.POST("/run", s.runPoll)
	r.POST("/run/:category", s.runCategory)

	return r
}

func (s *Server) Start() error {
	logger.Info("Admin server listening", logger.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"last_run": s.runner.Status(),
	})
}

func (s *Server) runPoll(c *gin.Context) {
	s.background(func() { s.runner.RunPoll(context.Background()) })
	c.JSON(http.StatusAccepted, gin.H{"mode": "poll"})
}

func (s *Server) runCategory(c *gin.Context) {
	category, err := models.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.background(func() { s.runner.RunCategory(context.Background(), category) })
	c.JSON(http.StatusAccepted, gin.H{"mode": string(category)})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Admin request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("took", time.Since(start)),
		)
	}
}
