package captioner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/pkg/logger"
)

const maxImageSize = 20 << 20

var (
	ErrNotConfigured = errors.New("provider is not configured")
	ErrEmptyCaption  = errors.New("provider returned an empty caption")
)

// StatusError is returned when a provider answers with a non-200 status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Provider turns raw image bytes into an English description.
type Provider interface {
	Name() string
	Caption(ctx context.Context, image []byte) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Captioner downloads an image, asks each provider in turn for a caption and
// translates the first one it gets. Every failure ends in the default caption.
type Captioner struct {
	client          *http.Client
	providers       []Provider
	translator      Translator
	defaultCaption  string
	downloadTimeout time.Duration
}

func New(providers []Provider, translator Translator, defaultCaption string, opts ...Option) *Captioner {
	c := &Captioner{
		client:          &http.Client{},
		providers:       providers,
		translator:      translator,
		defaultCaption:  defaultCaption,
		downloadTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type Option func(*Captioner)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Captioner) {
		c.client = client
	}
}

func WithDownloadTimeout(d time.Duration) Option {
	return func(c *Captioner) {
		if d > 0 {
			c.downloadTimeout = d
		}
	}
}

// NewProviders builds the provider chain from config. The LLM providers are
// only added when their API keys are set.
func NewProviders(ctx context.Context, cfg config.CaptionerConfig) []Provider {
	providers := []Provider{
		NewHuggingFace(cfg.HFURL, cfg.HFToken),
		NewAlternative(cfg.AlternativeURL),
	}

	if cfg.OpenAIKey != "" {
		providers = append(providers, NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL))
	}

	if cfg.GeminiKey != "" {
		gemini, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			logger.Warn("Gemini captioner disabled", logger.Err(err))
		} else {
			providers = append(providers, gemini)
		}
	}

	return providers
}

func (c *Captioner) Caption(ctx context.Context, imageURL string) string {
	image, err := c.download(ctx, imageURL)
	if err != nil {
		logger.Error("Failed to download image", logger.String("url", imageURL), logger.Err(err))
		return c.defaultCaption
	}

	caption := c.describe(ctx, image)
	if caption == "" {
		logger.Warn("No provider produced a caption, using default")
		return c.defaultCaption
	}

	translated := strings.TrimSpace(c.translator.Translate(ctx, caption))
	if translated == "" {
		return c.defaultCaption
	}

	logger.Info("Image captioned", logger.String("caption", caption), logger.String("translated", translated))
	return translated
}

func (c *Captioner) describe(ctx context.Context, image []byte) string {
	for _, p := range c.providers {
		caption, err := p.Caption(ctx, image)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				logger.Debug("Skipping captioner", logger.String("provider", p.Name()))
			} else {
				logger.Warn("Captioner failed", logger.String("provider", p.Name()), logger.Err(err))
			}
			continue
		}
		if caption = strings.TrimSpace(caption); caption != "" {
			logger.Debug("Caption received", logger.String("provider", p.Name()), logger.String("caption", caption))
			return caption
		}
	}
	return ""
}

func (c *Captioner) download(ctx context.Context, imageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: "image host", StatusCode: resp.StatusCode}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
}

func readBody(provider string, resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: provider, StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
