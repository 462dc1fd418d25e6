package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/pkg/logger"
)

const (
	sourceLang = "en"
	targetLang = "ru"
)

var (
	ErrEmptyTranslation = errors.New("empty translation")
	ErrUnexpectedStatus = errors.New("unexpected status from translation service")
)

// Backend is one remote translation service.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text string) (string, error)
}

// Translator tries each backend in order and falls back to word-by-word
// dictionary substitution.
type Translator struct {
	backends   []Backend
	dictionary map[string]string
}

func New(cfg config.CaptionerConfig, dictionary map[string]string, opts ...Option) *Translator {
	client := &http.Client{Timeout: cfg.TranslateTimeout}

	t := &Translator{
		backends: []Backend{
			NewGoogle(cfg.GoogleURL, client),
			NewLibre(cfg.LibreURL, client),
		},
		dictionary: dictionary,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

type Option func(*Translator)

func WithBackends(backends ...Backend) Option {
	return func(t *Translator) {
		t.backends = backends
	}
}

func (t *Translator) Translate(ctx context.Context, text string) string {
	for _, b := range t.backends {
		translated, err := b.Translate(ctx, text)
		if err != nil {
			logger.Warn("Translation backend failed", logger.String("backend", b.Name()), logger.Err(err))
			continue
		}
		logger.Debug("Caption translated", logger.String("backend", b.Name()), logger.String("text", translated))
		return translated
	}

	logger.Info("Translating with dictionary")
	return t.lookup(text)
}

// lookup replaces known words and keeps the rest as is.
func (t *Translator) lookup(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if ru, ok := t.dictionary[strings.ToLower(w)]; ok {
			words[i] = ru
		}
	}
	return strings.Join(words, " ")
}

// Google calls the public gtx endpoint of Google Translate.
type Google struct {
	url    string
	client *http.Client
}

func NewGoogle(endpoint string, client *http.Client) *Google {
	return &Google{url: endpoint, client: client}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Translate(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sourceLang)
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	body, err := do(g.client, req)
	if err != nil {
		return "", err
	}

	// [[["перевод","translation",...], ...], null, "en"]
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope) == 0 {
		return "", fmt.Errorf("failed to decode google response: %v", err)
	}
	var segments [][]any
	if err := json.Unmarshal(envelope[0], &segments); err != nil {
		return "", fmt.Errorf("failed to decode google segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}

	if sb.Len() == 0 {
		return "", ErrEmptyTranslation
	}
	return sb.String(), nil
}

// Libre calls a LibreTranslate instance.
type Libre struct {
	url    string
	client *http.Client
}

func NewLibre(endpoint string, client *http.Client) *Libre {
	return &Libre{url: endpoint, client: client}
}

func (l *Libre) Name() string { return "libretranslate" }

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (l *Libre) Translate(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(libreRequest{
		Q:      text,
		Source: sourceLang,
		Target: targetLang,
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := do(l.client, req)
	if err != nil {
		return "", err
	}

	var resp libreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode libretranslate response: %w", err)
	}
	if resp.TranslatedText == "" {
		return "", ErrEmptyTranslation
	}
	return resp.TranslatedText, nil
}

func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
