package wall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/pkg/logger"
)

var (
	ErrNotConfigured    = errors.New("vk token or group id is not configured")
	ErrUnexpectedStatus = errors.New("unexpected status from vk api")
)

// APIError is the error object VK returns instead of a response.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk api error %d: %s", e.Code, e.Message)
}

// DecodeError reports a body that is not a valid wall.get envelope.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode wall response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type wallResponse struct {
	Response *struct {
		Count int           `json:"count"`
		Items []models.Post `json:"items"`
	} `json:"response"`
	Error *APIError `json:"error"`
}

type Client struct {
	cfg    config.VKConfig
	client *http.Client
}

func New(cfg config.VKConfig, opts ...Option) *Client {
	c := &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.cfg.BaseURL = baseURL
	}
}

// FetchPosts returns the newest wall posts in the order the API sends them.
func (c *Client) FetchPosts(ctx context.Context) ([]models.Post, error) {
	if c.cfg.Token == "" || c.cfg.GroupID == "" {
		return nil, ErrNotConfigured
	}

	count := c.cfg.PageSize
	if count <= 0 {
		count = 5
	}

	params := url.Values{}
	params.Set("owner_id", c.cfg.GroupID)
	params.Set("count", strconv.Itoa(count))
	params.Set("access_token", c.cfg.Token)
	params.Set("v", c.cfg.APIVersion)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/wall.get?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	logger.Debug("Requesting wall", logger.String("owner_id", c.cfg.GroupID), logger.Int("count", count))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wall: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read wall response: %w", err)
	}

	var envelope wallResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}
	if envelope.Response == nil {
		return nil, &DecodeError{Err: errors.New("response field is missing")}
	}

	return envelope.Response.Items, nil
}
