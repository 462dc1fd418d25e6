package captioner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"
)

// HuggingFace posts the raw image to an inference endpoint of an image-to-text model.
type HuggingFace struct {
	url    string
	token  string
	client *http.Client
}

func NewHuggingFace(endpoint, token string) *HuggingFace {
	return &HuggingFace{
		url:    endpoint,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

type hfResult struct {
	GeneratedText string `json:"generated_text"`
}

func (h *HuggingFace) Caption(ctx context.Context, image []byte) (string, error) {
	if h.token == "" {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := readBody(h.Name(), resp)
	if err != nil {
		return "", err
	}

	var results []hfResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", fmt.Errorf("failed to decode huggingface response: %w", err)
	}
	if len(results) == 0 || results[0].GeneratedText == "" {
		return "", ErrEmptyCaption
	}

	return results[0].GeneratedText, nil
}

// Alternative uploads the image as multipart form data.
type Alternative struct {
	url    string
	client *http.Client
}

func NewAlternative(endpoint string) *Alternative {
	return &Alternative{
		url:    endpoint,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *Alternative) Name() string { return "alternative" }

type alternativeResult struct {
	Caption *string `json:"caption"`
}

func (a *Alternative) Caption(ctx context.Context, image []byte) (string, error) {
	if a.url == "" {
		return "", ErrNotConfigured
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "image.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := readBody(a.Name(), resp)
	if err != nil {
		return "", err
	}

	var result alternativeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode alternative response: %w", err)
	}
	if result.Caption == nil {
		return "tattoo design", nil
	}

	return *result.Caption, nil
}
