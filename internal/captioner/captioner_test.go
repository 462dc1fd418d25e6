package captioner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

const defaultCaption = "татуировка, эскиз"

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

type fakeTranslator struct {
	calls []string
	out   string
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) string {
	f.calls = append(f.calls, text)
	if f.out != "" {
		return f.out
	}
	return "ru:" + text
}

type fakeProvider struct {
	name    string
	caption string
	err     error
	calls   int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Caption(ctx context.Context, image []byte) (string, error) {
	f.calls++
	return f.caption, f.err
}

func imageServer(t *testing.T, status int) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(pngHeader)
	}))
	t.Cleanup(server.Close)
	return server.URL + "/photo.png"
}

func TestCaptionChain(t *testing.T) {
	tests := []struct {
		name        string
		imageStatus int
		providers   []*fakeProvider
		want        string
		wantCalls   []int
	}{
		{
			name:        "first provider wins",
			imageStatus: http.StatusOK,
			providers: []*fakeProvider{
				{name: "a", caption: "a tattoo"},
				{name: "b", caption: "a sketch"},
			},
			want:      "ru:a tattoo",
			wantCalls: []int{1, 0},
		},
		{
			name:        "falls through errors and empty captions",
			imageStatus: http.StatusOK,
			providers: []*fakeProvider{
				{name: "a", err: ErrNotConfigured},
				{name: "b", err: &StatusError{Provider: "b", StatusCode: 503}},
				{name: "c", caption: "   "},
				{name: "d", caption: "tattoo machine"},
			},
			want:      "ru:tattoo machine",
			wantCalls: []int{1, 1, 1, 1},
		},
		{
			name:        "all providers fail",
			imageStatus: http.StatusOK,
			providers: []*fakeProvider{
				{name: "a", err: errors.New("timeout")},
			},
			want:      defaultCaption,
			wantCalls: []int{1},
		},
		{
			name:        "download fails",
			imageStatus: http.StatusNotFound,
			providers: []*fakeProvider{
				{name: "a", caption: "a tattoo"},
			},
			want:      defaultCaption,
			wantCalls: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers := make([]Provider, len(tt.providers))
			for i, p := range tt.providers {
				providers[i] = p
			}

			c := New(providers, &fakeTranslator{}, defaultCaption)
			got := c.Caption(context.Background(), imageServer(t, tt.imageStatus))

			if got != tt.want {
				t.Errorf("Caption() = %q, want %q", got, tt.want)
			}
			for i, p := range tt.providers {
				if p.calls != tt.wantCalls[i] {
					t.Errorf("provider %s calls = %d, want %d", p.name, p.calls, tt.wantCalls[i])
				}
			}
		})
	}
}

func TestCaptionEmptyTranslation(t *testing.T) {
	c := New([]Provider{&fakeProvider{name: "a", caption: "ink"}}, &fakeTranslator{out: " "}, defaultCaption)

	if got := c.Caption(context.Background(), imageServer(t, http.StatusOK)); got != defaultCaption {
		t.Errorf("Caption() = %q, want default", got)
	}
}

func TestHuggingFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer hf-token" {
			t.Errorf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != string(pngHeader) {
			t.Errorf("body = %q, want raw image bytes", body)
		}
		w.Write([]byte(`[{"generated_text": "a tattoo of a rose"}]`))
	}))
	defer server.Close()

	got, err := NewHuggingFace(server.URL, "hf-token").Caption(context.Background(), pngHeader)
	if err != nil {
		t.Fatalf("Caption() error = %v", err)
	}
	if got != "a tattoo of a rose" {
		t.Errorf("Caption() = %q", got)
	}
}

func TestHuggingFaceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		token  string
		check  func(error) bool
	}{
		{
			name:  "no token",
			token: "",
			check: func(err error) bool { return errors.Is(err, ErrNotConfigured) },
		},
		{
			name:   "model loading",
			status: http.StatusServiceUnavailable,
			body:   `{"error": "Model is currently loading"}`,
			token:  "t",
			check: func(err error) bool {
				var statusErr *StatusError
				return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusServiceUnavailable
			},
		},
		{
			name:   "empty list",
			status: http.StatusOK,
			body:   `[]`,
			token:  "t",
			check:  func(err error) bool { return errors.Is(err, ErrEmptyCaption) },
		},
		{
			name:   "unexpected shape",
			status: http.StatusOK,
			body:   `{"generated_text": "x"}`,
			token:  "t",
			check:  func(err error) bool { return err != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHuggingFace(server.URL, tt.token).Caption(context.Background(), pngHeader)
			if !tt.check(err) {
				t.Errorf("Caption() error = %v", err)
			}
		})
	}
}

func TestAlternative(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "caption field", body: `{"caption": "a sketch of a wolf"}`, want: "a sketch of a wolf"},
		{name: "missing caption", body: `{}`, want: "tattoo design"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				file, header, err := r.FormFile("image")
				if err != nil {
					t.Errorf("FormFile() error = %v", err)
					return
				}
				defer file.Close()
				if header.Filename != "image.jpg" {
					t.Errorf("filename = %q", header.Filename)
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			got, err := NewAlternative(server.URL).Caption(context.Background(), pngHeader)
			if err != nil {
				t.Fatalf("Caption() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Caption() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req["model"] != "gpt-4o-mini" {
			t.Errorf("model = %v", req["model"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": " A fresh tattoo on a forearm. "}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	got, err := NewOpenAI("sk-test", "gpt-4o-mini", server.URL+"/v1").Caption(context.Background(), pngHeader)
	if err != nil {
		t.Fatalf("Caption() error = %v", err)
	}
	if got != "A fresh tattoo on a forearm." {
		t.Errorf("Caption() = %q", got)
	}
}

func TestFirstText(t *testing.T) {
	tests := []struct {
		name    string
		result  *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{name: "nil", result: nil, wantErr: true},
		{name: "no candidates", result: &genai.GenerateContentResponse{}, wantErr: true},
		{
			name: "no parts",
			result: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{}},
			}},
			wantErr: true,
		},
		{
			name: "text",
			result: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: genai.NewContentFromText(" tattoo needles and ink ", genai.RoleModel)},
			}},
			want: "tattoo needles and ink",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := firstText(tt.result)
			if (err != nil) != tt.wantErr {
				t.Fatalf("firstText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("firstText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataURL(t *testing.T) {
	got := dataURL(pngHeader)
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("dataURL() = %q", got)
	}
}
