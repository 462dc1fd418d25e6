package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"vk-compliment-bot/internal/config"
)

type fakeTelegramAPI struct {
	mu       sync.Mutex
	chats    []string
	texts    []string
	failChat string
}

func (f *fakeTelegramAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Errorf("unexpected method %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.URL.Path, "/bottest-token/") {
			t.Errorf("token missing from path %s", r.URL.Path)
		}

		var params map[string]any
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		chat := fmt.Sprint(params["chat_id"])

		f.mu.Lock()
		f.chats = append(f.chats, chat)
		f.texts = append(f.texts, fmt.Sprint(params["text"]))
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if chat == f.failChat {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"}`))
			return
		}
		fmt.Fprintf(w, `{"ok": true, "result": {"message_id": 1, "date": 0, "chat": {"id": %s, "type": "private"}, "text": "ok"}}`, chat)
	}
}

func newTestTelegram(t *testing.T, api *fakeTelegramAPI) *Telegram {
	t.Helper()

	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	tg, err := NewTelegram(config.TelegramConfig{
		Token:           "test-token",
		TrackingChatID:  "111",
		RecipientChatID: "222",
		APIURL:          server.URL,
		Timeout:         5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewTelegram() error = %v", err)
	}
	return tg
}

func TestNotifySendsToBothChats(t *testing.T) {
	api := &fakeTelegramAPI{}
	tg := newTestTelegram(t, api)

	if err := tg.Notify(context.Background(), "Шикарный эскиз!"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if strings.Join(api.chats, ",") != "111,222" {
		t.Errorf("chats = %v, want [111 222]", api.chats)
	}
	for _, text := range api.texts {
		if text != "Шикарный эскиз!" {
			t.Errorf("text = %q", text)
		}
	}
}

func TestNotifyContinuesAfterFailure(t *testing.T) {
	api := &fakeTelegramAPI{failChat: "111"}
	tg := newTestTelegram(t, api)

	err := tg.Notify(context.Background(), "hello")
	if err == nil {
		t.Fatal("Expected error for failed chat")
	}
	if len(api.chats) != 2 {
		t.Errorf("chats = %v, second chat should still be tried", api.chats)
	}
}

func TestNotifyNotConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelegramConfig
	}{
		{name: "no token", cfg: config.TelegramConfig{TrackingChatID: "1", RecipientChatID: "2"}},
		{name: "no chats", cfg: config.TelegramConfig{Token: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg, err := NewTelegram(tt.cfg)
			if err != nil {
				t.Fatalf("NewTelegram() error = %v", err)
			}
			if tg.Configured() {
				t.Error("Configured() = true")
			}
			if err := tg.Notify(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
				t.Errorf("Notify() error = %v, want ErrNotConfigured", err)
			}
		})
	}
}

func TestNewTelegramInvalidChatID(t *testing.T) {
	_, err := NewTelegram(config.TelegramConfig{Token: "t", TrackingChatID: "@channel"})
	if !errors.Is(err, config.ErrInvalidChatID) {
		t.Errorf("error = %v, want ErrInvalidChatID", err)
	}
}

func TestSendToCanceledContext(t *testing.T) {
	api := &fakeTelegramAPI{}
	tg := newTestTelegram(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := tg.SendTo(ctx, 111, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("SendTo() error = %v, want context.Canceled", err)
	}
	if len(api.chats) != 0 {
		t.Error("nothing should be sent after cancellation")
	}
}
