package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestNotificationMessageJSON(t *testing.T) {
	msg := NotificationMessage{
		ChatID:   -100123456789,
		Text:     "Какая красота!",
		RunID:    "run-1",
		Category: "tattoo",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal NotificationMessage: %v", err)
	}

	var parsed NotificationMessage
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal NotificationMessage: %v", err)
	}

	if parsed != msg {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
}

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		handlerErr error
		wantCalled bool
		wantAck    bool
		wantTerm   bool
	}{
		{
			name:       "delivered",
			data:       `{"chat_id": 1, "text": "hi"}`,
			wantCalled: true,
			wantAck:    true,
		},
		{
			name:       "delivery fails",
			data:       `{"chat_id": 1, "text": "hi"}`,
			handlerErr: errors.New("chat not found"),
			wantCalled: true,
			wantTerm:   true,
		},
		{
			name:     "malformed",
			data:     `{"chat_id": "x"`,
			wantTerm: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called, acked, termed bool
			handler := func(ctx context.Context, msg *NotificationMessage) error {
				called = true
				if msg.ChatID != 1 || msg.Text != "hi" {
					t.Errorf("msg = %+v", msg)
				}
				return tt.handlerErr
			}
			ack := func(...nats.AckOpt) error { acked = true; return nil }
			term := func(...nats.AckOpt) error { termed = true; return nil }

			handleMessage(context.Background(), []byte(tt.data), handler, ack, term)

			if called != tt.wantCalled || acked != tt.wantAck || termed != tt.wantTerm {
				t.Errorf("called=%v acked=%v termed=%v", called, acked, termed)
			}
		})
	}
}

func TestNATSCanManageStreams(t *testing.T) {
	var n NATS

	// ensureStream looks up and creates streams through the same context used
	// for publishing and pulling.
	var manager nats.JetStreamManager = n.jetstream
	var publisher nats.JetStream = n.jetstream

	if manager != nil || publisher != nil {
		t.Error("zero NATS should hold no JetStream context")
	}
}
