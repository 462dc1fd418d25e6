package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/pkg/logger"

	"github.com/nats-io/nats.go"
)

const (
	NotificationSubject = "notifications.send"
	ConsumerGroup       = "vk-compliment-bot"
)

type NATS struct {
	conn      *nats.Conn
	jetstream nats.JetStreamContext
	cfg       config.NATSConfig
}

func New(cfg config.NATSConfig) (*NATS, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name(ConsumerGroup))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to get JetStream: %w", err)
	}

	n := &NATS{
		conn:      conn,
		jetstream: js,
		cfg:       cfg,
	}

	if err := n.ensureStream(); err != nil {
		conn.Close()
		return nil, err
	}

	return n, nil
}

func (n *NATS) ensureStream() error {
	_, err := n.jetstream.StreamInfo(n.cfg.StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream %s: %w", n.cfg.StreamName, err)
	}

	_, err = n.jetstream.AddStream(&nats.StreamConfig{
		Name:     n.cfg.StreamName,
		Subjects: []string{NotificationSubject},
		Storage:  nats.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", n.cfg.StreamName, err)
	}

	logger.Info("NATS stream created", logger.String("stream", n.cfg.StreamName))
	return nil
}

func (n *NATS) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

// NotificationMessage is one outgoing Telegram message waiting for delivery.
type NotificationMessage struct {
	ChatID   int64  `json:"chat_id"`
	Text     string `json:"text"`
	RunID    string `json:"run_id,omitempty"`
	Category string `json:"category,omitempty"`
}

func (n *NATS) PublishNotification(ctx context.Context, msg *NotificationMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	_, err = n.jetstream.Publish(NotificationSubject, data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	logger.Debug("Notification published to queue",
		logger.Int64("chat_id", msg.ChatID),
		logger.String("run_id", msg.RunID),
	)

	return nil
}

// ConsumeNotifications hands every queued notification to handler until ctx
// is done. Failed deliveries are terminated, not redelivered.
func (n *NATS) ConsumeNotifications(ctx context.Context, handler func(context.Context, *NotificationMessage) error) error {
	sub, err := n.jetstream.PullSubscribe(
		NotificationSubject,
		ConsumerGroup,
		nats.BindStream(n.cfg.StreamName),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to notifications: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msgs, err := sub.Fetch(10, nats.MaxWait(500*time.Millisecond))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				return fmt.Errorf("failed to fetch messages: %w", err)
			}

			for _, msg := range msgs {
				handleMessage(ctx, msg.Data, handler, msg.Ack, msg.Term)
			}
		}
	}
}

func handleMessage(
	ctx context.Context,
	data []byte,
	handler func(context.Context, *NotificationMessage) error,
	ack func(...nats.AckOpt) error,
	term func(...nats.AckOpt) error,
) {
	var notification NotificationMessage
	if err := json.Unmarshal(data, &notification); err != nil {
		logger.Error("Failed to unmarshal notification", logger.Err(err))
		term()
		return
	}

	if err := handler(ctx, &notification); err != nil {
		logger.Error("Failed to deliver notification",
			logger.Err(err),
			logger.Int64("chat_id", notification.ChatID),
			logger.String("run_id", notification.RunID),
		)
		term()
		return
	}

	ack()
}
