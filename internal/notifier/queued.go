package notifier

import (
	"context"
	"errors"

	"vk-compliment-bot/internal/queue"
	"vk-compliment-bot/pkg/logger"
)

type Publisher interface {
	PublishNotification(ctx context.Context, msg *queue.NotificationMessage) error
}

type Consumer interface {
	ConsumeNotifications(ctx context.Context, handler func(context.Context, *queue.NotificationMessage) error) error
}

// Queued puts one outbox message per chat on NATS instead of calling Telegram
// directly. Relay delivers them.
type Queued struct {
	publisher Publisher
	chats     []int64
}

func NewQueued(publisher Publisher, chats []int64) *Queued {
	return &Queued{publisher: publisher, chats: chats}
}

func (q *Queued) Notify(ctx context.Context, text string) error {
	if len(q.chats) == 0 {
		logger.Warn("No chats configured, message dropped", logger.String("text", text))
		return ErrNotConfigured
	}

	var errs []error
	for _, chatID := range q.chats {
		msg := &queue.NotificationMessage{
			ChatID: chatID,
			Text:   text,
			RunID:  RunIDFrom(ctx),
		}
		if err := q.publisher.PublishNotification(ctx, msg); err != nil {
			logger.Error("Failed to queue notification", logger.Int64("chat_id", chatID), logger.Err(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Relay drains the outbox into Telegram until ctx is done.
func Relay(ctx context.Context, consumer Consumer, tg *Telegram) error {
	err := consumer.ConsumeNotifications(ctx, func(ctx context.Context, msg *queue.NotificationMessage) error {
		return tg.SendTo(ctx, msg.ChatID, msg.Text)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type runIDKey struct{}

// WithRunID tags ctx with the id of the job run that produced a notification.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
