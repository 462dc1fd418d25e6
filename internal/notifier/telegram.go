package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/pkg/logger"

	"gopkg.in/telebot.v4"
)

var ErrNotConfigured = errors.New("telegram token or chat ids are not configured")

// Sender is the part of telebot.Bot used for delivery.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Telegram sends every notification to all configured chats.
type Telegram struct {
	sender Sender
	chats  []int64
}

// NewTelegram builds a sender from config. A missing token or missing chat ids
// give a Telegram whose Notify returns ErrNotConfigured.
func NewTelegram(cfg config.TelegramConfig) (*Telegram, error) {
	chats, err := cfg.ChatIDs()
	if err != nil {
		return nil, err
	}

	if cfg.Token == "" || len(chats) == 0 {
		return &Telegram{}, nil
	}

	tbot, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.Token,
		URL:     cfg.APIURL,
		Offline: true,
		Client:  &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return NewTelegramWithSender(tbot, chats), nil
}

func NewTelegramWithSender(sender Sender, chats []int64) *Telegram {
	return &Telegram{sender: sender, chats: chats}
}

func (t *Telegram) Chats() []int64 {
	return t.chats
}

func (t *Telegram) Configured() bool {
	return t.sender != nil && len(t.chats) > 0
}

// Notify sends text to every chat. A failure on one chat does not stop the
// others; all failures are returned joined.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	if !t.Configured() {
		logger.Warn("Telegram is not configured, message dropped", logger.String("text", text))
		return ErrNotConfigured
	}

	var errs []error
	for _, chatID := range t.chats {
		if err := t.SendTo(ctx, chatID, text); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t *Telegram) SendTo(ctx context.Context, chatID int64, text string) error {
	if t.sender == nil {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.sender.Send(&telebot.Chat{ID: chatID}, text); err != nil {
		logger.Error("Failed to send telegram message", logger.Int64("chat_id", chatID), logger.Err(err))
		return fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}

	logger.Info("Telegram message sent", logger.Int64("chat_id", chatID))
	return nil
}
