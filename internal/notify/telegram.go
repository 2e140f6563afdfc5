// Package notify delivers scored signals to the operator over Telegram.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StockAuto/internal/model"
)

// sender is the part of *tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends one plain-text message per report to a single chat.
type Telegram struct {
	bot      sender
	chatID   int64
	location *time.Location
	logger   zerolog.Logger
}

// SendTimeout bounds every Bot API call.
const SendTimeout = 10 * time.Second

// NewTelegram connects to the Bot API with token.
func NewTelegram(token string, chatID int64, loc *time.Location) (*Telegram, error) {
	bot, err := newBotAPI(token, tgbotapi.APIEndpoint, SendTimeout)
	if err != nil {
		return nil, err
	}
	return newTelegram(bot, chatID, loc), nil
}

func newBotAPI(token, endpoint string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("initializing Telegram bot: %w", err)
	}
	return bot, nil
}

func newTelegram(bot sender, chatID int64, loc *time.Location) *Telegram {
	return &Telegram{
		bot:      bot,
		chatID:   chatID,
		location: loc,
		logger:   log.With().Str("component", "telegram").Logger(),
	}
}

// Notify sends the full report for an actionable signal.
func (t *Telegram) Notify(ctx context.Context, r model.Report) error {
	return t.send(ctx, r.Ticker, FormatReport(r, t.location))
}

// NotifySkipped sends the short notice for a ticker that lacked data.
func (t *Telegram) NotifySkipped(ctx context.Context, r model.Report) error {
	return t.send(ctx, r.Ticker, FormatSkipped(r, t.location))
}

func (t *Telegram) send(ctx context.Context, ticker, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending Telegram message to chat %d: %w", t.chatID, err)
	}
	t.logger.Debug().Str("symbol", ticker).Msg("Message sent")
	return nil
}
