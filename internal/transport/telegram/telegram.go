package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

// Adapter is a send-only Telegram client. This bot never consumes updates,
// so no poller is attached and Start/long-poll machinery is not needed.
type Adapter struct {
	bot *tele.Bot
	log logx.Logger
}

func New(token string, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	// NewBot performs a getMe call, so a bad token fails here, at startup,
	// instead of on the first notification.
	b, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, err
	}
	return &Adapter{bot: b, log: log}, nil
}

// Username returns the bot's own username (for startup logging).
func (a *Adapter) Username() string {
	if a.bot == nil || a.bot.Me == nil {
		return ""
	}
	return a.bot.Me.Username
}

func (a *Adapter) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) error {
	if opt == nil {
		opt = &transport.SendOptions{}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	chat := &tele.Chat{ID: to.ChatID}
	sendOpt := &tele.SendOptions{
		ParseMode:             opt.ParseMode,
		DisableWebPagePreview: opt.DisablePreview,
	}

	start := time.Now()
	_, err := a.bot.Send(chat, text, sendOpt)
	if err != nil {
		return err
	}
	a.log.Debug("telegram message sent",
		logx.Int64("chat_id", to.ChatID),
		logx.Duration("took", time.Since(start)))
	return nil
}
