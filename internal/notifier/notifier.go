// Package notifier delivers human-readable messages to the configured chat.
//
// It is a thin wrapper around the transport.Sender port: a token bucket so
// bursts of notifications don't trip Telegram's flood control, and a typed
// DeliveryError so callers can tell "the channel is broken" apart from
// domain failures. Delivery failures are never escalated into the poll
// loop's error path — a broken notification channel must not crash the loop
// that would report it.
package notifier

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

// DeliveryError wraps a transport failure while sending a notification.
type DeliveryError struct {
	ChatID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notifier: delivery to chat %d failed: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type Service struct {
	sender transport.Sender
	target transport.ChatTarget
	log    logx.Logger

	mu      sync.Mutex
	limiter *rate.Limiter
}

func New(sender transport.Sender, chatID int64, ratePerSec int, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		sender: sender,
		target: transport.ChatTarget{ChatID: chatID},
		log:    log,
	}
	s.Apply(ratePerSec)
	return s
}

// Apply swaps the send rate cap at runtime (config hot reload).
func (s *Service) Apply(ratePerSec int) {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	s.mu.Lock()
	// Token bucket: burst = rate per sec, so short spikes don't block too hard.
	s.limiter = rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)
	s.mu.Unlock()
}

// Notify sends text to the configured chat, waiting for rate-limit headroom.
func (s *Service) Notify(ctx context.Context, text string) error {
	s.mu.Lock()
	lim := s.limiter
	s.mu.Unlock()

	if err := lim.Wait(ctx); err != nil {
		return &DeliveryError{ChatID: s.target.ChatID, Err: err}
	}

	err := s.sender.SendText(ctx, s.target, text, &transport.SendOptions{DisablePreview: true})
	if err != nil {
		s.log.Error("notification send failed",
			logx.Int64("chat_id", s.target.ChatID),
			logx.Err(err))
		return &DeliveryError{ChatID: s.target.ChatID, Err: err}
	}

	s.log.Debug("notification sent",
		logx.Int64("chat_id", s.target.ChatID),
		logx.Int("len", len(text)))
	return nil
}
