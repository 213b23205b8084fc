package watcher

import (
	"context"
	"sync"
	"time"

	"hwbot/internal/practicum"
	logx "hwbot/pkg/logx"
)

// Fetcher is the API client port.
type Fetcher interface {
	FetchHomeworks(ctx context.Context, from int64) (any, error)
}

// Notifier is the delivery port.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Snapshot is a point-in-time view of the loop, used by the heartbeat.
type Snapshot struct {
	Cycles        uint64
	Errors        uint64
	Watermark     int64
	LastVerdict   string
	LastVerdictAt time.Time
}

// Service owns the loop's only mutable state: the watermark and the last
// error text sent. Both are confined to Run's goroutine; the snapshot copy
// is the only thing shared out.
type Service struct {
	fetch  Fetcher
	notify Notifier
	log    logx.Logger

	mu       sync.Mutex
	interval time.Duration
	stats    Snapshot

	// test seams
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) bool
}

func New(fetch Fetcher, notify Notifier, interval time.Duration, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		fetch:    fetch,
		notify:   notify,
		log:      log,
		interval: interval,
		now:      time.Now,
		wait:     sleep,
	}
}

// SetInterval changes the per-cycle wait; it takes effect on the next wait.
func (s *Service) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

func (s *Service) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Run executes cycles until ctx is cancelled. It always returns nil: the
// loop has no terminal failure mode beyond shutdown.
func (s *Service) Run(ctx context.Context) error {
	watermark := s.now().Unix()
	lastErrText := ""

	s.setWatermark(watermark)
	s.log.Info("watch loop started",
		logx.Int64("watermark", watermark),
		logx.Duration("interval", s.Interval()))

	for {
		next, err := s.cycle(ctx, watermark)
		if next > watermark {
			// The watermark never decreases.
			watermark = next
			s.setWatermark(watermark)
		}

		switch {
		case ctx.Err() != nil:
			// Shutdown in flight; the aborted cycle is not a reportable error.
			s.log.Info("watch loop stopped")
			return nil
		case err == nil:
			lastErrText = ""
		default:
			s.bumpErrors()
			s.log.Error("cycle failed", logx.Err(err), logx.Int64("watermark", watermark))
			lastErrText = s.relayError(ctx, err.Error(), lastErrText)
		}

		if !s.wait(ctx, s.Interval()) {
			s.log.Info("watch loop stopped")
			return nil
		}
	}
}

// cycle runs steps 1-4 once and returns the watermark to use next.
// The watermark advances on any successful fetch, even when the payload
// later turns out to be empty or malformed past the current_date field.
func (s *Service) cycle(ctx context.Context, from int64) (int64, error) {
	s.bumpCycles()

	payload, err := s.fetch.FetchHomeworks(ctx, from)
	if err != nil {
		return from, err
	}

	next := from
	if cd, ok := practicum.CurrentDate(payload); ok && cd > next {
		next = cd
	}

	list, err := practicum.ExtractHomeworks(payload)
	if err != nil {
		return next, err
	}

	if len(list) == 0 {
		s.log.Debug("no new homework statuses", logx.Int64("from_date", from))
		return next, nil
	}

	// The API returns the most recent submission first.
	text, err := practicum.DescribeStatus(list[0])
	if err != nil {
		return next, err
	}

	s.log.Info("homework status changed", logx.String("verdict", text))
	if nerr := s.notify.Notify(ctx, text); nerr != nil {
		// Delivery failure is logged only; escalating it would feed the
		// error-relay path, which uses the same broken channel.
		s.log.Warn("verdict not delivered", logx.Err(nerr))
		return next, nil
	}
	s.setLastVerdict(text)
	return next, nil
}

// relayError notifies the chat about a cycle failure unless the identical
// text was already sent. It returns the new "last sent" text.
func (s *Service) relayError(ctx context.Context, text, lastSent string) string {
	if text == lastSent {
		s.log.Debug("duplicate error notification suppressed")
		return lastSent
	}
	if err := s.notify.Notify(ctx, text); err != nil {
		s.log.Warn("error notification not delivered", logx.Err(err))
		// Not remembered: retry the send next cycle.
		return lastSent
	}
	return text
}

func (s *Service) setWatermark(v int64) {
	s.mu.Lock()
	s.stats.Watermark = v
	s.mu.Unlock()
}

func (s *Service) setLastVerdict(text string) {
	s.mu.Lock()
	s.stats.LastVerdict = text
	s.stats.LastVerdictAt = s.now()
	s.mu.Unlock()
}

func (s *Service) bumpCycles() {
	s.mu.Lock()
	s.stats.Cycles++
	s.mu.Unlock()
}

func (s *Service) bumpErrors() {
	s.mu.Lock()
	s.stats.Errors++
	s.mu.Unlock()
}

// sleep waits d or until ctx ends, reporting whether the loop should go on.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
