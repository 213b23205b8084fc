// Package heartbeat sends an optional cron-scheduled liveness message so a
// quiet chat can be told apart from a dead process.
package heartbeat

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"hwbot/internal/watcher"
	logx "hwbot/pkg/logx"
)

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Service struct {
	spec   string
	notify Notifier
	snap   func() watcher.Snapshot
	log    logx.Logger

	cron *cron.Cron
}

// New validates the schedule eagerly so a bad expression fails at startup.
// An empty schedule yields a disabled service (Start/Stop are no-ops).
func New(spec string, notify Notifier, snap func() watcher.Snapshot, log logx.Logger) (*Service, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	if spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("heartbeat: invalid schedule %q: %w", spec, err)
		}
	}
	return &Service{spec: spec, notify: notify, snap: snap, log: log}, nil
}

func (s *Service) Enabled() bool { return s.spec != "" }

func (s *Service) Start() {
	if !s.Enabled() {
		return
	}
	s.cron = cron.New()
	// Spec was validated in New; AddFunc cannot fail here.
	_, _ = s.cron.AddFunc(s.spec, s.emit)
	s.cron.Start()
	s.log.Info("heartbeat scheduled", logx.String("schedule", s.spec))
}

func (s *Service) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (s *Service) emit() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text := Format(s.snap())
	if err := s.notify.Notify(ctx, text); err != nil {
		s.log.Warn("heartbeat not delivered", logx.Err(err))
		return
	}
	s.log.Debug("heartbeat sent")
}

// Format renders the loop snapshot as a short operator-facing summary.
func Format(st watcher.Snapshot) string {
	text := fmt.Sprintf("Still watching. Cycles: %d, errors: %d, watermark: %d.",
		st.Cycles, st.Errors, st.Watermark)
	if st.LastVerdict != "" {
		text += fmt.Sprintf("\nLast relayed at %s: %s",
			st.LastVerdictAt.Format(time.RFC3339), st.LastVerdict)
	}
	return text
}
