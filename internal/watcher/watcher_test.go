package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	logx "hwbot/pkg/logx"
)

type fetchStep struct {
	payload any
	err     error
}

type scriptedFetcher struct {
	steps []fetchStep
	calls []int64
}

func (f *scriptedFetcher) FetchHomeworks(ctx context.Context, from int64) (any, error) {
	f.calls = append(f.calls, from)
	i := len(f.calls) - 1
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	return f.steps[i].payload, f.steps[i].err
}

type recordingNotifier struct {
	texts []string
	err   error
}

func (n *recordingNotifier) Notify(ctx context.Context, text string) error {
	n.texts = append(n.texts, text)
	return n.err
}

// runCycles drives the loop for exactly n cycles by stopping at the n-th
// wait, then reports how many waits happened.
func runCycles(t *testing.T, s *Service, n int) int {
	t.Helper()
	waits := 0
	s.now = func() time.Time { return time.Unix(1000, 0) }
	s.wait = func(ctx context.Context, d time.Duration) bool {
		waits++
		return waits < n
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	return waits
}

func emptyPayload(currentDate int64) map[string]any {
	return map[string]any{
		"homeworks":    []any{},
		"current_date": float64(currentDate),
	}
}

func TestWatermarkAdvancesToCurrentDate(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{steps: []fetchStep{{payload: emptyPayload(1700000000)}}}
	n := &recordingNotifier{}
	s := New(f, n, time.Minute, logx.Nop())

	waits := runCycles(t, s, 2)

	if waits != 2 {
		t.Fatalf("waits = %d, want one per cycle (2)", waits)
	}
	if len(f.calls) != 2 {
		t.Fatalf("fetch calls = %d, want 2", len(f.calls))
	}
	if f.calls[0] != 1000 {
		t.Fatalf("first fetch from = %d, want startup watermark 1000", f.calls[0])
	}
	if f.calls[1] != 1700000000 {
		t.Fatalf("second fetch from = %d, want 1700000000", f.calls[1])
	}
	if got := s.Snapshot().Watermark; got != 1700000000 {
		t.Fatalf("Snapshot().Watermark = %d, want 1700000000", got)
	}
	if len(n.texts) != 0 {
		t.Fatalf("empty homework list should produce no notification, got %q", n.texts)
	}
}

func TestWatermarkKeptWithoutCurrentDate(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{steps: []fetchStep{{payload: map[string]any{"homeworks": []any{}}}}}
	s := New(f, &recordingNotifier{}, time.Minute, logx.Nop())

	runCycles(t, s, 2)

	if f.calls[1] != f.calls[0] {
		t.Fatalf("watermark changed from %d to %d without current_date", f.calls[0], f.calls[1])
	}
}

func TestVerdictNotified(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{steps: []fetchStep{{payload: map[string]any{
		"homeworks": []any{
			map[string]any{"homework_name": "lab1", "status": "approved"},
			map[string]any{"homework_name": "lab0", "status": "rejected"},
		},
		"current_date": float64(1700000000),
	}}}}
	n := &recordingNotifier{}
	s := New(f, n, time.Minute, logx.Nop())

	runCycles(t, s, 1)

	if len(n.texts) != 1 {
		t.Fatalf("notifications = %d, want 1 (first record only)", len(n.texts))
	}
	want := `Changed review status of "lab1": The reviewer liked everything. Hooray!`
	if n.texts[0] != want {
		t.Fatalf("notification = %q, want %q", n.texts[0], want)
	}
	if got := s.Snapshot().LastVerdict; got != want {
		t.Fatalf("Snapshot().LastVerdict = %q, want %q", got, want)
	}
}

func TestErrorNotificationsDeduplicated(t *testing.T) {
	t.Parallel()

	errA := errors.New("boom: connection refused")
	errB := errors.New("boom: status 503")
	f := &scriptedFetcher{steps: []fetchStep{
		{err: errA},
		{err: errA},
		{err: errB},
	}}
	n := &recordingNotifier{}
	s := New(f, n, time.Minute, logx.Nop())

	waits := runCycles(t, s, 3)

	if waits != 3 {
		t.Fatalf("waits = %d, want one per cycle even on errors (3)", waits)
	}
	if len(n.texts) != 2 {
		t.Fatalf("notifications = %q, want exactly [errA errB]", n.texts)
	}
	if n.texts[0] != errA.Error() || n.texts[1] != errB.Error() {
		t.Fatalf("notifications = %q, want [%q %q]", n.texts, errA, errB)
	}
	if got := s.Snapshot().Errors; got != 3 {
		t.Fatalf("Snapshot().Errors = %d, want 3", got)
	}
}

func TestErrorResentAfterSuccessfulCycle(t *testing.T) {
	t.Parallel()

	errA := errors.New("boom")
	f := &scriptedFetcher{steps: []fetchStep{
		{err: errA},
		{payload: emptyPayload(2000)},
		{err: errA},
	}}
	n := &recordingNotifier{}
	s := New(f, n, time.Minute, logx.Nop())

	runCycles(t, s, 3)

	// The clean cycle in between resets the dedup cache.
	if len(n.texts) != 2 {
		t.Fatalf("notifications = %q, want the error sent twice", n.texts)
	}
}

func TestDeliveryFailureIsNotEscalated(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{steps: []fetchStep{{payload: map[string]any{
		"homeworks":    []any{map[string]any{"homework_name": "lab1", "status": "reviewing"}},
		"current_date": float64(3000),
	}}}}
	n := &recordingNotifier{err: errors.New("telegram down")}
	s := New(f, n, time.Minute, logx.Nop())

	waits := runCycles(t, s, 2)

	if waits != 2 {
		t.Fatalf("waits = %d, want the loop to keep going", waits)
	}
	// Two verdict attempts, no error-relay attempts on top of them.
	if len(n.texts) != 2 {
		t.Fatalf("send attempts = %d (%q), want 2", len(n.texts), n.texts)
	}
	if got := s.Snapshot().Errors; got != 0 {
		t.Fatalf("delivery failure counted as cycle error: %d", got)
	}
}

func TestMalformedPayloadStillAdvancesWatermark(t *testing.T) {
	t.Parallel()

	// Fetch succeeded and carried current_date, but homeworks is garbage.
	f := &scriptedFetcher{steps: []fetchStep{{payload: map[string]any{
		"homeworks":    float64(5),
		"current_date": float64(4000),
	}}}}
	n := &recordingNotifier{}
	s := New(f, n, time.Minute, logx.Nop())

	runCycles(t, s, 2)

	if f.calls[1] != 4000 {
		t.Fatalf("second fetch from = %d, want 4000", f.calls[1])
	}
	if len(n.texts) != 1 {
		t.Fatalf("notifications = %q, want the type error relayed once", n.texts)
	}
}

func TestSetInterval(t *testing.T) {
	t.Parallel()

	s := New(&scriptedFetcher{steps: []fetchStep{{payload: emptyPayload(1)}}}, &recordingNotifier{}, time.Minute, logx.Nop())

	s.SetInterval(time.Second)
	if got := s.Interval(); got != time.Second {
		t.Fatalf("Interval = %v, want 1s", got)
	}

	s.SetInterval(0)
	if got := s.Interval(); got != time.Second {
		t.Fatalf("Interval = %v after SetInterval(0), want unchanged 1s", got)
	}
}
