package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type fakeSender struct {
	to    []transport.ChatTarget
	texts []string
	opts  []*transport.SendOptions
	err   error
}

func (f *fakeSender) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) error {
	f.to = append(f.to, to)
	f.texts = append(f.texts, text)
	f.opts = append(f.opts, opt)
	return f.err
}

func TestNotifySendsToConfiguredChat(t *testing.T) {
	t.Parallel()

	f := &fakeSender{}
	s := New(f, 4242, 1, logx.Nop())

	start := time.Now()
	if err := s.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if took := time.Since(start); took > time.Second {
		t.Fatalf("first send waited %v; the token bucket should have headroom", took)
	}

	if len(f.texts) != 1 || f.texts[0] != "hello" {
		t.Fatalf("sent = %q, want [hello]", f.texts)
	}
	if f.to[0].ChatID != 4242 {
		t.Fatalf("chat id = %d, want 4242", f.to[0].ChatID)
	}
	if f.opts[0] == nil || !f.opts[0].DisablePreview {
		t.Fatal("notifications should disable link previews")
	}
}

func TestNotifyWrapsTransportFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("flood control")
	s := New(&fakeSender{err: cause}, 7, 1, logx.Nop())

	err := s.Notify(context.Background(), "hello")
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DeliveryError", err)
	}
	if de.ChatID != 7 {
		t.Fatalf("ChatID = %d, want 7", de.ChatID)
	}
	if !errors.Is(err, cause) {
		t.Fatal("DeliveryError should wrap the transport cause")
	}
}

func TestNotifyCancelledContext(t *testing.T) {
	t.Parallel()

	f := &fakeSender{}
	s := New(f, 1, 1, logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Notify(ctx, "hello")
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DeliveryError", err)
	}
	if len(f.texts) != 0 {
		t.Fatal("nothing should be sent after cancellation")
	}
}
