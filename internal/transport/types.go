package transport

import "context"

type ChatTarget struct {
	ChatID int64
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender is the narrow port the notification pipeline talks through.
// Keeping it this small lets the messaging backend be swapped or faked
// without touching loop logic.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) error
}
