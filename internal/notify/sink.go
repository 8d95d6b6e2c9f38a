package notify

import (
	"context"
	"log/slog"

	"github.com/Skotchmaster/bookcart/internal/cart"
)

// Log writes notifications to a logger. It is the sink of last resort when no
// broker is configured.
type Log struct {
	L *slog.Logger
}

func (s Log) Notify(ctx context.Context, n cart.Notification) {
	l := s.L
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "notification",
		"kind", n.Kind,
		"item_id", n.ItemID,
		"title", n.Title,
		"description", n.Description,
	)
}

// Multi fans a notification out to every sink in order.
type Multi []cart.Notifier

func (m Multi) Notify(ctx context.Context, n cart.Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}
