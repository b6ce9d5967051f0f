package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Notifier is a message transport (Telegram, Slack, ...).
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi delivers to every transport and combines their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}
