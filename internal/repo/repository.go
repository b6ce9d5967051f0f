package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/healthcheck/internal/config"
)

// ErrNoConfig is returned by Load when nothing has been saved yet.
var ErrNoConfig = errors.New("no service file stored")

// ConfigStore persists the service file. Ports (interfaces): swap in any
// storage adapter.
type ConfigStore interface {
	Load(ctx context.Context) (*config.File, error)
	Save(ctx context.Context, f *config.File) error
}
