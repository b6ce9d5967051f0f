package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/repo"
)

// ConfigStore keeps the service file in process memory.
type ConfigStore struct {
	mu    sync.RWMutex
	file  *config.File
	saves int
}

// NewConfigStore returns a store holding f, which may be nil.
func NewConfigStore(f *config.File) *ConfigStore {
	return &ConfigStore{file: f}
}

func (m *ConfigStore) Load(ctx context.Context) (*config.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.file == nil {
		return nil, repo.ErrNoConfig
	}
	return m.file, nil
}

func (m *ConfigStore) Save(ctx context.Context, f *config.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.file = f
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *ConfigStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

var _ repo.ConfigStore = (*ConfigStore)(nil)
