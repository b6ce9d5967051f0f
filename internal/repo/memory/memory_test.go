package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/repo"
)

func TestConfigStore_EmptyLoad(t *testing.T) {
	s := NewConfigStore(nil)
	if _, err := s.Load(context.Background()); !errors.Is(err, repo.ErrNoConfig) {
		t.Fatalf("want ErrNoConfig, got %v", err)
	}
}

func TestConfigStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	s := NewConfigStore(nil)

	f := &config.File{CheckIntervalSuccess: 60000, CheckIntervalFail: 10000, NotifyFailures: 3}
	if err := s.Save(ctx, f); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.NotifyFailures != 3 {
		t.Fatalf("unexpected file: %+v", got)
	}
	if s.Saves() != 1 {
		t.Fatalf("expected 1 save, got %d", s.Saves())
	}
}
