package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/httpapi"
	apimw "github.com/hamed0406/healthcheck/internal/httpapi/middleware"
	"github.com/hamed0406/healthcheck/internal/logging"
	"github.com/hamed0406/healthcheck/internal/notify"
	"github.com/hamed0406/healthcheck/internal/repo"
	"github.com/hamed0406/healthcheck/internal/repo/file"
	"github.com/hamed0406/healthcheck/internal/repo/postgres"
	"github.com/hamed0406/healthcheck/internal/scheduler"
	"github.com/hamed0406/healthcheck/internal/stream"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, cfg.LogConsole)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	f, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load service file: %w", err)
	}

	var transport notify.Multi
	if tg := notify.NewTelegram(f.TelegramToken, f.TelegramChatID); tg != nil {
		transport = append(transport, tg)
	}
	if sl := notify.NewSlack(cfg.SlackWebhook); sl != nil {
		transport = append(transport, sl)
	}
	if len(transport) == 0 {
		logger.Warn("no_notification_transport")
	}

	hub := stream.New(logger.Named("stream"), cfg.Origins)
	go hub.Run(ctx)

	sup := scheduler.NewSupervisor(scheduler.Options{
		Logger:   logger.Named("scheduler"),
		Sink:     notify.Sinks{notify.NewDispatcher(logger.Named("notify"), transport), hub},
		Observer: hub,
		Grace:    cfg.SwapGrace,
		Store:    store,
	})
	if err := sup.Start(ctx, f); err != nil {
		return err
	}

	api := httpapi.NewServer(logger.Named("http"), sup, hub.HandleConnect, cfg.FrontendDir)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              listenAddr(cfg, f),
		Handler:           api.Router(keys, cfg.Origins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", srv.Addr), zap.Int("services", len(f.Services)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_shutdown", zap.Error(err))
	}
	return sup.Shutdown(shutdownCtx)
}

// openStore picks postgres when DATABASE_URL is set, seeding it from the
// service file on first start; otherwise the YAML file itself.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.ConfigStore, func(), error) {
	fs := file.New(cfg.ServicesFile)
	if cfg.DatabaseURL == "" {
		return fs, func() {}, nil
	}

	pg, err := postgres.New(ctx, cfg.DatabaseURL, logger.Named("postgres"))
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	if _, err := pg.Load(ctx); errors.Is(err, repo.ErrNoConfig) {
		seed, err := fs.Load(ctx)
		if err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("seed from %s: %w", cfg.ServicesFile, err)
		}
		if err := pg.Save(ctx, seed); err != nil {
			pg.Close()
			return nil, nil, err
		}
		logger.Info("service_file_seeded", zap.String("from", cfg.ServicesFile))
	}
	return pg, pg.Close, nil
}

// listenAddr honours web_port from the service file unless the bind address
// came from the environment.
func listenAddr(cfg config.Config, f *config.File) string {
	if os.Getenv("API_ADDR") == "" && os.Getenv("ADDR") == "" && f.WebPort != nil {
		return fmt.Sprintf(":%d", *f.WebPort)
	}
	return cfg.Addr
}
