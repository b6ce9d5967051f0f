package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/repo"
)

var _ repo.ConfigStore = (*Store)(nil)

// Schema is applied by Migrate. The service file is one JSON document.
const Schema = `
CREATE TABLE IF NOT EXISTS service_config (
  id         INTEGER PRIMARY KEY,
  doc        JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// documentID is the single row the service file lives in.
const documentID = 1

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the service_config table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Load returns the stored file, validated and normalized.
func (s *Store) Load(ctx context.Context) (*config.File, error) {
	var (
		doc       []byte
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT doc, updated_at FROM service_config WHERE id = $1`, documentID,
	).Scan(&doc, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("select service file: %w", err)
	}

	var f config.File
	if err := json.Unmarshal(doc, &f); err != nil {
		return nil, fmt.Errorf("decode service file: %w", err)
	}
	if err := config.Validate(&f); err != nil {
		return nil, err
	}
	config.Normalize(&f)

	s.log.Debug("service_file_loaded", zap.Time("updated_at", updatedAt), zap.Int("services", len(f.Services)))
	return &f, nil
}

func (s *Store) Save(ctx context.Context, f *config.File) error {
	doc, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode service file: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO service_config (id, doc, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE
		   SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		documentID, doc,
	)
	if err != nil {
		return fmt.Errorf("upsert service file: %w", err)
	}
	s.log.Info("service_file_saved", zap.Int("services", len(f.Services)))
	return nil
}
