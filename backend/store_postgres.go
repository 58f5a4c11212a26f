package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS chess_sessions (
	id         TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// PostgresStore keeps each session as one JSONB document.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("POSTGRES_DSN required for the postgres store")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Info("connected to postgres")
	return &PostgresStore{db: db, logger: logger}, nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (Session, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM chess_sessions WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, s.wrap("load", id, err)
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("%w: decode session %s: %v", ErrPersistence, id, err)
	}
	return session, nil
}

func (s *PostgresStore) Save(ctx context.Context, session Session) (Session, error) {
	raw, err := json.Marshal(session)
	if err != nil {
		return Session{}, fmt.Errorf("%w: encode session %s: %v", ErrPersistence, session.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chess_sessions (id, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`, session.ID, raw, session.UpdatedAt)
	if err != nil {
		return Session{}, s.wrap("save", session.ID, err)
	}
	return session, nil
}

func (s *PostgresStore) wrap(op, id string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		s.logger.Error("postgres "+op+" failed",
			zap.String("match", id),
			zap.String("code", string(pqErr.Code)),
			zap.String("detail", pqErr.Detail),
		)
	} else {
		s.logger.Error("postgres "+op+" failed", zap.String("match", id), zap.Error(err))
	}
	return fmt.Errorf("%w: %s %s: %v", ErrPersistence, op, id, err)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
