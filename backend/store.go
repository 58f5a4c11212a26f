package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SessionStore is the session gateway: it loads and saves a match's
// complete session by id. Load of an unknown id fails with
// ErrSessionNotFound immediately.
type SessionStore interface {
	Load(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, session Session) (Session, error)
	Close() error
}

func NewSessionStore(ctx context.Context, cfg Config, logger *zap.Logger) (SessionStore, error) {
	switch cfg.StoreDriver {
	case "", "memory":
		logger.Info("using in-memory session store")
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, cfg.Redis, logger)
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresDSN, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
