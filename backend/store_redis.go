package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "chess:session:"

type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &RedisStore{rdb: rdb, ttl: cfg.SessionTTL, logger: logger}, nil
}

func redisSessionKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (Session, error) {
	raw, err := s.rdb.Get(ctx, redisSessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: redis get %s: %v", ErrPersistence, id, err)
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("%w: decode session %s: %v", ErrPersistence, id, err)
	}
	return session, nil
}

func (s *RedisStore) Save(ctx context.Context, session Session) (Session, error) {
	raw, err := json.Marshal(session)
	if err != nil {
		return Session{}, fmt.Errorf("%w: encode session %s: %v", ErrPersistence, session.ID, err)
	}
	if err := s.rdb.Set(ctx, redisSessionKey(session.ID), raw, s.ttl).Err(); err != nil {
		s.logger.Error("redis set failed", zap.String("match", session.ID), zap.Error(err))
		return Session{}, fmt.Errorf("%w: redis set %s: %v", ErrPersistence, session.ID, err)
	}
	return session, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
