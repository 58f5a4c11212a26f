package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

// exerciseStore runs the behaviour every SessionStore driver shares.
func exerciseStore(t *testing.T, store SessionStore, id string) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Load(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load of unknown id: expected ErrSessionNotFound, got %v", err)
	}

	session := NewSession(id, StandardBoard(), testNow)
	if _, err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	result, err := ProcessMove(session, Move{Kind: SimpleMove, Base: Pos{Row: 2, Column: 4}, Target: Pos{Row: 4, Column: 4}, Color: White}, testNow)
	if err != nil {
		t.Fatalf("ProcessMove: %v", err)
	}
	if _, err := store.Save(ctx, result.Session); err != nil {
		t.Fatalf("Save after move: %v", err)
	}

	loaded, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(result.Session.Board.All(), loaded.Board.All()); diff != "" {
		t.Fatalf("board mismatch (-want +got):\n%s", diff)
	}
	if loaded.Turn != Black || loaded.History.Size() != 1 {
		t.Fatalf("expected black to move after one entry, got turn=%s history=%d", loaded.Turn, loaded.History.Size())
	}
	if diff := cmp.Diff(result.Session.LastMove, loaded.LastMove); diff != "" {
		t.Fatalf("last move mismatch (-want +got):\n%s", diff)
	}
	if !loaded.CreatedAt.Equal(testNow) {
		t.Fatalf("CreatedAt changed: %s", loaded.CreatedAt)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(), "memory-match")
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	session := NewSession("m", StandardBoard(), testNow)
	if _, err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	session.Board.Clear(Pos{Row: 1, Column: 1})

	loaded, err := store.Load(ctx, "m")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Board.PieceAt(Pos{Row: 1, Column: 1}) == nil {
		t.Fatalf("caller mutation leaked into the store")
	}
	loaded.Board.Clear(Pos{Row: 1, Column: 2})
	again, _ := store.Load(ctx, "m")
	if again.Board.PieceAt(Pos{Row: 1, Column: 2}) == nil {
		t.Fatalf("loaded session shares state with the store")
	}
}

func TestMemoryStoreRejectsIncompleteSession(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Save(context.Background(), Session{ID: "x"}); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence for a session without board, got %v", err)
	}
	if _, err := store.Save(context.Background(), NewSession("", StandardBoard(), testNow)); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence for a session without id, got %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, SessionTTL: time.Minute}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer store.Close()
	id := "test-" + t.Name()
	defer store.rdb.Del(context.Background(), redisSessionKey(id))
	exerciseStore(t, store, id)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	store, err := NewPostgresStore(context.Background(), dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer store.Close()
	id := "test-" + t.Name()
	defer store.db.Exec(`DELETE FROM chess_sessions WHERE id = $1`, id)
	exerciseStore(t, store, id)
}

func TestNewSessionStoreRejectsUnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StoreDriver = "mongo"
	if _, err := NewSessionStore(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
