package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type matchResponse struct {
	Session Session       `json:"session"`
	Update  updatePayload `json:"update"`
}

func main() {
	cfg, cfgErrs := LoadConfigFromEnv(os.Getenv)
	logger, err := newLogger(cfg.Logs)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	for _, cfgErr := range cfgErrs {
		logger.Warn("config value ignored", zap.Error(cfgErr))
	}
	configStore.Update(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := NewSessionStore(ctx, cfg, logger.Named("store"))
	if err != nil {
		logger.Fatal("session store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing session store", zap.Error(err))
		}
	}()

	seed := NewSeedLoader(cfg.SeedPath)
	if _, err := seed(); err != nil {
		logger.Fatal("seed board", zap.String("path", cfg.SeedPath), zap.Error(err))
	}

	hub := NewHub(logger.Named("hub"))
	go hub.Run(ctx.Done())
	registry := NewMatchRegistry(store, hub, seed, cfg.RevertDelay, logger.Named("match"))
	ws := &wsServer{hub: hub, registry: registry, logger: logger.Named("ws"), ping: cfg.WSPing}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(registry, seed, ws),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger.Info("backend listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.StoreDriver))
	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received", zap.Error(sigCtx.Err()))
	case err, ok := <-serverErrCh:
		if ok {
			logger.Error("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			logger.Warn("forced close failed", zap.Error(closeErr))
		}
	}
}

func newRouter(registry *MatchRegistry, seed SeedLoader, ws *wsServer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Get("/api/squares", func(w http.ResponseWriter, r *http.Request) {
		board, err := seed()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, board)
	})

	r.Post("/api/matches", func(w http.ResponseWriter, r *http.Request) {
		session, err := registry.Create(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, matchResponse{Session: session, Update: sessionUpdate(session)})
	})

	r.Route("/api/matches/{matchID}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			session, err := matchSession(r.Context(), registry, chi.URLParam(r, "matchID"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, matchResponse{Session: session, Update: sessionUpdate(session)})
		})
		r.Get("/fen", func(w http.ResponseWriter, r *http.Request) {
			session, err := matchSession(r.Context(), registry, chi.URLParam(r, "matchID"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"fen": PositionFEN(session.Board, session.Turn)})
		})
		r.Get("/threats", func(w http.ResponseWriter, r *http.Request) {
			row, rowErr := strconv.Atoi(r.URL.Query().Get("row"))
			column, colErr := strconv.Atoi(r.URL.Query().Get("column"))
			origin := Pos{Row: row, Column: column}
			if rowErr != nil || colErr != nil || !origin.InBounds() {
				writeError(w, ErrOutOfRange)
				return
			}
			session, err := matchSession(r.Context(), registry, chi.URLParam(r, "matchID"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"origin":  origin,
				"squares": ThreatBoard(session.Board, origin),
			})
		})
	})

	r.Get("/ws/{matchID}", ws.serveWS)
	return r
}

func matchSession(ctx context.Context, registry *MatchRegistry, id string) (Session, error) {
	match, err := registry.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	return match.Session(ctx)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case isClientError(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
