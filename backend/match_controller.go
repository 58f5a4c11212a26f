package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	eventUpdate     = "update"
	eventCheck      = "check"
	eventNewGame    = "newGame"
	eventUserLeft   = "userLeft"
	eventWinner     = "winner"
	eventStoreGuest = "storeGuest"
	eventError      = "error"
)

const clearCheckTimeout = 5 * time.Second

type updatePayload struct {
	Board            Board      `json:"board"`
	Writable         bool       `json:"writable"`
	CurrentTurn      Color      `json:"currentTurn"`
	TakenPiece       *Piece     `json:"takenPiece,omitempty"`
	LastMove         *LastMove  `json:"lastMove,omitempty"`
	Check            any        `json:"check"`
	CheckCount       CheckCount `json:"checkCount"`
	PendingPromotion *Pos       `json:"pendingPromotion,omitempty"`
	Rejected         bool       `json:"rejected,omitempty"`
	FEN              string     `json:"fen"`
}

type checkPayload struct {
	Check any `json:"check"`
}

type newGamePayload struct {
	Board       Board `json:"board"`
	CurrentTurn Color `json:"currentTurn"`
}

type winnerPayload struct {
	Winner Color `json:"winner"`
	Reason string `json:"reason"`
}

type guestPayload struct {
	Name  string `json:"name"`
	Color Color  `json:"color,omitempty"`
}

type errorPayload struct {
	Event string `json:"event,omitempty"`
	Error string `json:"error"`
}

// checkValue is the color in check, or false when nobody is.
func checkValue(color Color) any {
	if color == NoColor {
		return false
	}
	return color
}

func sessionUpdate(session Session) updatePayload {
	return updatePayload{
		Board:            session.Board,
		Writable:         session.Writable(),
		CurrentTurn:      session.Turn,
		LastMove:         session.LastMove,
		Check:            checkValue(session.Check),
		CheckCount:       session.CheckCount,
		PendingPromotion: session.PendingPromotion,
		FEN:              BoardFEN(session.Board),
	}
}

// MatchController serializes every operation on one match: a move is
// loaded, applied, validated, saved and broadcast before the next starts.
type MatchController struct {
	mu          sync.Mutex
	id          string
	store       SessionStore
	broadcaster Broadcaster
	seed        SeedLoader
	logger      *zap.Logger
	revertDelay time.Duration
	now         func() time.Time
	afterFunc   func(time.Duration, func())
}

func (mc *MatchController) ID() string {
	return mc.id
}

func (mc *MatchController) Session(ctx context.Context) (Session, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.store.Load(ctx, mc.id)
}

// Invalid requests leave the session and subscribers untouched.
func (mc *MatchController) Move(ctx context.Context, move Move) (MoveResult, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	session, err := mc.store.Load(ctx, mc.id)
	if err != nil {
		return MoveResult{}, err
	}
	result, err := ProcessMove(session, move, mc.now())
	if err != nil {
		mc.logger.Debug("move rejected", zap.String("kind", move.Kind.String()), zap.Error(err))
		return MoveResult{}, err
	}
	saved, err := mc.store.Save(ctx, result.Session)
	if err != nil {
		mc.logger.Error("save failed", zap.String("outcome", result.Outcome.String()), zap.Error(err))
		return MoveResult{}, err
	}
	result.Session = saved

	switch result.Outcome {
	case OutcomeCommitted:
		mc.logger.Debug("move committed",
			zap.String("kind", move.Kind.String()),
			zap.String("color", move.Color.String()),
			zap.Stringer("to", result.Last.MovedTo),
			zap.Bool("check", result.Check.Checked),
		)
		update := sessionUpdate(saved)
		update.TakenPiece = result.Taken
		mc.broadcaster.Publish(mc.id, eventUpdate, update)
		if result.Check.Checked {
			mc.broadcaster.Publish(mc.id, eventCheck, checkPayload{Check: result.Check.Color})
		}
	case OutcomeReverted:
		mc.logger.Debug("move reverted",
			zap.String("kind", move.Kind.String()),
			zap.String("color", move.Color.String()),
			zap.Stringer("to", result.Last.MovedTo),
		)
		update := sessionUpdate(saved)
		update.Rejected = true
		mc.broadcaster.Publish(mc.id, eventUpdate, update)
		if result.ClearCheck {
			history, updated := saved.History.Size(), saved.UpdatedAt
			mc.afterFunc(mc.revertDelay, func() {
				mc.clearCheck(history, updated)
			})
		}
	}
	return result, nil
}

// clearCheck is skipped when the session was saved again after the revert.
func (mc *MatchController) clearCheck(history int, updated time.Time) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), clearCheckTimeout)
	defer cancel()
	session, err := mc.store.Load(ctx, mc.id)
	if err != nil {
		mc.logger.Warn("check clear skipped", zap.Error(err))
		return
	}
	if session.History.Size() != history || !session.UpdatedAt.Equal(updated) {
		return
	}
	mc.broadcaster.Publish(mc.id, eventCheck, checkPayload{Check: checkValue(session.Check)})
}

func (mc *MatchController) Reset(ctx context.Context) (Session, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	current, err := mc.store.Load(ctx, mc.id)
	if err != nil {
		return Session{}, err
	}
	board, err := mc.seed()
	if err != nil {
		return Session{}, err
	}
	session := NewSession(mc.id, board, mc.now())
	session.CreatedAt = current.CreatedAt
	saved, err := mc.store.Save(ctx, session)
	if err != nil {
		return Session{}, err
	}
	mc.logger.Info("match reset")
	mc.broadcaster.Publish(mc.id, eventNewGame, newGamePayload{Board: saved.Board, CurrentTurn: saved.Turn})
	return saved, nil
}

func (mc *MatchController) Resign(ctx context.Context, color Color) (Session, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	session, err := mc.store.Load(ctx, mc.id)
	if err != nil {
		return Session{}, err
	}
	if session.Status != SessionRunning {
		return Session{}, ErrGameOver
	}
	if color == NoColor {
		return Session{}, &MoveError{Err: ErrInvalidMove, MatchID: mc.id, Reason: "resign needs a color"}
	}
	session.Status = SessionFinished
	session.Winner = color.Opponent()
	session.UpdatedAt = mc.now()
	saved, err := mc.store.Save(ctx, session)
	if err != nil {
		return Session{}, err
	}
	mc.logger.Info("player resigned", zap.String("color", color.String()))
	mc.broadcaster.Publish(mc.id, eventWinner, winnerPayload{Winner: saved.Winner, Reason: "resign"})
	mc.broadcaster.Publish(mc.id, eventUpdate, sessionUpdate(saved))
	return saved, nil
}

// MatchRegistry hands out one controller per match id.
type MatchRegistry struct {
	mu          sync.Mutex
	matches     map[string]*MatchController
	store       SessionStore
	broadcaster Broadcaster
	seed        SeedLoader
	logger      *zap.Logger
	revertDelay time.Duration
	now         func() time.Time
	afterFunc   func(time.Duration, func())
}

func NewMatchRegistry(store SessionStore, broadcaster Broadcaster, seed SeedLoader, revertDelay time.Duration, logger *zap.Logger) *MatchRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchRegistry{
		matches:     make(map[string]*MatchController),
		store:       store,
		broadcaster: broadcaster,
		seed:        seed,
		logger:      logger,
		revertDelay: revertDelay,
		now:         time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Get returns the controller of an existing match. Ids without a stored
// session fail with ErrSessionNotFound and are not remembered.
func (r *MatchRegistry) Get(ctx context.Context, id string) (*MatchController, error) {
	r.mu.Lock()
	mc, ok := r.matches[id]
	r.mu.Unlock()
	if ok {
		return mc, nil
	}
	if _, err := r.store.Load(ctx, id); err != nil {
		return nil, err
	}
	return r.controller(id), nil
}

func (r *MatchRegistry) controller(id string) *MatchController {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mc, ok := r.matches[id]; ok {
		return mc
	}
	mc := &MatchController{
		id:          id,
		store:       r.store,
		broadcaster: r.broadcaster,
		seed:        r.seed,
		logger:      r.logger.With(zap.String("match", id)),
		revertDelay: r.revertDelay,
		now:         r.now,
		afterFunc:   r.afterFunc,
	}
	r.matches[id] = mc
	return mc
}

func (r *MatchRegistry) Create(ctx context.Context) (Session, error) {
	board, err := r.seed()
	if err != nil {
		return Session{}, err
	}
	session := NewSession(uuid.NewString(), board, r.now())
	saved, err := r.store.Save(ctx, session)
	if err != nil {
		return Session{}, err
	}
	r.controller(saved.ID)
	r.logger.Info("match created", zap.String("match", saved.ID))
	return saved, nil
}

func isClientError(err error) bool {
	return errors.Is(err, ErrInvalidMove) || errors.Is(err, ErrGameOver) || errors.Is(err, ErrOutOfRange)
}
