package main

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove rejects a request before any mutation happens.
	ErrInvalidMove = errors.New("invalid move request")

	ErrOutOfRange      = errors.New("coordinates out of range")
	ErrSessionNotFound = errors.New("session not found")
	ErrPersistence     = errors.New("persistence failure")
	ErrGameOver        = errors.New("game is over")
)

// MoveError carries the match and move kind a rejected request belonged to.
type MoveError struct {
	Err     error
	MatchID string
	Kind    MoveKind
	Reason  string
}

func (e *MoveError) Error() string {
	msg := e.Err.Error()
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.MatchID != "" {
		return fmt.Sprintf("match %s: %s %s", e.MatchID, e.Kind, msg)
	}
	return fmt.Sprintf("%s %s", e.Kind, msg)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func invalidMove(kind MoveKind, format string, args ...any) error {
	return &MoveError{Err: ErrInvalidMove, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
