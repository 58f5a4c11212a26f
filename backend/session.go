package main

import (
	"fmt"
	"time"
)

type SessionStatus int

const (
	SessionRunning SessionStatus = iota
	SessionFinished
)

func (s SessionStatus) String() string {
	if s == SessionFinished {
		return "finished"
	}
	return "running"
}

func (s SessionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SessionStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "running":
		*s = SessionRunning
	case "finished":
		*s = SessionFinished
	default:
		return fmt.Errorf("unknown session status %q", string(text))
	}
	return nil
}

type CheckCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

func (c *CheckCount) Add(color Color) {
	switch color {
	case White:
		c.White++
	case Black:
		c.Black++
	}
}

// Session is the persisted state of one match. The engine never keeps a
// session between calls: it receives one and returns the next.
type Session struct {
	ID         string        `json:"id"`
	Board      Board         `json:"board"`
	Turn       Color         `json:"currentTurn"`
	Status     SessionStatus `json:"status"`
	Winner     Color         `json:"winner,omitempty"`
	Check      Color         `json:"check,omitempty"`
	CheckCount CheckCount    `json:"checkCount"`
	LastMove   *LastMove     `json:"lastMove,omitempty"`
	Taken      []Piece       `json:"taken"`
	// PendingPromotion is the square of a pawn that reached the last rank
	// and still waits for its promotion piece.
	PendingPromotion *Pos       `json:"pendingPromotion,omitempty"`
	History          MoveHistory `json:"history"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

func NewSession(id string, board Board, now time.Time) Session {
	return Session{
		ID:        id,
		Board:     board.Clone(),
		Turn:      White,
		Status:    SessionRunning,
		Taken:     []Piece{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s Session) Clone() Session {
	clone := s
	clone.Board = s.Board.Clone()
	clone.Taken = append([]Piece{}, s.Taken...)
	clone.History = MoveHistory{entries: s.History.All()}
	if s.LastMove != nil {
		last := *s.LastMove
		clone.LastMove = &last
	}
	if s.PendingPromotion != nil {
		pending := *s.PendingPromotion
		clone.PendingPromotion = &pending
	}
	return clone
}

func (s Session) Writable() bool {
	return s.Status == SessionRunning
}
