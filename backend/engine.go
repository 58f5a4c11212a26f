package main

import (
	"errors"
	"time"
)

type Outcome int

const (
	OutcomeCommitted Outcome = iota + 1
	OutcomeReverted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeReverted:
		return "reverted"
	default:
		return "tentative"
	}
}

type MoveResult struct {
	Outcome Outcome
	Session Session
	Move    Move
	Last    LastMove
	Taken   *Piece
	Check CheckResult
	// set on revert unless the mover was already in check
	ClearCheck bool
}

// ProcessMove never modifies session.
func ProcessMove(session Session, move Move, now time.Time) (MoveResult, error) {
	if session.Status != SessionRunning {
		return MoveResult{}, &MoveError{Err: ErrGameOver, MatchID: session.ID, Kind: move.Kind}
	}
	if err := checkTurn(session, move); err != nil {
		return MoveResult{}, err
	}

	working := session.Board.Clone()
	applied, err := ApplyMove(&working, move)
	if err != nil {
		var moveErr *MoveError
		if errors.As(err, &moveErr) {
			moveErr.MatchID = session.ID
		}
		return MoveResult{}, err
	}

	outcome, check := validateBoard(working, move.Color)
	if outcome == OutcomeReverted {
		return revert(session, move, applied, check, now), nil
	}
	return commit(session, move, working, applied, check, now), nil
}

func checkTurn(session Session, move Move) error {
	if move.Color != session.Turn {
		return &MoveError{Err: ErrInvalidMove, MatchID: session.ID, Kind: move.Kind, Reason: "not " + move.Color.String() + "'s turn"}
	}
	pending := session.PendingPromotion
	switch {
	case pending != nil && move.Kind != PromotionMove:
		return &MoveError{Err: ErrInvalidMove, MatchID: session.ID, Kind: move.Kind, Reason: "promotion pending at " + pending.String()}
	case move.Kind == PromotionMove && (pending == nil || *pending != move.Target):
		return &MoveError{Err: ErrInvalidMove, MatchID: session.ID, Kind: move.Kind, Reason: "no promotion pending at " + move.Target.String()}
	}
	return nil
}

// A check against mover stops the walk; one against the other color is kept.
func validateBoard(board Board, mover Color) (Outcome, CheckResult) {
	occupied := board.Occupied()
	delivered := NoCheck
	for i := 0; ; i++ {
		if i == len(occupied) {
			return OutcomeCommitted, delivered
		}
		result := DetectCheck(board, occupied[i].Pos())
		switch {
		case !result.Checked:
		case result.Color == mover:
			return OutcomeReverted, result
		case !delivered.Checked:
			delivered = result
		}
	}
}

func commit(session Session, move Move, working Board, applied appliedMove, check CheckResult, now time.Time) MoveResult {
	next := session.Clone()
	for _, pos := range applied.touched {
		if piece := working.PieceAt(pos); piece != nil {
			piece.Moved = true
		}
	}
	working.ClearValid()
	next.Board = working

	last := applied.last
	next.LastMove = &last
	if applied.taken != nil {
		next.Taken = append(next.Taken, *applied.taken)
	}
	next.Check = NoColor
	if check.Checked {
		next.Check = check.Color
		next.CheckCount.Add(check.Color)
	}

	next.PendingPromotion = nil
	next.Turn = move.Color.Opponent()
	if move.Kind == SimpleMove && last.PieceMoved.Type == Pawn && last.MovedTo.Row == lastRank(move.Color) {
		pending := last.MovedTo
		next.PendingPromotion = &pending
		next.Turn = move.Color
	}

	next.History.Push(HistoryEntry{
		Kind:  move.Kind,
		Color: move.Color,
		Move:  last,
		Taken: applied.taken.Clone(),
		Check: next.Check,
		At:    now,
	})
	next.UpdatedAt = now

	return MoveResult{
		Outcome: OutcomeCommitted,
		Session: next,
		Move:    move,
		Last:    last,
		Taken:   applied.taken,
		Check:   check,
	}
}

func revert(session Session, move Move, applied appliedMove, check CheckResult, now time.Time) MoveResult {
	next := session.Clone()
	next.Board.ClearValid()
	next.UpdatedAt = now
	return MoveResult{
		Outcome:    OutcomeReverted,
		Session:    next,
		Move:       move,
		Last:       applied.last,
		Check:      check,
		ClearCheck: !move.InCheck && session.Check != move.Color,
	}
}
