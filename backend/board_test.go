package main

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newTestBoard builds a row-major board holding only the given pieces.
func newTestBoard(t *testing.T, pieces map[Pos]*Piece) Board {
	t.Helper()
	squares := make([]Square, 0, BoardSize*BoardSize)
	for row := 1; row <= BoardSize; row++ {
		for column := 1; column <= BoardSize; column++ {
			pos := Pos{Row: row, Column: column}
			squares = append(squares, Square{Row: row, Column: column, Piece: pieces[pos].Clone()})
		}
	}
	board, err := NewBoard(squares)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	return board
}

func movedPiece(pieceType PieceType, color Color) *Piece {
	return &Piece{Type: pieceType, Color: color, Moved: true}
}

func sortedPositions(positions []Pos) []Pos {
	out := append([]Pos(nil), positions...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out
}

func TestNewBoardRejectsWrongSquareCount(t *testing.T) {
	if _, err := NewBoard(StandardSquares()[:63]); err == nil {
		t.Fatalf("expected error for 63 squares")
	}
}

func TestNewBoardRejectsDuplicateSquare(t *testing.T) {
	squares := StandardSquares()
	squares[10] = Square{Row: 1, Column: 1}
	if _, err := NewBoard(squares); err == nil {
		t.Fatalf("expected error for duplicated (1,1)")
	}
}

func TestNewBoardRejectsOutOfRangeSquare(t *testing.T) {
	squares := StandardSquares()
	squares[63] = Square{Row: 9, Column: 8}
	_, err := NewBoard(squares)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestBoardGetRejectsOutOfRange(t *testing.T) {
	board := StandardBoard()
	for _, pos := range []Pos{{0, 1}, {1, 0}, {9, 1}, {1, 9}, {-3, 4}} {
		if _, err := board.Get(pos.Row, pos.Column); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Get%s: expected ErrOutOfRange, got %v", pos, err)
		}
	}
	square, err := board.Get(1, 5)
	if err != nil {
		t.Fatalf("Get(1,5): %v", err)
	}
	if !square.Piece.Is(King, White) {
		t.Fatalf("expected white king on (1,5), got %s", square.Piece)
	}
}

func TestBoardKeepsLoadOrder(t *testing.T) {
	squares := StandardSquares()
	for i, j := 0, len(squares)-1; i < j; i, j = i+1, j-1 {
		squares[i], squares[j] = squares[j], squares[i]
	}
	board, err := NewBoard(squares)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	all := board.All()
	if all[0].Pos() != (Pos{Row: 8, Column: 8}) || all[63].Pos() != (Pos{Row: 1, Column: 1}) {
		t.Fatalf("expected reversed load order, got first=%s last=%s", all[0].Pos(), all[63].Pos())
	}
	occupied := board.Occupied()
	if len(occupied) != 32 {
		t.Fatalf("expected 32 occupied squares, got %d", len(occupied))
	}
	if occupied[0].Pos() != (Pos{Row: 8, Column: 8}) {
		t.Fatalf("expected occupied to follow load order, got %s first", occupied[0].Pos())
	}
}

func TestBoardCloneIsIndependent(t *testing.T) {
	board := StandardBoard()
	clone := board.Clone()
	clone.PieceAt(Pos{Row: 1, Column: 1}).Moved = true
	clone.Clear(Pos{Row: 2, Column: 1})

	if board.PieceAt(Pos{Row: 1, Column: 1}).Moved {
		t.Fatalf("moved flag leaked into the source board")
	}
	if board.PieceAt(Pos{Row: 2, Column: 1}) == nil {
		t.Fatalf("clear leaked into the source board")
	}
}

func TestBoardAllReturnsCopies(t *testing.T) {
	board := StandardBoard()
	all := board.All()
	all[0].Piece.Type = Queen
	if !board.PieceAt(Pos{Row: 1, Column: 1}).Is(Rook, White) {
		t.Fatalf("All must not expose the board's pieces")
	}
}

func TestBoardJSONKeepsSquares(t *testing.T) {
	board := StandardBoard()
	board.PieceAt(Pos{Row: 2, Column: 3}).Moved = true
	data, err := json.Marshal(board)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Board
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(board.All(), decoded.All()); diff != "" {
		t.Fatalf("board mismatch (-want +got):\n%s", diff)
	}
}
