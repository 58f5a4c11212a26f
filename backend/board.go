package main

import (
	"encoding/json"
	"fmt"
)

const BoardSize = 8

type Pos struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (p Pos) InBounds() bool {
	return p.Row >= 1 && p.Row <= BoardSize && p.Column >= 1 && p.Column <= BoardSize
}

func (p Pos) Offset(dRow, dColumn int) Pos {
	return Pos{Row: p.Row + dRow, Column: p.Column + dColumn}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Column)
}

type Square struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Piece  *Piece `json:"piece,omitempty"`
	Valid  bool   `json:"valid"`
}

func (s Square) Pos() Pos {
	return Pos{Row: s.Row, Column: s.Column}
}

func (s Square) Empty() bool {
	return s.Piece == nil
}

func (s Square) clone() Square {
	s.Piece = s.Piece.Clone()
	return s
}

// Squares keep their load order; the check scan walks them in it.
type Board struct {
	squares []Square
	index   [BoardSize][BoardSize]int
}

func NewBoard(squares []Square) (Board, error) {
	if len(squares) != BoardSize*BoardSize {
		return Board{}, fmt.Errorf("board needs %d squares, got %d", BoardSize*BoardSize, len(squares))
	}
	b := Board{squares: make([]Square, len(squares))}
	for r := range b.index {
		for c := range b.index[r] {
			b.index[r][c] = -1
		}
	}
	for i, square := range squares {
		pos := square.Pos()
		if !pos.InBounds() {
			return Board{}, fmt.Errorf("square %s: %w", pos, ErrOutOfRange)
		}
		if b.index[pos.Row-1][pos.Column-1] != -1 {
			return Board{}, fmt.Errorf("duplicate square %s", pos)
		}
		b.index[pos.Row-1][pos.Column-1] = i
		b.squares[i] = square.clone()
	}
	return b, nil
}

func (b Board) Get(row, column int) (Square, error) {
	pos := Pos{Row: row, Column: column}
	if !pos.InBounds() || len(b.squares) == 0 {
		return Square{}, fmt.Errorf("square %s: %w", pos, ErrOutOfRange)
	}
	return b.squares[b.index[row-1][column-1]].clone(), nil
}

func (b Board) PieceAt(pos Pos) *Piece {
	if !pos.InBounds() || len(b.squares) == 0 {
		return nil
	}
	return b.squares[b.index[pos.Row-1][pos.Column-1]].Piece
}

func (b Board) IsEmpty(pos Pos) bool {
	return pos.InBounds() && b.PieceAt(pos) == nil
}

func (b *Board) Set(pos Pos, piece *Piece) {
	b.squares[b.index[pos.Row-1][pos.Column-1]].Piece = piece
}

func (b *Board) Clear(pos Pos) {
	b.Set(pos, nil)
}

func (b Board) All() []Square {
	out := make([]Square, len(b.squares))
	for i, square := range b.squares {
		out[i] = square.clone()
	}
	return out
}

func (b Board) Occupied() []Square {
	out := make([]Square, 0, 32)
	for _, square := range b.squares {
		if square.Piece != nil {
			out = append(out, square.clone())
		}
	}
	return out
}

func (b Board) Clone() Board {
	clone := Board{index: b.index, squares: make([]Square, len(b.squares))}
	for i, square := range b.squares {
		clone.squares[i] = square.clone()
	}
	return clone
}

func (b *Board) MarkValid(positions []Pos) {
	b.ClearValid()
	for _, pos := range positions {
		if pos.InBounds() {
			b.squares[b.index[pos.Row-1][pos.Column-1]].Valid = true
		}
	}
}

func (b *Board) ClearValid() {
	for i := range b.squares {
		b.squares[i].Valid = false
	}
}

func (b Board) IsZero() bool {
	return len(b.squares) == 0
}

func (b Board) MarshalJSON() ([]byte, error) {
	if b.squares == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.squares)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var squares []Square
	if err := json.Unmarshal(data, &squares); err != nil {
		return err
	}
	board, err := NewBoard(squares)
	if err != nil {
		return err
	}
	*b = board
	return nil
}
