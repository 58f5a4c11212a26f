package main

import (
	"fmt"
	"strings"
)

type Color int

const (
	NoColor Color = iota
	White
	Black
)

type PieceType int

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece is the occupant of a square. Moved only ever goes from false to
// true while a match is running; a reset replaces the whole board.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
	Moved bool      `json:"moved"`
}

func NewPiece(pieceType PieceType, color Color) *Piece {
	return &Piece{Type: pieceType, Color: color}
}

func (p *Piece) Clone() *Piece {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Piece) Is(pieceType PieceType, color Color) bool {
	return p != nil && p.Type == pieceType && p.Color == color
}

func (p *Piece) String() string {
	if p == nil {
		return "empty"
	}
	return p.Color.String() + " " + p.Type.String()
}

func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// Forward is the row direction pawns of this color advance in.
func (c Color) Forward() int {
	if c == Black {
		return -1
	}
	return 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return ""
	}
}

func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return NoColor, false
	}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = NoColor
		return nil
	}
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("unknown color %q", string(text))
	}
	*c = parsed
	return nil
}

var pieceTypeNames = map[PieceType]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

func (t PieceType) String() string {
	if name, ok := pieceTypeNames[t]; ok {
		return name
	}
	return ""
}

func ParsePieceType(s string) (PieceType, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for pieceType, name := range pieceTypeNames {
		if name == needle {
			return pieceType, true
		}
	}
	return NoPiece, false
}

func (t PieceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PieceType) UnmarshalText(text []byte) error {
	parsed, ok := ParsePieceType(string(text))
	if !ok {
		return fmt.Errorf("unknown piece type %q", string(text))
	}
	*t = parsed
	return nil
}

// CanPromoteTo reports whether a pawn may be replaced by this piece type.
func (t PieceType) CanPromoteTo() bool {
	switch t {
	case Knight, Bishop, Rook, Queen:
		return true
	default:
		return false
	}
}
