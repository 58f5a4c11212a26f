package main

import (
	"encoding/json"
	"fmt"
	"os"
)

var backRank = [BoardSize]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StandardSquares is the start position, white on rows 1-2, loaded row by
// row from (1,1) to (8,8).
func StandardSquares() []Square {
	squares := make([]Square, 0, BoardSize*BoardSize)
	for row := 1; row <= BoardSize; row++ {
		for column := 1; column <= BoardSize; column++ {
			square := Square{Row: row, Column: column}
			switch row {
			case 1:
				square.Piece = NewPiece(backRank[column-1], White)
			case 2:
				square.Piece = NewPiece(Pawn, White)
			case 7:
				square.Piece = NewPiece(Pawn, Black)
			case 8:
				square.Piece = NewPiece(backRank[column-1], Black)
			}
			squares = append(squares, square)
		}
	}
	return squares
}

func StandardBoard() Board {
	board, err := NewBoard(StandardSquares())
	if err != nil {
		panic(err)
	}
	return board
}

// SeedLoader produces the board a new or reset match starts from.
type SeedLoader func() (Board, error)

// NewSeedLoader reads the squares file at path on every call, or returns
// the standard layout when path is empty.
func NewSeedLoader(path string) SeedLoader {
	if path == "" {
		return func() (Board, error) {
			return StandardBoard(), nil
		}
	}
	return func() (Board, error) {
		return LoadSeedFile(path)
	}
}

func LoadSeedFile(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	var squares []Square
	if err := json.Unmarshal(data, &squares); err != nil {
		return Board{}, fmt.Errorf("decode seed %s: %w", path, err)
	}
	board, err := NewBoard(squares)
	if err != nil {
		return Board{}, fmt.Errorf("seed %s: %w", path, err)
	}
	board.ClearValid()
	return board, nil
}
