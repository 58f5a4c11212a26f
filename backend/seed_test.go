package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStandardSquaresLayout(t *testing.T) {
	squares := StandardSquares()
	if len(squares) != 64 {
		t.Fatalf("expected 64 squares, got %d", len(squares))
	}
	if squares[0].Pos() != (Pos{Row: 1, Column: 1}) || squares[63].Pos() != (Pos{Row: 8, Column: 8}) {
		t.Fatalf("expected row-major order from (1,1) to (8,8)")
	}
	checks := map[Pos]Piece{
		{Row: 1, Column: 4}: {Type: Queen, Color: White},
		{Row: 1, Column: 5}: {Type: King, Color: White},
		{Row: 2, Column: 7}: {Type: Pawn, Color: White},
		{Row: 7, Column: 2}: {Type: Pawn, Color: Black},
		{Row: 8, Column: 4}: {Type: Queen, Color: Black},
		{Row: 8, Column: 5}: {Type: King, Color: Black},
	}
	board := StandardBoard()
	for pos, want := range checks {
		if diff := cmp.Diff(&want, board.PieceAt(pos)); diff != "" {
			t.Fatalf("piece at %s mismatch (-want +got):\n%s", pos, diff)
		}
	}
}

func TestSeedLoaderReadsFile(t *testing.T) {
	squares := StandardSquares()
	squares[12].Piece = nil
	squares[12].Valid = true
	data, err := json.Marshal(squares)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "squares.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	board, err := NewSeedLoader(path)()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	square, _ := board.Get(2, 5)
	if square.Piece != nil || square.Valid {
		t.Fatalf("expected empty, unflagged (2,5), got %+v", square)
	}
}

func TestSeedLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewSeedLoader(filepath.Join(dir, "missing.json"))(); err == nil {
		t.Fatalf("expected error for missing file")
	}
	short := filepath.Join(dir, "short.json")
	data, _ := json.Marshal(StandardSquares()[:10])
	if err := os.WriteFile(short, data, 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewSeedLoader(short)(); err == nil {
		t.Fatalf("expected error for a 10-square seed")
	}
}
