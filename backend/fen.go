package main

import (
	"fmt"

	"github.com/notnil/chess"
)

var fenPieceTypes = map[PieceType]chess.PieceType{
	Pawn:   chess.Pawn,
	Knight: chess.Knight,
	Bishop: chess.Bishop,
	Rook:   chess.Rook,
	Queen:  chess.Queen,
	King:   chess.King,
}

// BoardFEN renders the piece placement field of a FEN record.
func BoardFEN(board Board) string {
	pieces := make(map[chess.Square]chess.Piece, 32)
	for _, square := range board.Occupied() {
		color := chess.White
		if square.Piece.Color == Black {
			color = chess.Black
		}
		sq := chess.NewSquare(chess.File(square.Column-1), chess.Rank(square.Row-1))
		pieces[sq] = chess.NewPiece(fenPieceTypes[square.Piece.Type], color)
	}
	return chess.NewBoard(pieces).String()
}

// PositionFEN is a full FEN record with turn as side to move. Castling and
// en passant fields are left empty since the session does not track them.
func PositionFEN(board Board, turn Color) string {
	side := "w"
	if turn == Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s - - 0 1", BoardFEN(board), side)
}
