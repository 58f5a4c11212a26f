package main

var (
	knightOffsets = [8][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingOffsets   = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookRays      = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays    = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenRays     = append(append([][2]int{}, rookRays...), bishopRays...)
)

// Threats returns the squares the piece on origin reaches from there: every
// square it could move to or capture on. Pawn diagonals only count when an
// opposite piece stands on them. Order follows the piece's direction table.
func Threats(board Board, origin Pos) []Pos {
	piece := board.PieceAt(origin)
	if piece == nil {
		return nil
	}
	switch piece.Type {
	case Pawn:
		return pawnThreats(board, origin, piece)
	case Knight:
		return stepThreats(board, origin, piece.Color, knightOffsets[:], false)
	case Bishop:
		return rayThreats(board, origin, piece.Color, bishopRays)
	case Rook:
		return rayThreats(board, origin, piece.Color, rookRays)
	case Queen:
		return rayThreats(board, origin, piece.Color, queenRays)
	case King:
		return stepThreats(board, origin, piece.Color, kingOffsets[:], true)
	default:
		return nil
	}
}

func Reaches(board Board, origin, target Pos) bool {
	for _, pos := range Threats(board, origin) {
		if pos == target {
			return true
		}
	}
	return false
}

func pawnThreats(board Board, origin Pos, pawn *Piece) []Pos {
	out := make([]Pos, 0, 4)
	forward := pawn.Color.Forward()
	steps := 1
	if !pawn.Moved {
		steps = 2
	}
	for i := 1; i <= steps; i++ {
		pos := origin.Offset(forward*i, 0)
		if !board.IsEmpty(pos) {
			break
		}
		out = append(out, pos)
	}
	for _, dc := range [2]int{-1, 1} {
		pos := origin.Offset(forward, dc)
		if target := board.PieceAt(pos); target != nil && target.Color != pawn.Color {
			out = append(out, pos)
		}
	}
	return out
}

// stepThreats covers the fixed-offset pieces. A king never counts the
// opposite king as threatened.
func stepThreats(board Board, origin Pos, color Color, offsets [][2]int, isKing bool) []Pos {
	out := make([]Pos, 0, len(offsets))
	for _, offset := range offsets {
		pos := origin.Offset(offset[0], offset[1])
		if !pos.InBounds() {
			continue
		}
		target := board.PieceAt(pos)
		switch {
		case target == nil:
			out = append(out, pos)
		case target.Color == color:
		case isKing && target.Type == King:
		default:
			out = append(out, pos)
		}
	}
	return out
}

func rayThreats(board Board, origin Pos, color Color, rays [][2]int) []Pos {
	out := make([]Pos, 0, 14)
	for _, ray := range rays {
		pos := origin.Offset(ray[0], ray[1])
		for pos.InBounds() {
			target := board.PieceAt(pos)
			if target == nil {
				out = append(out, pos)
				pos = pos.Offset(ray[0], ray[1])
				continue
			}
			if target.Color != color {
				out = append(out, pos)
			}
			break
		}
	}
	return out
}
