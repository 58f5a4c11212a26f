package main

type CheckResult struct {
	Checked bool
	Color   Color
}

var NoCheck = CheckResult{}

func CheckBy(color Color) CheckResult {
	return CheckResult{Checked: true, Color: color}
}

// DetectCheck reports the king of the other color standing on a square
// threatened from attacker.
func DetectCheck(board Board, attacker Pos) CheckResult {
	piece := board.PieceAt(attacker)
	if piece == nil {
		return NoCheck
	}
	threatened := make(map[Pos]struct{}, 16)
	for _, pos := range Threats(board, attacker) {
		threatened[pos] = struct{}{}
	}
	for _, square := range board.squares {
		pos := square.Pos()
		if pos == attacker {
			continue
		}
		if _, ok := threatened[pos]; !ok {
			continue
		}
		if square.Piece.Is(King, piece.Color.Opponent()) {
			return CheckBy(square.Piece.Color)
		}
	}
	return NoCheck
}

func ThreatBoard(board Board, origin Pos) Board {
	out := board.Clone()
	if board.PieceAt(origin) == nil {
		out.ClearValid()
		return out
	}
	out.MarkValid(append(Threats(board, origin), origin))
	return out
}
