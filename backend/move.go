package main

type MoveKind int

const (
	SimpleMove MoveKind = iota + 1
	CastleMove
	EnPassantMove
	PromotionMove
)

func (k MoveKind) String() string {
	switch k {
	case SimpleMove:
		return "movePiece"
	case CastleMove:
		return "castle"
	case EnPassantMove:
		return "enPassant"
	case PromotionMove:
		return "pawnPromotion"
	default:
		return "unknown"
	}
}

// Move is a proposed mutation. For PromotionMove, Target is the square of
// the pawn being replaced and Promotion the new piece type.
type Move struct {
	Kind      MoveKind
	Base      Pos
	Target    Pos
	Color     Color
	Promotion PieceType
	// Promote marks a simple move whose pawn will be promoted by a
	// follow-up PromotionMove.
	Promote bool
	InCheck bool
}

type LastMove struct {
	MovedFrom  Pos   `json:"movedFrom"`
	MovedTo    Pos   `json:"movedTo"`
	PieceMoved Piece `json:"pieceMoved"`
}

type appliedMove struct {
	last    LastMove
	taken   *Piece
	touched []Pos
}

// ApplyMove checks the preconditions of move and mutates board in place.
// Nothing is written when an error is returned.
func ApplyMove(board *Board, move Move) (appliedMove, error) {
	if !move.Target.InBounds() {
		return appliedMove{}, invalidMove(move.Kind, "target %s: %v", move.Target, ErrOutOfRange)
	}
	if move.Kind != PromotionMove && !move.Base.InBounds() {
		return appliedMove{}, invalidMove(move.Kind, "base %s: %v", move.Base, ErrOutOfRange)
	}
	switch move.Kind {
	case SimpleMove:
		return applySimple(board, move)
	case CastleMove:
		return applyCastle(board, move)
	case EnPassantMove:
		return applyEnPassant(board, move)
	case PromotionMove:
		return applyPromotion(board, move)
	default:
		return appliedMove{}, invalidMove(move.Kind, "unknown move kind")
	}
}

func moverPiece(board *Board, move Move) (*Piece, error) {
	piece := board.PieceAt(move.Base)
	if piece == nil {
		return nil, invalidMove(move.Kind, "no piece at %s", move.Base)
	}
	if piece.Color != move.Color {
		return nil, invalidMove(move.Kind, "piece at %s is %s", move.Base, piece.Color)
	}
	return piece, nil
}

func applySimple(board *Board, move Move) (appliedMove, error) {
	piece, err := moverPiece(board, move)
	if err != nil {
		return appliedMove{}, err
	}
	if move.Base == move.Target {
		return appliedMove{}, invalidMove(move.Kind, "base and target are the same square")
	}
	if !Reaches(*board, move.Base, move.Target) {
		return appliedMove{}, invalidMove(move.Kind, "%s cannot reach %s", piece, move.Target)
	}
	if move.Promote && (piece.Type != Pawn || move.Target.Row != lastRank(piece.Color)) {
		return appliedMove{}, invalidMove(move.Kind, "%s cannot promote on %s", piece, move.Target)
	}
	taken := board.PieceAt(move.Target).Clone()
	last := LastMove{MovedFrom: move.Base, MovedTo: move.Target, PieceMoved: *piece}
	board.Set(move.Target, piece.Clone())
	board.Clear(move.Base)
	return appliedMove{last: last, taken: taken, touched: []Pos{move.Target}}, nil
}

func applyCastle(board *Board, move Move) (appliedMove, error) {
	king, err := moverPiece(board, move)
	if err != nil {
		return appliedMove{}, err
	}
	if king.Type != King || king.Moved {
		return appliedMove{}, invalidMove(move.Kind, "%s at %s cannot castle", king, move.Base)
	}
	if move.Target.Row != move.Base.Row || move.Target.Column == move.Base.Column {
		return appliedMove{}, invalidMove(move.Kind, "castle target %s not on the king's row", move.Target)
	}
	step := 1
	rookColumn := BoardSize
	if move.Target.Column < move.Base.Column {
		step = -1
		rookColumn = 1
	}
	rookPos := Pos{Row: move.Base.Row, Column: rookColumn}
	rook := board.PieceAt(rookPos)
	if !rook.Is(Rook, move.Color) || rook.Moved {
		return appliedMove{}, invalidMove(move.Kind, "no unmoved rook at %s", rookPos)
	}
	for c := move.Base.Column + step; c != rookColumn; c += step {
		if !board.IsEmpty(Pos{Row: move.Base.Row, Column: c}) {
			return appliedMove{}, invalidMove(move.Kind, "path between king and rook is blocked")
		}
	}
	kingTo := move.Base.Offset(0, 2*step)
	rookTo := move.Base.Offset(0, step)
	if !kingTo.InBounds() {
		return appliedMove{}, invalidMove(move.Kind, "castle target %s: %v", kingTo, ErrOutOfRange)
	}
	last := LastMove{MovedFrom: move.Base, MovedTo: kingTo, PieceMoved: *king}
	movedKing, movedRook := king.Clone(), rook.Clone()
	board.Clear(move.Base)
	board.Clear(rookPos)
	board.Set(kingTo, movedKing)
	board.Set(rookTo, movedRook)
	return appliedMove{last: last, touched: []Pos{kingTo, rookTo}}, nil
}

// applyEnPassant removes the pawn beside the origin on the target's column,
// whatever stands on the target square itself.
func applyEnPassant(board *Board, move Move) (appliedMove, error) {
	pawn, err := moverPiece(board, move)
	if err != nil {
		return appliedMove{}, err
	}
	if pawn.Type != Pawn {
		return appliedMove{}, invalidMove(move.Kind, "%s cannot capture en passant", pawn)
	}
	dc := move.Target.Column - move.Base.Column
	if move.Target.Row-move.Base.Row != pawn.Color.Forward() || (dc != 1 && dc != -1) {
		return appliedMove{}, invalidMove(move.Kind, "%s is not a forward diagonal of %s", move.Target, move.Base)
	}
	capturedPos := Pos{Row: move.Base.Row, Column: move.Target.Column}
	captured := board.PieceAt(capturedPos)
	if !captured.Is(Pawn, pawn.Color.Opponent()) {
		return appliedMove{}, invalidMove(move.Kind, "no pawn to capture at %s", capturedPos)
	}
	last := LastMove{MovedFrom: move.Base, MovedTo: move.Target, PieceMoved: *pawn}
	taken := captured.Clone()
	board.Set(move.Target, pawn.Clone())
	board.Clear(move.Base)
	board.Clear(capturedPos)
	return appliedMove{last: last, taken: taken, touched: []Pos{move.Target}}, nil
}

func applyPromotion(board *Board, move Move) (appliedMove, error) {
	pawn := board.PieceAt(move.Target)
	if !pawn.Is(Pawn, move.Color) {
		return appliedMove{}, invalidMove(move.Kind, "no %s pawn at %s", move.Color, move.Target)
	}
	if move.Target.Row != lastRank(move.Color) {
		return appliedMove{}, invalidMove(move.Kind, "pawn at %s is not on the last rank", move.Target)
	}
	if !move.Promotion.CanPromoteTo() {
		return appliedMove{}, invalidMove(move.Kind, "cannot promote to %q", move.Promotion.String())
	}
	promoted := &Piece{Type: move.Promotion, Color: move.Color, Moved: true}
	board.Set(move.Target, promoted)
	last := LastMove{MovedFrom: move.Target, MovedTo: move.Target, PieceMoved: *promoted}
	return appliedMove{last: last, touched: []Pos{move.Target}}, nil
}

func lastRank(color Color) int {
	if color == Black {
		return 1
	}
	return BoardSize
}

func (k MoveKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MoveKind) UnmarshalText(text []byte) error {
	for _, kind := range []MoveKind{SimpleMove, CastleMove, EnPassantMove, PromotionMove} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return invalidMove(0, "unknown move kind %q", string(text))
}
