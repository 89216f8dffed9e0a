package domain

import "errors"

var (
	ErrRoundNotActive = errors.New("no round in progress")
	ErrNotYourTurn    = errors.New("not this seat's turn")
	ErrTileNotInHand  = errors.New("tile not in hand")
	ErrMustOpenDouble = errors.New("first round must open with the double six")
	ErrHaveLegalMove  = errors.New("cannot pass while a legal move exists")
)

// CanPlace checks whether the seat may place the tile on the given side in
// the current phase. It never mutates state; side is ignored while the board
// is empty.
func CanPlace(g *Game, seat int, tile Tile, side Side) error {
	if !g.RoundActive() {
		return ErrRoundNotActive
	}
	if seat != g.CurrentTurn {
		return ErrNotYourTurn
	}
	if !ContainsTile(g.Hands[seat], tile) {
		return ErrTileNotInHand
	}
	if g.Phase == PhaseAwaitingFirstMove {
		// Opening move: any tile on an empty board, except the very first
		// round of a match which must open with the double six.
		if g.FirstRoundOfMatch && !tile.Same(DoubleSix) {
			return ErrMustOpenDouble
		}
		return nil
	}
	if side != SideLeft && side != SideRight {
		return ErrUnknownSide
	}
	end := g.Board.LeftEnd()
	if side == SideRight {
		end = g.Board.RightEnd()
	}
	if !tile.HasFace(end) {
		return ErrFaceMismatch
	}
	return nil
}

// CanPass checks whether the seat may pass. Passing is legal only for the
// seat in turn and only when it holds no playable tile.
func CanPass(g *Game, seat int) error {
	if !g.RoundActive() {
		return ErrRoundNotActive
	}
	if seat != g.CurrentTurn {
		return ErrNotYourTurn
	}
	if HasLegalMove(g, seat) {
		return ErrHaveLegalMove
	}
	return nil
}

// HasLegalMove reports whether the seat holds at least one playable tile in
// the current phase.
func HasLegalMove(g *Game, seat int) bool {
	switch g.Phase {
	case PhaseAwaitingFirstMove:
		if g.FirstRoundOfMatch {
			return ContainsTile(g.Hands[seat], DoubleSix)
		}
		return true
	case PhaseInPlay:
		left, right := g.Board.LeftEnd(), g.Board.RightEnd()
		for _, t := range g.Hands[seat] {
			if t.HasFace(left) || t.HasFace(right) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// AnyLegalMove reports whether any connected seat can still play. A false
// result on an active round means the board is blocked; tiles held by
// disconnected seats cannot keep a round open.
func AnyLegalMove(g *Game, connected map[int]bool) bool {
	for seat := 1; seat <= 4; seat++ {
		if connected[seat] && HasLegalMove(g, seat) {
			return true
		}
	}
	return false
}
