package domain

import "errors"

var (
	ErrBoardNotEmpty = errors.New("board already has tiles")
	ErrBoardEmpty    = errors.New("board is empty")
	ErrFaceMismatch  = errors.New("tile does not match the target end")
	ErrUnknownSide   = errors.New("unknown board side")
)

// Side selects which open end of the board a tile attaches to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Board is the ordered chain of placed tiles. Tiles are stored oriented:
// index 0's Left face and the last index's Right face are the two open ends.
// The spinner is the first tile played in the round.
type Board struct {
	Tiles   []Tile `json:"tiles"`
	Spinner Tile   `json:"spinner"`
}

// Empty reports whether no tile has been placed this round.
func (b *Board) Empty() bool {
	return len(b.Tiles) == 0
}

// LeftEnd returns the open face on the left extremity. Only valid on a
// non-empty board.
func (b *Board) LeftEnd() int {
	return b.Tiles[0].Left
}

// RightEnd returns the open face on the right extremity.
func (b *Board) RightEnd() int {
	return b.Tiles[len(b.Tiles)-1].Right
}

// PlaceFirst puts the round's opening tile down and marks it as the spinner.
func (b *Board) PlaceFirst(tile Tile) error {
	if !b.Empty() {
		return ErrBoardNotEmpty
	}
	b.Tiles = append(b.Tiles, tile)
	b.Spinner = tile
	return nil
}

// Place attaches a tile to the given end, orienting it so the matching face
// touches the chain. Returns the tile as oriented on the board.
func (b *Board) Place(tile Tile, side Side) (Tile, error) {
	if b.Empty() {
		return Tile{}, ErrBoardEmpty
	}
	switch side {
	case SideLeft:
		end := b.LeftEnd()
		if !tile.HasFace(end) {
			return Tile{}, ErrFaceMismatch
		}
		if tile.Right != end {
			tile = tile.Flip()
		}
		b.Tiles = append([]Tile{tile}, b.Tiles...)
		return tile, nil
	case SideRight:
		end := b.RightEnd()
		if !tile.HasFace(end) {
			return Tile{}, ErrFaceMismatch
		}
		if tile.Left != end {
			tile = tile.Flip()
		}
		b.Tiles = append(b.Tiles, tile)
		return tile, nil
	default:
		return Tile{}, ErrUnknownSide
	}
}

// Snapshot returns a copy of the placed tiles in board order for rendering
// collaborators.
func (b *Board) Snapshot() []Tile {
	out := make([]Tile, len(b.Tiles))
	copy(out, b.Tiles)
	return out
}

// Reset clears the board for a new round.
func (b *Board) Reset() {
	b.Tiles = nil
	b.Spinner = Tile{}
}
