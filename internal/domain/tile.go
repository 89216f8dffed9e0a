package domain

// Tile is a single domino: a pair of pip faces 0..6. A tile in a hand is
// unordered; once placed on the board its orientation is fixed, with Left
// facing the left end of the chain.
type Tile struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// DoubleSix opens the first round of every match.
var DoubleSix = Tile{Left: 6, Right: 6}

// IsDouble reports whether both faces carry the same pip count.
func (t Tile) IsDouble() bool {
	return t.Left == t.Right
}

// HasFace reports whether either face shows the given pip count.
func (t Tile) HasFace(face int) bool {
	return t.Left == face || t.Right == face
}

// Pips returns the tile's pip total.
func (t Tile) Pips() int {
	return t.Left + t.Right
}

// Flip returns the tile with its faces swapped.
func (t Tile) Flip() Tile {
	return Tile{Left: t.Right, Right: t.Left}
}

// Same reports face equality ignoring orientation.
func (t Tile) Same(o Tile) bool {
	return (t.Left == o.Left && t.Right == o.Right) || (t.Left == o.Right && t.Right == o.Left)
}

// NewTileSet returns the ordered 28-tile double-six set: every pair (i,j)
// with 0 <= i <= j <= 6.
func NewTileSet() []Tile {
	set := make([]Tile, 0, 28)
	for i := 0; i <= 6; i++ {
		for j := i; j <= 6; j++ {
			set = append(set, Tile{Left: i, Right: j})
		}
	}
	return set
}

// HandPips sums the pip totals across a hand.
func HandPips(hand []Tile) int {
	total := 0
	for _, t := range hand {
		total += t.Pips()
	}
	return total
}

// ContainsTile reports whether the hand holds the tile, ignoring orientation.
func ContainsTile(hand []Tile, tile Tile) bool {
	for _, t := range hand {
		if t.Same(tile) {
			return true
		}
	}
	return false
}

// RemoveTile removes one matching tile (ignoring orientation) from a hand
// and returns the updated hand.
func RemoveTile(hand []Tile, tile Tile) []Tile {
	out := make([]Tile, 0, len(hand))
	removed := false
	for _, t := range hand {
		if !removed && t.Same(tile) {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out
}
