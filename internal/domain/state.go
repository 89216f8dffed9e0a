package domain

// Phase is the lifecycle stage of the table. Modeling it as a sum type keeps
// illegal flag combinations unrepresentable.
type Phase string

const (
	// PhaseLobby: seats are filling, no round dealt yet.
	PhaseLobby Phase = "lobby"
	// PhaseAwaitingFirstMove: hands are dealt, the opening tile is pending.
	PhaseAwaitingFirstMove Phase = "awaiting_first_move"
	// PhaseInPlay: the opening tile is down, normal placement rules apply.
	PhaseInPlay Phase = "in_play"
	// PhaseRoundOver: a round settled, waiting for all seats to ready up.
	PhaseRoundOver Phase = "round_over"
	// PhaseMatchOver: a team reached the target score; scores are frozen
	// for display until all seats ready up.
	PhaseMatchOver Phase = "match_over"
)

// DefaultTargetScore is the match-winning score when none is configured.
const DefaultTargetScore = 50

// LastPlay marks the most recent placement for client highlighting.
type LastPlay struct {
	Seat int  `json:"seat"`
	Tile Tile `json:"tile"`
	Side Side `json:"side"`
}

// Game aggregates the authoritative table state: board, hands, teams, turn
// order, scores and match lifecycle. It lives for as long as the table does;
// rounds reset the board and hands, matches reset the scores.
type Game struct {
	Phase       Phase
	Board       Board
	Hands       map[int][]Tile // seat (1..4) -> tiles
	Teams       Teams
	Seating     [4]int
	CurrentTurn int // seat whose move is pending; 0 outside a round

	FirstRoundOfMatch bool
	MatchNumber       int
	TargetScore       int

	Scores     map[TeamID]int
	Ready      map[int]bool
	LastWinner int // seat that won the previous round; 0 after a tie
	LastPlay   *LastPlay

	// MatchWins counts lifetime match wins per seat. It survives round and
	// match resets; only a full restart clears it.
	MatchWins map[int]int
}

// NewGame returns a fresh table in the lobby phase.
func NewGame(targetScore int) *Game {
	if targetScore <= 0 {
		targetScore = DefaultTargetScore
	}
	return &Game{
		Phase:             PhaseLobby,
		Hands:             make(map[int][]Tile),
		Scores:            map[TeamID]int{TeamA: 0, TeamB: 0},
		Ready:             make(map[int]bool),
		MatchWins:         make(map[int]int),
		TargetScore:       targetScore,
		FirstRoundOfMatch: true,
	}
}

// RoundActive reports whether tiles are currently live in hands, which is
// the window in which a disconnected seat may be reclaimed.
func (g *Game) RoundActive() bool {
	return g.Phase == PhaseAwaitingFirstMove || g.Phase == PhaseInPlay
}

// NextSeat returns the seat after the given one in the round's seating
// order.
func (g *Game) NextSeat(seat int) int {
	for i, s := range g.Seating {
		if s == seat {
			return g.Seating[(i+1)%len(g.Seating)]
		}
	}
	return g.Seating[0]
}

// AdvanceTurn rotates the pending move to the next seat.
func (g *Game) AdvanceTurn() {
	g.CurrentTurn = g.NextSeat(g.CurrentTurn)
}

// HolderOf returns the seat whose hand contains the tile, or 0.
func (g *Game) HolderOf(tile Tile) int {
	for seat, hand := range g.Hands {
		if ContainsTile(hand, tile) {
			return seat
		}
	}
	return 0
}

// TilesInPlay counts tiles across all hands and the board. While a round is
// active this is always 28.
func (g *Game) TilesInPlay() int {
	n := len(g.Board.Tiles)
	for _, hand := range g.Hands {
		n += len(hand)
	}
	return n
}
