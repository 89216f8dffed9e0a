package app

import "domino/internal/domain"

// EventKind identifies emitted game events for transport dispatch.
type EventKind string

const (
	EventRoundStarted  EventKind = "round_started"
	EventHandDealt     EventKind = "hand_dealt"
	EventMoveAccepted  EventKind = "move_accepted"
	EventTilePlaced    EventKind = "tile_placed"
	EventTurnPassed    EventKind = "turn_passed"
	EventHandWon       EventKind = "hand_won"
	EventRoundBlocked  EventKind = "round_blocked"
	EventMatchOver     EventKind = "match_over"
	EventGameRestarted EventKind = "game_restarted"
)

// Event is a game event with an optional target seat. ToSeat 0 means
// broadcast to the whole table; hands are only ever delivered to their
// owning seat.
type Event struct {
	Kind    EventKind
	Payload any
	ToSeat  int
}

type RoundStartedPayload struct {
	MatchNumber int
	Teams       domain.Teams
	Seating     [4]int
	OpeningSeat int
	FirstRound  bool
}

type HandDealtPayload struct {
	Seat int
	Hand []domain.Tile
}

type MoveAcceptedPayload struct {
	Seat int
	Tile domain.Tile // oriented as it landed on the board
	Side domain.Side
}

type TilePlacedPayload struct {
	Seat      int
	Tile      domain.Tile
	Side      domain.Side
	NextTurn  int // 0 when the placement ended the round
	TilesLeft int
}

type TurnPassedPayload struct {
	Seat     int
	NextTurn int
}

type HandWonPayload struct {
	Seat   int
	Team   domain.TeamID
	Points int
	Scores map[domain.TeamID]int
}

type RoundBlockedPayload struct {
	Outcome    domain.Outcome
	WinnerTeam domain.TeamID
	WinnerSeat int
	Points     int
	TeamPips   map[domain.TeamID]int
	Scores     map[domain.TeamID]int
}

type MatchOverPayload struct {
	Team      domain.TeamID
	Scores    map[domain.TeamID]int
	MatchWins map[int]int
}

type GameRestartedPayload struct {
	Seat int
}
