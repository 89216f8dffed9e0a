package nakama

import (
	"encoding/json"

	"domino/internal/domain"
)

// Wire schemas for match messages. Every opcode has a fixed JSON shape;
// nothing here is an open bag of optional fields.

// PlaceTileRequest is the OpPlaceTile payload. Side is ignored on the
// round's opening move.
type PlaceTileRequest struct {
	Tile domain.Tile `json:"tile"`
	Side domain.Side `json:"side"`
}

// ChatMessageRequest is the OpChatMessage payload.
type ChatMessageRequest struct {
	Text string `json:"text"`
}

// VoiceMessageRequest carries an opaque audio payload relayed to the other
// seats.
type VoiceMessageRequest struct {
	Data json.RawMessage `json:"data"`
}

// SeatAssignedEvent is sent to a connection once it is bound to a seat.
type SeatAssignedEvent struct {
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
	Reclaimed   bool   `json:"reclaimed"`
}

// SeatSummary is the sanitized per-seat view: tile counts only, never the
// tiles themselves.
type SeatSummary struct {
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
	Connected   bool   `json:"connected"`
	TileCount   int    `json:"tile_count"`
	MatchWins   int    `json:"match_wins"`
	Ready       bool   `json:"ready"`
}

// StateSnapshotEvent is broadcast after every mutation.
type StateSnapshotEvent struct {
	Phase       string                `json:"phase"`
	MatchNumber int                   `json:"match_number"`
	Board       []domain.Tile         `json:"board"`
	LeftEnd     int                   `json:"left_end"`
	RightEnd    int                   `json:"right_end"`
	Spinner     *domain.Tile          `json:"spinner,omitempty"`
	Seats       [4]SeatSummary        `json:"seats"`
	Teams       domain.Teams          `json:"teams"`
	Seating     [4]int                `json:"seating"`
	CurrentTurn int                   `json:"current_turn"`
	Scores      map[domain.TeamID]int `json:"scores"`
	TargetScore int                   `json:"target_score"`
	FirstRound  bool                  `json:"first_round"`
	LastWinner  int                   `json:"last_winner"`
	LastPlay    *domain.LastPlay      `json:"last_play,omitempty"`
}

// HandUpdateEvent delivers a full hand to its owning seat only.
type HandUpdateEvent struct {
	Seat  int           `json:"seat"`
	Tiles []domain.Tile `json:"tiles"`
}

// MoveAcceptedEvent echoes the normalized, oriented tile to the requester.
type MoveAcceptedEvent struct {
	Seat int         `json:"seat"`
	Tile domain.Tile `json:"tile"`
	Side domain.Side `json:"side"`
}

// MoveRejectedEvent tells the requester why a command was refused.
type MoveRejectedEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoundStartedEvent struct {
	MatchNumber int          `json:"match_number"`
	Teams       domain.Teams `json:"teams"`
	Seating     [4]int       `json:"seating"`
	OpeningSeat int          `json:"opening_seat"`
	FirstRound  bool         `json:"first_round"`
}

type TilePlacedEvent struct {
	Seat      int         `json:"seat"`
	Tile      domain.Tile `json:"tile"`
	Side      domain.Side `json:"side"`
	NextTurn  int         `json:"next_turn"`
	TilesLeft int         `json:"tiles_left"`
}

type TurnPassedEvent struct {
	Seat     int `json:"seat"`
	NextTurn int `json:"next_turn"`
}

type HandWonEvent struct {
	Seat   int                   `json:"seat"`
	Team   domain.TeamID         `json:"team"`
	Points int                   `json:"points"`
	Scores map[domain.TeamID]int `json:"scores"`
}

type RoundBlockedEvent struct {
	Outcome    domain.Outcome        `json:"outcome"`
	WinnerTeam domain.TeamID         `json:"winner_team,omitempty"`
	WinnerSeat int                   `json:"winner_seat,omitempty"`
	Points     int                   `json:"points"`
	TeamPips   map[domain.TeamID]int `json:"team_pips"`
	Scores     map[domain.TeamID]int `json:"scores"`
}

type MatchOverEvent struct {
	Team      domain.TeamID         `json:"team"`
	Scores    map[domain.TeamID]int `json:"scores"`
	MatchWins map[int]int           `json:"match_wins"`
}

type GameRestartedEvent struct {
	DisplayName string `json:"display_name"`
}

type ChatRelayEvent struct {
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
}

type VoiceRelayEvent struct {
	Seat int             `json:"seat"`
	Data json.RawMessage `json:"data"`
}

// Label is the advertised match label used by quick-match queries.
type Label struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}
