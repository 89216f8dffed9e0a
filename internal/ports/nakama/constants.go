package nakama

const (
	// RpcQuickMatch is the RPC id clients call to find or create a table
	// with open seats.
	RpcQuickMatch = "quick_match"

	// RpcVoiceToken is the RPC id clients call for a table voice-channel
	// token.
	RpcVoiceToken = "voice_token"

	// MatchNameDomino is the authoritative match handler name registered
	// with Nakama.
	MatchNameDomino = "domino_match"

	// MatchLabelKeyOpenSeats is the label key matchmaking queries filter on.
	MatchLabelKeyOpenSeats = "open"
)

// Op codes for client commands and server events. Payloads are JSON; the
// schemas live in messages.go.
const (
	// Client -> Server
	OpPlaceTile    int64 = 1
	OpPassTurn     int64 = 2
	OpReadyForNext int64 = 3
	OpRestart      int64 = 4
	OpChatMessage  int64 = 5
	OpVoiceMessage int64 = 6

	// Server -> Client events
	OpSeatAssigned  int64 = 101
	OpStateSnapshot int64 = 102
	OpHandUpdate    int64 = 103 // sent privately
	OpMoveAccepted  int64 = 104 // requester only
	OpMoveRejected  int64 = 105 // requester only
	OpRoundStarted  int64 = 106
	OpTilePlaced    int64 = 107
	OpTurnPassed    int64 = 108
	OpHandWon       int64 = 109
	OpRoundBlocked  int64 = 110
	OpMatchOver     int64 = 111
	OpGameRestarted int64 = 112
	OpChatRelay     int64 = 113
	OpVoiceRelay    int64 = 114
)
