package bot

import "strings"

const botIDPrefix = "bot-"

// Identity is a canned bot profile used to fill an empty seat.
type Identity struct {
	UserID      string
	DisplayName string
}

var identities = []Identity{
	{UserID: "bot-ferna", DisplayName: "Ferna"},
	{UserID: "bot-rolo", DisplayName: "Rolo"},
	{UserID: "bot-mima", DisplayName: "Mima"},
	{UserID: "bot-tato", DisplayName: "Tato"},
}

// IsBot reports whether the user id belongs to a bot seat.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, botIDPrefix)
}

// IdentityForSeat returns a stable bot identity for the seat (1..4).
func IdentityForSeat(seat int) Identity {
	return identities[(seat-1+len(identities))%len(identities)]
}

// DisplayName resolves a bot user id to its display name, or "".
func DisplayName(userID string) string {
	for _, id := range identities {
		if id.UserID == userID {
			return id.DisplayName
		}
	}
	return ""
}
