package ports

import "context"

// AccountPort updates account profiles on the platform. Display names are
// the reconnection identity for seats, so every account must end up with
// one.
type AccountPort interface {
	// UpdateProfile applies username/displayName to the given account.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
