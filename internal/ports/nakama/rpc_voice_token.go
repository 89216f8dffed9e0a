package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"domino/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// VoiceTokenRequest asks for a signed token to log into the voice backend
// or to join a table channel.
type VoiceTokenRequest struct {
	Action  string `json:"action"` // "login" or "join"
	Channel string `json:"channel,omitempty"`
}

type VoiceTokenResponse struct {
	Token string `json:"token"`
}

// rpcVoiceToken signs a voice-channel token for the calling user. The voice
// credentials come from the runtime environment.
func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", 16) // UNAUTHENTICATED
	}

	var req VoiceTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	svc := app.NewVoiceService(env["voice_secret"], env["voice_issuer"], env["voice_domain"])

	token, err := svc.GenerateToken(userID, req.Action, req.Channel)
	if err != nil {
		logger.Warn("rpcVoiceToken: Refused token for %s: %v", userID, err)
		return "", runtime.NewError(err.Error(), 3)
	}

	b, _ := json.Marshal(VoiceTokenResponse{Token: token})
	return string(b), nil
}
