package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"

	"domino/internal/app"
	"domino/internal/bot"
	"domino/internal/config"
	"domino/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/spf13/cast"
)

// seatState binds a seat number to a user. DisplayName is the reclaim key:
// a user who reconnects under the same name while a round is live takes the
// seat and hand back.
type seatState struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Connected   bool   `json:"connected"`
}

func (s seatState) occupied() bool { return s.UserID != "" }

// MatchState holds the authoritative runtime state for the Nakama match
// handler. The MatchLoop goroutine is the only writer, so no locking is
// needed anywhere below it.
type MatchState struct {
	Seats     [4]seatState                `json:"seats"` // index seat-1
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"`
	App       *app.Service                `json:"-"`
	Game      *domain.Game                `json:"-"`

	ChatMaxLen int `json:"chat_max_len"`

	BotsEnabled      bool               `json:"bots_enabled"`
	BotMinDelay      int                `json:"bot_min_delay"`
	BotMaxDelay      int                `json:"bot_max_delay"`
	BotAutoFillDelay int                `json:"bot_auto_fill_delay"`
	BotWaitUntil     int64              `json:"bot_wait_until"`
	ShortHandedSince int64              `json:"short_handed_since"`
	Bots             map[int]*bot.Agent `json:"-"` // seat -> agent
}

func (ms *MatchState) seatOf(userID string) int {
	for i, s := range ms.Seats {
		if s.UserID == userID {
			return i + 1
		}
	}
	return 0
}

func (ms *MatchState) seatByName(displayName string) int {
	for i, s := range ms.Seats {
		if s.occupied() && s.DisplayName == displayName {
			return i + 1
		}
	}
	return 0
}

func (ms *MatchState) freeSeat() int {
	for i, s := range ms.Seats {
		if !s.occupied() {
			return i + 1
		}
	}
	return 0
}

func (ms *MatchState) openSeatCount() int {
	n := 0
	for _, s := range ms.Seats {
		if !s.occupied() {
			n++
		}
	}
	return n
}

func (ms *MatchState) humanCount() int {
	n := 0
	for _, s := range ms.Seats {
		if s.occupied() && !bot.IsBot(s.UserID) {
			n++
		}
	}
	return n
}

// connectedSeats is the view the app service sees: bot seats always count
// as connected.
func (ms *MatchState) connectedSeats() map[int]bool {
	out := make(map[int]bool, 4)
	for i, s := range ms.Seats {
		if s.occupied() && (s.Connected || bot.IsBot(s.UserID)) {
			out[i+1] = true
		}
	}
	return out
}

// releaseDisconnectedSeats frees human seats that dropped during a round
// once that round has settled. Identities are held only while the seat's
// hand is live and reclaimable; keeping them longer would wedge the table
// with seats nobody can take.
func (ms *MatchState) releaseDisconnectedSeats() {
	if ms.Game.RoundActive() {
		return
	}
	for i, s := range ms.Seats {
		if s.occupied() && !s.Connected && !bot.IsBot(s.UserID) {
			ms.Seats[i] = seatState{}
			delete(ms.Game.Ready, i+1)
		}
	}
}

func (ms *MatchState) displayNameOf(seat int) string {
	if seat < 1 || seat > 4 {
		return ""
	}
	return ms.Seats[seat-1].DisplayName
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing table.")

	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := config.GetGameConfig()

	state := &MatchState{
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(nil),
		ChatMaxLen:       cfg.ChatMaxLength,
		BotsEnabled:      cfg.BotsEnabled,
		BotMinDelay:      cfg.BotMinDelaySeconds,
		BotMaxDelay:      cfg.BotMaxDelaySeconds,
		BotAutoFillDelay: cfg.BotAutoFillDelaySeconds,
		Bots:             make(map[int]*bot.Agent),
	}

	targetScore := cfg.TargetScore
	if v, ok := params["target_score"]; ok {
		if n := cast.ToInt(v); n > 0 {
			targetScore = n
		}
	}
	if v, ok := params["bots_enabled"]; ok {
		state.BotsEnabled = cast.ToBool(v)
	}

	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["domino_bots_enabled"]; ok {
			state.BotsEnabled = val == "true"
		}
		if val, ok := env["domino_target_score"]; ok {
			if n := cast.ToInt(val); n > 0 {
				targetScore = n
			}
		}
	}

	state.Game = domain.NewGame(targetScore)

	labelBytes, err := json.Marshal(&Label{Open: 4, Game: "domino", Phase: string(domain.PhaseLobby)})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Returning user id always comes back to its own seat.
	if matchState.seatOf(presence.GetUserId()) != 0 {
		return state, true, ""
	}

	// A live round allows reclaim of a disconnected seat by display name.
	if seat := matchState.seatByName(presence.GetUsername()); seat != 0 {
		s := matchState.Seats[seat-1]
		if s.Connected {
			return state, false, "display name already seated"
		}
		if matchState.Game.RoundActive() {
			return state, true, ""
		}
		return state, false, "seat expired"
	}

	if matchState.freeSeat() != 0 {
		return state, true, ""
	}

	// A lobby bot may be displaced by a human.
	if matchState.Game.Phase == domain.PhaseLobby {
		for _, s := range matchState.Seats {
			if bot.IsBot(s.UserID) {
				return state, true, ""
			}
		}
	}

	return state, false, "table full"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		seat, reclaimed := mh.bindSeat(matchState, logger, p)
		if seat == 0 {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", p.GetUserId())
			continue
		}

		mh.sendTo(matchState, dispatcher, logger, seat, OpSeatAssigned, SeatAssignedEvent{
			Seat:        seat,
			DisplayName: matchState.displayNameOf(seat),
			Reclaimed:   reclaimed,
		})
		if reclaimed && matchState.Game.RoundActive() {
			mh.sendTo(matchState, dispatcher, logger, seat, OpHandUpdate, HandUpdateEvent{
				Seat:  seat,
				Tiles: matchState.Game.Hands[seat],
			})
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSnapshot(matchState, dispatcher, logger)

	// A full lobby deals immediately.
	if matchState.Game.Phase == domain.PhaseLobby {
		mh.tryStartRound(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// bindSeat places the presence into a seat: its previous seat, a name
// reclaim, a free seat, or a displaced lobby bot, in that order.
func (mh *matchHandler) bindSeat(state *MatchState, logger runtime.Logger, p runtime.Presence) (int, bool) {
	if seat := state.seatOf(p.GetUserId()); seat != 0 {
		state.Seats[seat-1].Connected = true
		return seat, false
	}

	if seat := state.seatByName(p.GetUsername()); seat != 0 {
		s := &state.Seats[seat-1]
		if !s.Connected && state.Game.RoundActive() {
			logger.Info("MatchJoin: %s reclaims seat %d.", p.GetUsername(), seat)
			s.UserID = p.GetUserId()
			s.Connected = true
			return seat, true
		}
		return 0, false
	}

	if seat := state.freeSeat(); seat != 0 {
		state.Seats[seat-1] = seatState{
			UserID:      p.GetUserId(),
			DisplayName: p.GetUsername(),
			Connected:   true,
		}
		return seat, false
	}

	if state.Game.Phase == domain.PhaseLobby {
		for i, s := range state.Seats {
			if bot.IsBot(s.UserID) {
				logger.Info("MatchJoin: Replacing bot %s with %s in seat %d.", s.UserID, p.GetUsername(), i+1)
				delete(state.Bots, i+1)
				state.Seats[i] = seatState{
					UserID:      p.GetUserId(),
					DisplayName: p.GetUsername(),
					Connected:   true,
				}
				return i + 1, false
			}
		}
	}
	return 0, false
}

// MatchLeave marks seats disconnected. A seat in a live round keeps its
// identity so the same display name can reclaim it; outside a round the
// seat is freed.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		seat := matchState.seatOf(p.GetUserId())
		if seat == 0 {
			continue
		}
		matchState.Seats[seat-1].Connected = false
		if !matchState.Game.RoundActive() {
			matchState.Seats[seat-1] = seatState{}
			delete(matchState.Game.Ready, seat)
		}
		logger.Debug("MatchLeave: Seat %d disconnected.", seat)
	}

	if matchState.humanCount() == 0 {
		logger.Info("MatchLeave: Terminating table with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSnapshot(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		mh.dispatchMessage(ctx, matchState, dispatcher, logger, msg)
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// dispatchMessage routes one client message. A panic in a handler is
// confined to that message so one bad command cannot take the table down.
func (mh *matchHandler) dispatchMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("MatchLoop: panic handling opcode %d from %s: %v", msg.GetOpCode(), msg.GetUserId(), r)
		}
	}()

	seat := state.seatOf(msg.GetUserId())
	if seat == 0 {
		logger.Warn("MatchLoop: Message from unseated user %s.", msg.GetUserId())
		return
	}

	switch msg.GetOpCode() {
	case OpPlaceTile:
		mh.handlePlaceTile(ctx, state, dispatcher, logger, seat, msg)
	case OpPassTurn:
		mh.handlePassTurn(ctx, state, dispatcher, logger, seat)
	case OpReadyForNext:
		mh.handleReadyForNext(ctx, state, dispatcher, logger, seat)
	case OpRestart:
		mh.handleRestart(ctx, state, dispatcher, logger, seat)
	case OpChatMessage:
		mh.handleChatMessage(state, dispatcher, logger, seat, msg)
	case OpVoiceMessage:
		mh.handleVoiceMessage(state, dispatcher, logger, seat, msg)
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
	}
}

func (mh *matchHandler) handlePlaceTile(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int, msg runtime.MatchData) {
	var req PlaceTileRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handlePlaceTile: Invalid payload from seat %d: %v", seat, err)
		mh.rejectMove(state, dispatcher, logger, seat, "bad_payload", "malformed place_tile payload")
		return
	}

	events, err := state.App.PlaceTile(state.Game, seat, req.Tile, req.Side, state.connectedSeats())
	if err != nil {
		logger.Debug("handlePlaceTile: Seat %d rejected: %v", seat, err)
		mh.rejectMove(state, dispatcher, logger, seat, reasonCode(err), err.Error())
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	mh.afterMutation(state, dispatcher, logger)
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int) {
	events, err := state.App.PassTurn(state.Game, seat, state.connectedSeats())
	if err != nil {
		logger.Debug("handlePassTurn: Seat %d rejected: %v", seat, err)
		mh.rejectMove(state, dispatcher, logger, seat, reasonCode(err), err.Error())
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	mh.afterMutation(state, dispatcher, logger)
}

func (mh *matchHandler) handleReadyForNext(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int) {
	events, err := state.App.ReadyForNext(state.Game, seat, state.connectedSeats())
	if err != nil {
		logger.Debug("handleReadyForNext: Seat %d rejected: %v", seat, err)
		mh.rejectMove(state, dispatcher, logger, seat, reasonCode(err), err.Error())
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	mh.afterMutation(state, dispatcher, logger)
}

func (mh *matchHandler) handleRestart(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int) {
	events, err := state.App.Restart(state.Game, seat, state.connectedSeats())
	if err != nil {
		logger.Debug("handleRestart: Seat %d rejected: %v", seat, err)
		mh.rejectMove(state, dispatcher, logger, seat, reasonCode(err), err.Error())
		return
	}
	logger.Info("handleRestart: Seat %d reset the table.", seat)
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	mh.afterMutation(state, dispatcher, logger)
}

func (mh *matchHandler) handleChatMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int, msg runtime.MatchData) {
	var req ChatMessageRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleChatMessage: Invalid payload from seat %d: %v", seat, err)
		return
	}
	text := req.Text
	if runes := []rune(text); len(runes) > state.ChatMaxLen {
		text = string(runes[:state.ChatMaxLen])
	}
	if text == "" {
		return
	}
	mh.broadcast(state, dispatcher, logger, OpChatRelay, ChatRelayEvent{
		Seat:        seat,
		DisplayName: state.displayNameOf(seat),
		Text:        text,
	})
}

// handleVoiceMessage relays the opaque audio blob to everyone but the
// speaker.
func (mh *matchHandler) handleVoiceMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int, msg runtime.MatchData) {
	var req VoiceMessageRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleVoiceMessage: Invalid payload from seat %d: %v", seat, err)
		return
	}

	data, err := json.Marshal(VoiceRelayEvent{Seat: seat, Data: req.Data})
	if err != nil {
		logger.Error("handleVoiceMessage: Failed to marshal relay: %v", err)
		return
	}

	var recipients []runtime.Presence
	for i, s := range state.Seats {
		if i+1 == seat || !s.Connected {
			continue
		}
		if p, ok := state.Presences[s.UserID]; ok {
			recipients = append(recipients, p)
		}
	}
	if len(recipients) == 0 {
		return
	}
	dispatcher.BroadcastMessage(OpVoiceRelay, data, recipients, nil, true)
}

// tryStartRound deals when four seats are connected. ErrSeatsNotFilled is
// the normal case while the lobby fills.
func (mh *matchHandler) tryStartRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	events, err := state.App.StartRound(state.Game, state.connectedSeats())
	if err != nil {
		if !errors.Is(err, app.ErrSeatsNotFilled) && !errors.Is(err, app.ErrRoundInProgress) {
			logger.Error("tryStartRound: %v", err)
		}
		return
	}
	logger.Info("tryStartRound: Dealt match %d, opening seat %d.", state.Game.MatchNumber, state.Game.CurrentTurn)
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	mh.afterMutation(state, dispatcher, logger)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// Auto-fill a short-handed lobby after a grace period. Bots never take
	// over a seat mid-round.
	if state.Game.Phase == domain.PhaseLobby {
		humans := state.humanCount()
		if humans >= 1 && state.openSeatCount() > 0 {
			if state.ShortHandedSince == 0 {
				state.ShortHandedSince = state.Tick
			}
			if state.Tick-state.ShortHandedSince >= int64(state.BotAutoFillDelay) {
				mh.fillWithBots(state, dispatcher, logger)
				state.ShortHandedSince = 0
				mh.tryStartRound(ctx, state, dispatcher, logger)
			}
		} else {
			state.ShortHandedSince = 0
		}
	}

	// Bot acknowledgements during settlement.
	if state.Game.Phase == domain.PhaseRoundOver || state.Game.Phase == domain.PhaseMatchOver {
		for seat := range state.Bots {
			if !state.Game.Ready[seat] {
				events, err := state.App.ReadyForNext(state.Game, seat, state.connectedSeats())
				if err != nil {
					logger.Error("processBots: Bot ready failed for seat %d: %v", seat, err)
					continue
				}
				if len(events) > 0 {
					// The last acknowledgement redealt; the table is live again.
					mh.broadcastEvents(ctx, state, dispatcher, logger, events)
					mh.afterMutation(state, dispatcher, logger)
					break
				}
			}
		}
		return
	}

	if !state.Game.RoundActive() {
		state.BotWaitUntil = 0
		return
	}

	seat := state.Game.CurrentTurn
	agent, isBot := state.Bots[seat]
	if !isBot {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	move, err := agent.ChooseMove(state.Game)
	if err != nil {
		logger.Error("processBots: Bot in seat %d failed to choose a move: %v", seat, err)
		return
	}

	var events []app.Event
	if move.Pass {
		events, err = state.App.PassTurn(state.Game, seat, state.connectedSeats())
	} else {
		events, err = state.App.PlaceTile(state.Game, seat, move.Tile, move.Side, state.connectedSeats())
	}
	if err != nil {
		logger.Error("processBots: Bot move from seat %d rejected: %v", seat, err)
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	mh.afterMutation(state, dispatcher, logger)
}

func (mh *matchHandler) fillWithBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for i := range state.Seats {
		if state.Seats[i].occupied() {
			continue
		}
		identity := bot.IdentityForSeat(i + 1)
		agent, err := bot.NewAgent(identity.UserID, i+1)
		if err != nil {
			logger.Error("fillWithBots: %v", err)
			continue
		}
		state.Seats[i] = seatState{
			UserID:      identity.UserID,
			DisplayName: identity.DisplayName,
			Connected:   false,
		}
		state.Bots[i+1] = agent
		logger.Info("fillWithBots: Added bot %s to seat %d.", identity.DisplayName, i+1)
	}
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastSnapshot(state, dispatcher, logger)
}

// afterMutation runs after any accepted command: seats whose reclaim window
// closed with the round are freed, then the label and a sanitized snapshot
// go out.
func (mh *matchHandler) afterMutation(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	state.releaseDisconnectedSeats()
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastSnapshot(state, dispatcher, logger)
}

// broadcastEvents converts app events to wire messages. Targeted events
// resolve their seat's presence; hands addressed to bots or absent seats
// are dropped, never broadcast.
func (mh *matchHandler) broadcastEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, payload := mh.wireEvent(state, ev)
		if payload == nil {
			logger.Warn("broadcastEvents: Unknown event kind: %v", ev.Kind)
			continue
		}

		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error("broadcastEvents: Failed to marshal %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if ev.ToSeat != 0 {
			userID := state.Seats[ev.ToSeat-1].UserID
			p, connected := state.Presences[userID]
			if !connected {
				continue
			}
			recipients = []runtime.Presence{p}
		}
		dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
	}
}

func (mh *matchHandler) wireEvent(state *MatchState, ev app.Event) (int64, any) {
	switch ev.Kind {
	case app.EventRoundStarted:
		p := ev.Payload.(app.RoundStartedPayload)
		return OpRoundStarted, RoundStartedEvent{
			MatchNumber: p.MatchNumber,
			Teams:       p.Teams,
			Seating:     p.Seating,
			OpeningSeat: p.OpeningSeat,
			FirstRound:  p.FirstRound,
		}
	case app.EventHandDealt:
		p := ev.Payload.(app.HandDealtPayload)
		return OpHandUpdate, HandUpdateEvent{Seat: p.Seat, Tiles: p.Hand}
	case app.EventMoveAccepted:
		p := ev.Payload.(app.MoveAcceptedPayload)
		return OpMoveAccepted, MoveAcceptedEvent{Seat: p.Seat, Tile: p.Tile, Side: p.Side}
	case app.EventTilePlaced:
		p := ev.Payload.(app.TilePlacedPayload)
		return OpTilePlaced, TilePlacedEvent{
			Seat:      p.Seat,
			Tile:      p.Tile,
			Side:      p.Side,
			NextTurn:  p.NextTurn,
			TilesLeft: p.TilesLeft,
		}
	case app.EventTurnPassed:
		p := ev.Payload.(app.TurnPassedPayload)
		return OpTurnPassed, TurnPassedEvent{Seat: p.Seat, NextTurn: p.NextTurn}
	case app.EventHandWon:
		p := ev.Payload.(app.HandWonPayload)
		return OpHandWon, HandWonEvent{Seat: p.Seat, Team: p.Team, Points: p.Points, Scores: p.Scores}
	case app.EventRoundBlocked:
		p := ev.Payload.(app.RoundBlockedPayload)
		return OpRoundBlocked, RoundBlockedEvent{
			Outcome:    p.Outcome,
			WinnerTeam: p.WinnerTeam,
			WinnerSeat: p.WinnerSeat,
			Points:     p.Points,
			TeamPips:   p.TeamPips,
			Scores:     p.Scores,
		}
	case app.EventMatchOver:
		p := ev.Payload.(app.MatchOverPayload)
		return OpMatchOver, MatchOverEvent{Team: p.Team, Scores: p.Scores, MatchWins: p.MatchWins}
	case app.EventGameRestarted:
		p := ev.Payload.(app.GameRestartedPayload)
		return OpGameRestarted, GameRestartedEvent{DisplayName: state.displayNameOf(p.Seat)}
	default:
		return 0, nil
	}
}

func (mh *matchHandler) rejectMove(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int, code, message string) {
	mh.sendTo(state, dispatcher, logger, seat, OpMoveRejected, MoveRejectedEvent{Code: code, Message: message})
}

func (mh *matchHandler) sendTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int, opCode int64, payload any) {
	userID := state.Seats[seat-1].UserID
	p, ok := state.Presences[userID]
	if !ok {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("sendTo: Failed to marshal opcode %d: %v", opCode, err)
		return
	}
	dispatcher.BroadcastMessage(opCode, data, []runtime.Presence{p}, nil, true)
}

func (mh *matchHandler) broadcast(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("broadcast: Failed to marshal opcode %d: %v", opCode, err)
		return
	}
	dispatcher.BroadcastMessage(opCode, data, nil, nil, true)
}

// broadcastSnapshot pushes the sanitized public view: tile counts for every
// seat, full board, never another seat's tiles.
func (mh *matchHandler) broadcastSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	g := state.Game

	snapshot := StateSnapshotEvent{
		Phase:       string(g.Phase),
		MatchNumber: g.MatchNumber,
		Board:       g.Board.Snapshot(),
		Seats:       [4]SeatSummary{},
		Teams:       g.Teams,
		Seating:     g.Seating,
		CurrentTurn: g.CurrentTurn,
		Scores:      g.Scores,
		TargetScore: g.TargetScore,
		FirstRound:  g.FirstRoundOfMatch,
		LastWinner:  g.LastWinner,
		LastPlay:    g.LastPlay,
	}
	if !g.Board.Empty() {
		snapshot.LeftEnd = g.Board.LeftEnd()
		snapshot.RightEnd = g.Board.RightEnd()
		spinner := g.Board.Spinner
		snapshot.Spinner = &spinner
	}
	for i, s := range state.Seats {
		snapshot.Seats[i] = SeatSummary{
			Seat:        i + 1,
			DisplayName: s.DisplayName,
			Connected:   s.Connected || bot.IsBot(s.UserID),
			TileCount:   len(g.Hands[i+1]),
			MatchWins:   g.MatchWins[i+1],
			Ready:       g.Ready[i+1],
		}
	}

	mh.broadcast(state, dispatcher, logger, OpStateSnapshot, snapshot)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(&Label{
		Open:  state.openSeatCount(),
		Game:  "domino",
		Phase: string(state.Game.Phase),
	})
	if err != nil {
		logger.Error("updateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

// reasonCode maps app and domain errors to stable wire codes clients can
// switch on.
func reasonCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, domain.ErrTileNotInHand):
		return "tile_not_in_hand"
	case errors.Is(err, domain.ErrMustOpenDouble):
		return "must_open_double_six"
	case errors.Is(err, domain.ErrFaceMismatch):
		return "no_matching_end"
	case errors.Is(err, domain.ErrUnknownSide):
		return "unknown_side"
	case errors.Is(err, domain.ErrHaveLegalMove):
		return "have_legal_move"
	case errors.Is(err, domain.ErrRoundNotActive):
		return "round_not_active"
	case errors.Is(err, app.ErrNoSettlementPending):
		return "no_settlement_pending"
	case errors.Is(err, app.ErrRoundInProgress):
		return "round_in_progress"
	case errors.Is(err, app.ErrSeatsNotFilled):
		return "seats_not_filled"
	default:
		return "rejected"
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Table closed for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
