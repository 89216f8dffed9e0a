package app

import (
	"math/rand"
	"testing"

	"domino/internal/domain"
)

func allConnected() map[int]bool {
	return map[int]bool{1: true, 2: true, 3: true, 4: true}
}

func startedGame(t *testing.T, seed int64) (*Service, *domain.Game, []Event) {
	t.Helper()
	svc := NewService(rand.New(rand.NewSource(seed)))
	g := domain.NewGame(0)
	events, err := svc.StartRound(g, allConnected())
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}
	return svc, g, events
}

func TestStartRoundDealsDisjointHands(t *testing.T) {
	_, g, events := startedGame(t, 42)

	if g.Phase != domain.PhaseAwaitingFirstMove {
		t.Fatalf("phase = %s, want awaiting_first_move", g.Phase)
	}

	seen := make(map[domain.Tile]int)
	for seat := 1; seat <= 4; seat++ {
		if len(g.Hands[seat]) != 7 {
			t.Fatalf("seat %d hand size = %d, want 7", seat, len(g.Hands[seat]))
		}
		for _, tile := range g.Hands[seat] {
			canonical := tile
			if canonical.Left > canonical.Right {
				canonical = canonical.Flip()
			}
			seen[canonical]++
		}
	}
	if len(seen) != 28 {
		t.Fatalf("distinct tiles dealt = %d, want 28", len(seen))
	}
	for tile, count := range seen {
		if count != 1 {
			t.Fatalf("tile %v dealt %d times", tile, count)
		}
	}
	if g.TilesInPlay() != 28 {
		t.Fatalf("tiles in play = %d, want 28", g.TilesInPlay())
	}

	handEvents := 0
	for _, ev := range events {
		if ev.Kind == EventHandDealt {
			handEvents++
			payload := ev.Payload.(HandDealtPayload)
			if ev.ToSeat != payload.Seat {
				t.Fatalf("hand for seat %d targeted at seat %d", payload.Seat, ev.ToSeat)
			}
		}
	}
	if handEvents != 4 {
		t.Fatalf("hand events = %d, want 4", handEvents)
	}
}

func TestStartRoundRequiresFourSeats(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)))
	g := domain.NewGame(0)
	if _, err := svc.StartRound(g, map[int]bool{1: true, 2: true, 3: true}); err != ErrSeatsNotFilled {
		t.Fatalf("error = %v, want ErrSeatsNotFilled", err)
	}
}

// First match round: the opener is forced to the double-six holder and the
// double six itself is the only legal opening tile.
func TestFirstRoundOpeningForcedToDoubleSix(t *testing.T) {
	svc, g, _ := startedGame(t, 7)

	holder := g.HolderOf(domain.DoubleSix)
	if holder == 0 {
		t.Fatal("double six missing from deal")
	}
	if g.CurrentTurn != holder {
		t.Fatalf("opening turn = seat %d, want double-six holder %d", g.CurrentTurn, holder)
	}

	for _, tile := range g.Hands[holder] {
		if tile.Same(domain.DoubleSix) {
			continue
		}
		if _, err := svc.PlaceTile(g, holder, tile, domain.SideLeft, allConnected()); err != domain.ErrMustOpenDouble {
			t.Fatalf("opening with %v: error = %v, want ErrMustOpenDouble", tile, err)
		}
	}

	events, err := svc.PlaceTile(g, holder, domain.DoubleSix, domain.SideLeft, allConnected())
	if err != nil {
		t.Fatalf("double six open error: %v", err)
	}
	if !g.Board.Spinner.Same(domain.DoubleSix) {
		t.Fatalf("spinner = %v, want double six", g.Board.Spinner)
	}
	if g.Phase != domain.PhaseInPlay {
		t.Fatalf("phase = %s, want in_play", g.Phase)
	}
	if g.TilesInPlay() != 28 {
		t.Fatalf("tiles in play = %d, want 28", g.TilesInPlay())
	}

	var accepted, placed bool
	for _, ev := range events {
		switch ev.Kind {
		case EventMoveAccepted:
			accepted = true
			if ev.ToSeat != holder {
				t.Fatalf("move accepted targeted at seat %d, want %d", ev.ToSeat, holder)
			}
		case EventTilePlaced:
			placed = true
			payload := ev.Payload.(TilePlacedPayload)
			if payload.NextTurn != g.CurrentTurn {
				t.Fatalf("next turn = %d, want %d", payload.NextTurn, g.CurrentTurn)
			}
		}
	}
	if !accepted || !placed {
		t.Fatalf("expected move accepted and tile placed events, got %+v", events)
	}
}

func TestOutOfTurnPlacementDoesNotMutate(t *testing.T) {
	svc, g, _ := startedGame(t, 11)

	other := g.NextSeat(g.CurrentTurn)
	before := len(g.Hands[other])
	if _, err := svc.PlaceTile(g, other, g.Hands[other][0], domain.SideLeft, allConnected()); err != domain.ErrNotYourTurn {
		t.Fatalf("error = %v, want ErrNotYourTurn", err)
	}
	if len(g.Hands[other]) != before || !g.Board.Empty() {
		t.Fatal("rejected move must not mutate state")
	}
	if g.CurrentTurn == other {
		t.Fatal("rejected move must not consume the turn")
	}
}

// Seat 3 empties its hand; the opposing hands hold 23 pips, so seat 3's team
// scores exactly 23.
func TestWinSettlement(t *testing.T) {
	svc, g, _ := startedGame(t, 3)

	g.Phase = domain.PhaseInPlay
	g.Teams = domain.Pairing(0) // {1,2} vs {3,4}
	g.Seating = g.Teams.SeatingOrder()
	g.Board.Reset()
	if err := g.Board.PlaceFirst(domain.Tile{Left: 6, Right: 6}); err != nil {
		t.Fatalf("seed board: %v", err)
	}
	g.Hands = map[int][]domain.Tile{
		1: {{Left: 5, Right: 5}},                   // 10
		2: {{Left: 6, Right: 4}, {Left: 2, Right: 1}}, // 13
		3: {{Left: 6, Right: 1}},
		4: {{Left: 3, Right: 3}},
	}
	g.CurrentTurn = 3

	events, err := svc.PlaceTile(g, 3, domain.Tile{Left: 6, Right: 1}, domain.SideRight, allConnected())
	if err != nil {
		t.Fatalf("winning placement error: %v", err)
	}
	if g.Phase != domain.PhaseRoundOver {
		t.Fatalf("phase = %s, want round_over", g.Phase)
	}
	if g.Scores[domain.TeamB] != 23 {
		t.Fatalf("team B score = %d, want 23", g.Scores[domain.TeamB])
	}
	if g.LastWinner != 3 {
		t.Fatalf("last winner = %d, want 3", g.LastWinner)
	}

	var won *HandWonPayload
	for _, ev := range events {
		if ev.Kind == EventHandWon {
			payload := ev.Payload.(HandWonPayload)
			won = &payload
		}
	}
	if won == nil {
		t.Fatal("expected hand won event")
	}
	if won.Seat != 3 || won.Points != 23 {
		t.Fatalf("hand won = seat %d points %d, want seat 3 points 23", won.Seat, won.Points)
	}
}

// Nobody can move: team A holds 14 pips, team B holds 9, so team B takes 14
// and its lighter hand leads the next round.
func TestBlockedSettlementOnPass(t *testing.T) {
	svc, g, _ := startedGame(t, 5)

	g.Phase = domain.PhaseInPlay
	g.Teams = domain.Pairing(0)
	g.Seating = g.Teams.SeatingOrder()
	g.Board.Reset()
	if err := g.Board.PlaceFirst(domain.Tile{Left: 6, Right: 6}); err != nil {
		t.Fatalf("seed board: %v", err)
	}
	g.Hands = map[int][]domain.Tile{
		1: {{Left: 4, Right: 4}}, // team A: 14
		2: {{Left: 3, Right: 3}},
		3: {{Left: 1, Right: 1}}, // team B: 9
		4: {{Left: 3, Right: 4}},
	}
	g.CurrentTurn = 1

	events, err := svc.PassTurn(g, 1, allConnected())
	if err != nil {
		t.Fatalf("pass error: %v", err)
	}
	if g.Phase != domain.PhaseRoundOver {
		t.Fatalf("phase = %s, want round_over", g.Phase)
	}
	if g.Scores[domain.TeamB] != 14 {
		t.Fatalf("team B score = %d, want 14", g.Scores[domain.TeamB])
	}
	if g.LastWinner != 3 {
		t.Fatalf("next leader candidate = seat %d, want lowest-pip seat 3", g.LastWinner)
	}

	var blocked *RoundBlockedPayload
	for _, ev := range events {
		if ev.Kind == EventRoundBlocked {
			payload := ev.Payload.(RoundBlockedPayload)
			blocked = &payload
		}
	}
	if blocked == nil {
		t.Fatal("expected round blocked event")
	}
	if blocked.Outcome != domain.OutcomeBlocked || blocked.WinnerTeam != domain.TeamB {
		t.Fatalf("blocked payload = %+v", blocked)
	}
}

// The only matching tile sits in a disconnected hand: the round settles as
// blocked instead of stalling on a seat that cannot act.
func TestBlockedIgnoresDisconnectedHands(t *testing.T) {
	svc, g, _ := startedGame(t, 13)

	g.Phase = domain.PhaseInPlay
	g.Teams = domain.Pairing(0)
	g.Seating = g.Teams.SeatingOrder()
	g.Board.Reset()
	if err := g.Board.PlaceFirst(domain.Tile{Left: 6, Right: 6}); err != nil {
		t.Fatalf("seed board: %v", err)
	}
	g.Hands = map[int][]domain.Tile{
		1: {{Left: 4, Right: 4}}, // team A: 12
		2: {{Left: 2, Right: 2}},
		3: {{Left: 6, Right: 1}}, // team B: 14; only playable tile, seat offline
		4: {{Left: 3, Right: 4}},
	}
	g.CurrentTurn = 1
	connected := map[int]bool{1: true, 2: true, 3: false, 4: true}

	events, err := svc.PassTurn(g, 1, connected)
	if err != nil {
		t.Fatalf("pass error: %v", err)
	}
	if g.Phase != domain.PhaseRoundOver {
		t.Fatalf("phase = %s, want round_over", g.Phase)
	}
	if g.Scores[domain.TeamA] != 14 {
		t.Fatalf("team A score = %d, want 14", g.Scores[domain.TeamA])
	}
	if g.LastWinner != 2 {
		t.Fatalf("next leader = seat %d, want lowest-pip seat 2", g.LastWinner)
	}

	for _, ev := range events {
		if ev.Kind == EventRoundBlocked {
			payload := ev.Payload.(RoundBlockedPayload)
			if payload.Outcome != domain.OutcomeBlocked || payload.WinnerTeam != domain.TeamA {
				t.Fatalf("blocked payload = %+v", payload)
			}
			return
		}
	}
	t.Fatal("expected round blocked event")
}

// A block with equal team pips awards nothing and records an explicit tie.
func TestBlockedTieAwardsNothing(t *testing.T) {
	svc, g, _ := startedGame(t, 6)

	g.Phase = domain.PhaseInPlay
	g.Teams = domain.Pairing(0)
	g.Seating = g.Teams.SeatingOrder()
	g.Board.Reset()
	if err := g.Board.PlaceFirst(domain.Tile{Left: 6, Right: 6}); err != nil {
		t.Fatalf("seed board: %v", err)
	}
	g.Hands = map[int][]domain.Tile{
		1: {{Left: 2, Right: 3}},
		2: {{Left: 1, Right: 1}},
		3: {{Left: 3, Right: 3}},
		4: {{Left: 0, Right: 1}},
	}
	g.CurrentTurn = 1

	events, err := svc.PassTurn(g, 1, allConnected())
	if err != nil {
		t.Fatalf("pass error: %v", err)
	}
	if g.Scores[domain.TeamA] != 0 || g.Scores[domain.TeamB] != 0 {
		t.Fatalf("scores = %v, want all zero", g.Scores)
	}
	if g.LastWinner != 0 {
		t.Fatalf("last winner = %d, want 0 after a tie", g.LastWinner)
	}

	for _, ev := range events {
		if ev.Kind == EventRoundBlocked {
			payload := ev.Payload.(RoundBlockedPayload)
			if payload.Outcome != domain.OutcomeTied || payload.Points != 0 {
				t.Fatalf("tie payload = %+v", payload)
			}
			return
		}
	}
	t.Fatal("expected round blocked event")
}

func TestReadyForNextIsIdempotentAndRedeals(t *testing.T) {
	svc, g, _ := startedGame(t, 8)
	g.Phase = domain.PhaseRoundOver
	g.CurrentTurn = 0
	g.LastWinner = 3
	g.FirstRoundOfMatch = false

	for _, seat := range []int{1, 1, 2, 3} { // seat 1 twice on purpose
		events, err := svc.ReadyForNext(g, seat, allConnected())
		if err != nil {
			t.Fatalf("ready seat %d error: %v", seat, err)
		}
		if len(events) != 0 {
			t.Fatalf("seat %d readiness should not redeal yet", seat)
		}
	}

	events, err := svc.ReadyForNext(g, 4, allConnected())
	if err != nil {
		t.Fatalf("final ready error: %v", err)
	}
	if g.Phase != domain.PhaseAwaitingFirstMove {
		t.Fatalf("phase = %s, want awaiting_first_move", g.Phase)
	}
	if len(events) == 0 || events[0].Kind != EventRoundStarted {
		t.Fatalf("expected round started event, got %+v", events)
	}
	if g.CurrentTurn != 3 {
		t.Fatalf("opener = seat %d, want previous winner 3", g.CurrentTurn)
	}
	if len(g.Ready) != 0 {
		t.Fatalf("ready set should reset on redeal, got %v", g.Ready)
	}
}

func TestReadyForNextRejectedOutsideSettlement(t *testing.T) {
	svc, g, _ := startedGame(t, 9)
	if _, err := svc.ReadyForNext(g, 1, allConnected()); err != ErrNoSettlementPending {
		t.Fatalf("error = %v, want ErrNoSettlementPending", err)
	}
}

// Reaching the target score freezes the match until all four seats ready
// up, then resets scores and advances the team pairing cycle.
func TestMatchLifecycle(t *testing.T) {
	svc, g, _ := startedGame(t, 10)

	g.Phase = domain.PhaseInPlay
	g.Teams = domain.Pairing(0)
	g.Seating = g.Teams.SeatingOrder()
	g.Scores[domain.TeamA] = 45
	g.Board.Reset()
	if err := g.Board.PlaceFirst(domain.Tile{Left: 6, Right: 6}); err != nil {
		t.Fatalf("seed board: %v", err)
	}
	g.Hands = map[int][]domain.Tile{
		1: {{Left: 6, Right: 2}},
		2: {{Left: 1, Right: 1}},
		3: {{Left: 4, Right: 4}},
		4: {{Left: 5, Right: 0}},
	}
	g.CurrentTurn = 1

	events, err := svc.PlaceTile(g, 1, domain.Tile{Left: 6, Right: 2}, domain.SideRight, allConnected())
	if err != nil {
		t.Fatalf("winning placement error: %v", err)
	}
	if g.Phase != domain.PhaseMatchOver {
		t.Fatalf("phase = %s, want match_over", g.Phase)
	}
	if g.MatchWins[1] != 1 || g.MatchWins[2] != 1 {
		t.Fatalf("match wins = %v, want seats 1 and 2 credited", g.MatchWins)
	}

	foundMatchOver := false
	for _, ev := range events {
		if ev.Kind == EventMatchOver {
			foundMatchOver = true
			payload := ev.Payload.(MatchOverPayload)
			if payload.Team != domain.TeamA {
				t.Fatalf("match winner = %s, want A", payload.Team)
			}
		}
	}
	if !foundMatchOver {
		t.Fatal("expected match over event")
	}

	// Scores stay frozen until every connected seat acknowledges.
	for _, seat := range []int{1, 2, 3} {
		if _, err := svc.ReadyForNext(g, seat, allConnected()); err != nil {
			t.Fatalf("ready seat %d error: %v", seat, err)
		}
		if g.Phase != domain.PhaseMatchOver {
			t.Fatalf("reset happened before all seats were ready")
		}
	}

	if _, err := svc.ReadyForNext(g, 4, allConnected()); err != nil {
		t.Fatalf("final ready error: %v", err)
	}
	if g.MatchNumber != 1 {
		t.Fatalf("match number = %d, want 1", g.MatchNumber)
	}
	if g.Scores[domain.TeamA] != 0 || g.Scores[domain.TeamB] != 0 {
		t.Fatalf("scores = %v, want reset", g.Scores)
	}
	if g.Teams != domain.Pairing(1) {
		t.Fatalf("teams = %+v, want pairing 1", g.Teams)
	}
	if !g.FirstRoundOfMatch {
		t.Fatal("new match must start with its first round")
	}
	if g.MatchWins[1] != 1 {
		t.Fatal("lifetime wins must survive the match reset")
	}
	if g.CurrentTurn != g.HolderOf(domain.DoubleSix) {
		t.Fatalf("new match opener = %d, want double-six holder", g.CurrentTurn)
	}
}

func TestRestartWipesEverything(t *testing.T) {
	svc, g, _ := startedGame(t, 12)
	g.Scores[domain.TeamA] = 30
	g.MatchWins[2] = 5
	g.MatchNumber = 4
	g.LastWinner = 2
	g.Phase = domain.PhaseRoundOver

	events, err := svc.Restart(g, 1, allConnected())
	if err != nil {
		t.Fatalf("restart error: %v", err)
	}
	if events[0].Kind != EventGameRestarted {
		t.Fatalf("first event = %s, want game_restarted", events[0].Kind)
	}
	if g.MatchNumber != 0 || g.LastWinner != 0 {
		t.Fatalf("match bookkeeping not reset: number=%d winner=%d", g.MatchNumber, g.LastWinner)
	}
	if len(g.MatchWins) != 0 {
		t.Fatalf("match wins = %v, want cleared", g.MatchWins)
	}
	if g.Scores[domain.TeamA] != 0 {
		t.Fatalf("scores = %v, want cleared", g.Scores)
	}
	// Four seats connected: a fresh first round deals immediately.
	if g.Phase != domain.PhaseAwaitingFirstMove {
		t.Fatalf("phase = %s, want awaiting_first_move", g.Phase)
	}
	if g.Teams != domain.Pairing(0) {
		t.Fatalf("teams = %+v, want pairing 0", g.Teams)
	}
}
