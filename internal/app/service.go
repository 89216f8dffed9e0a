package app

import (
	"errors"
	"math/rand"
	"time"

	"domino/internal/domain"
)

// Service contains the table use-cases operating on domain state. All
// methods validate fully before mutating anything; a returned error means
// state is untouched.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrRoundInProgress     = errors.New("round already in progress")
	ErrSeatsNotFilled      = errors.New("need four connected seats to deal")
	ErrNoSettlementPending = errors.New("no round settlement pending")
)

// StartRound forms the teams for the current match number, deals four hands
// of seven and hands the opening turn to the right seat: the double-six
// holder in the first round of a match (or after a tied block), otherwise
// the previous round's winner if still connected.
func (s *Service) StartRound(g *domain.Game, connected map[int]bool) ([]Event, error) {
	if g.RoundActive() {
		return nil, ErrRoundInProgress
	}
	if countConnected(connected) != 4 {
		return nil, ErrSeatsNotFilled
	}

	g.Teams = domain.Pairing(g.MatchNumber)
	g.Seating = g.Teams.SeatingOrder()
	g.Board.Reset()
	g.LastPlay = nil
	g.Ready = make(map[int]bool)

	tiles := domain.NewTileSet()
	s.rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })
	g.Hands = make(map[int][]domain.Tile)
	for seat := 1; seat <= 4; seat++ {
		g.Hands[seat] = append([]domain.Tile(nil), tiles[(seat-1)*7:seat*7]...)
	}

	g.Phase = domain.PhaseAwaitingFirstMove
	g.CurrentTurn = s.openingSeat(g, connected)

	events := []Event{{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			MatchNumber: g.MatchNumber,
			Teams:       g.Teams,
			Seating:     g.Seating,
			OpeningSeat: g.CurrentTurn,
			FirstRound:  g.FirstRoundOfMatch,
		},
	}}
	for seat := 1; seat <= 4; seat++ {
		events = append(events, Event{
			Kind:    EventHandDealt,
			Payload: HandDealtPayload{Seat: seat, Hand: g.Hands[seat]},
			ToSeat:  seat,
		})
	}
	return events, nil
}

func (s *Service) openingSeat(g *domain.Game, connected map[int]bool) int {
	if g.FirstRoundOfMatch || g.LastWinner == 0 {
		if seat := g.HolderOf(domain.DoubleSix); seat != 0 {
			return seat
		}
		return g.Seating[0]
	}
	if connected[g.LastWinner] {
		return g.LastWinner
	}
	return g.Seating[0]
}

// PlaceTile validates and applies a placement, then settles the round if the
// hand emptied or the board blocked. The block scan only counts connected
// seats: a playable tile stranded in a disconnected hand cannot keep the
// round open.
func (s *Service) PlaceTile(g *domain.Game, seat int, tile domain.Tile, side domain.Side, connected map[int]bool) ([]Event, error) {
	if err := domain.CanPlace(g, seat, tile, side); err != nil {
		return nil, err
	}

	var placed domain.Tile
	if g.Phase == domain.PhaseAwaitingFirstMove {
		placed = tile
		if err := g.Board.PlaceFirst(tile); err != nil {
			return nil, err
		}
		side = domain.SideRight
		g.Phase = domain.PhaseInPlay
	} else {
		var err error
		placed, err = g.Board.Place(tile, side)
		if err != nil {
			return nil, err
		}
	}

	g.Hands[seat] = domain.RemoveTile(g.Hands[seat], tile)
	g.LastPlay = &domain.LastPlay{Seat: seat, Tile: placed, Side: side}

	events := []Event{{
		Kind:    EventMoveAccepted,
		Payload: MoveAcceptedPayload{Seat: seat, Tile: placed, Side: side},
		ToSeat:  seat,
	}}

	placedEvent := Event{Kind: EventTilePlaced}
	switch {
	case len(g.Hands[seat]) == 0:
		placedEvent.Payload = TilePlacedPayload{Seat: seat, Tile: placed, Side: side}
		events = append(events, placedEvent)
		events = append(events, s.settle(g, domain.SettleWin(g, seat))...)
	case !domain.AnyLegalMove(g, connected):
		placedEvent.Payload = TilePlacedPayload{Seat: seat, Tile: placed, Side: side, TilesLeft: len(g.Hands[seat])}
		events = append(events, placedEvent)
		events = append(events, s.settle(g, domain.SettleBlocked(g))...)
	default:
		g.AdvanceTurn()
		placedEvent.Payload = TilePlacedPayload{
			Seat:      seat,
			Tile:      placed,
			Side:      side,
			NextTurn:  g.CurrentTurn,
			TilesLeft: len(g.Hands[seat]),
		}
		events = append(events, placedEvent)
	}
	return events, nil
}

// PassTurn validates and applies a pass. The connected seats are re-checked
// for a block afterwards so a full circle of forced passes settles the round.
func (s *Service) PassTurn(g *domain.Game, seat int, connected map[int]bool) ([]Event, error) {
	if err := domain.CanPass(g, seat); err != nil {
		return nil, err
	}

	g.AdvanceTurn()
	events := []Event{{
		Kind:    EventTurnPassed,
		Payload: TurnPassedPayload{Seat: seat, NextTurn: g.CurrentTurn},
	}}
	if !domain.AnyLegalMove(g, connected) {
		events = append(events, s.settle(g, domain.SettleBlocked(g))...)
	}
	return events, nil
}

// settle applies a round result: scores, phase transition, last-winner
// bookkeeping and match lifecycle.
func (s *Service) settle(g *domain.Game, res domain.RoundResult) []Event {
	g.CurrentTurn = 0
	g.FirstRoundOfMatch = false
	g.Phase = domain.PhaseRoundOver

	var events []Event
	switch res.Outcome {
	case domain.OutcomeWin:
		g.Scores[res.WinnerTeam] += res.Points
		g.LastWinner = res.WinnerSeat
		events = append(events, Event{
			Kind: EventHandWon,
			Payload: HandWonPayload{
				Seat:   res.WinnerSeat,
				Team:   res.WinnerTeam,
				Points: res.Points,
				Scores: copyScores(g.Scores),
			},
		})
	case domain.OutcomeBlocked:
		g.Scores[res.WinnerTeam] += res.Points
		g.LastWinner = res.WinnerSeat
		events = append(events, blockedEvent(g, res))
	case domain.OutcomeTied:
		// Nothing scored; the next opener falls back to the double-six
		// holder via LastWinner == 0.
		g.LastWinner = 0
		events = append(events, blockedEvent(g, res))
	}

	if winner, over := s.matchWinner(g); over {
		g.Phase = domain.PhaseMatchOver
		for _, seat := range g.Teams.Members(winner) {
			g.MatchWins[seat]++
		}
		events = append(events, Event{
			Kind: EventMatchOver,
			Payload: MatchOverPayload{
				Team:      winner,
				Scores:    copyScores(g.Scores),
				MatchWins: copyWins(g.MatchWins),
			},
		})
	}
	return events
}

func blockedEvent(g *domain.Game, res domain.RoundResult) Event {
	return Event{
		Kind: EventRoundBlocked,
		Payload: RoundBlockedPayload{
			Outcome:    res.Outcome,
			WinnerTeam: res.WinnerTeam,
			WinnerSeat: res.WinnerSeat,
			Points:     res.Points,
			TeamPips:   res.TeamPips,
			Scores:     copyScores(g.Scores),
		},
	}
}

func (s *Service) matchWinner(g *domain.Game) (domain.TeamID, bool) {
	for _, team := range []domain.TeamID{domain.TeamA, domain.TeamB} {
		if g.Scores[team] >= g.TargetScore {
			return team, true
		}
	}
	return "", false
}

// ReadyForNext records a seat's acknowledgement. Calling it twice from one
// seat is the same as calling it once. When all four connected seats have
// acknowledged, a match-over table resets scores and advances the pairing
// cycle before redealing; a round-over table simply redeals.
func (s *Service) ReadyForNext(g *domain.Game, seat int, connected map[int]bool) ([]Event, error) {
	if g.Phase != domain.PhaseRoundOver && g.Phase != domain.PhaseMatchOver {
		return nil, ErrNoSettlementPending
	}
	g.Ready[seat] = true

	if countConnected(connected) != 4 {
		return nil, nil
	}
	for st, ok := range connected {
		if ok && !g.Ready[st] {
			return nil, nil
		}
	}

	if g.Phase == domain.PhaseMatchOver {
		g.MatchNumber++
		g.Scores = map[domain.TeamID]int{domain.TeamA: 0, domain.TeamB: 0}
		g.FirstRoundOfMatch = true
	}
	return s.StartRound(g, connected)
}

// Restart wipes everything back to a fresh table: scores, lifetime win
// counters, match number, teams, board. Seat bindings are owned by the
// transport and survive. A new first round is dealt immediately when four
// seats are connected.
func (s *Service) Restart(g *domain.Game, seat int, connected map[int]bool) ([]Event, error) {
	g.Phase = domain.PhaseLobby
	g.Board.Reset()
	g.Hands = make(map[int][]domain.Tile)
	g.Scores = map[domain.TeamID]int{domain.TeamA: 0, domain.TeamB: 0}
	g.Ready = make(map[int]bool)
	g.MatchWins = make(map[int]int)
	g.MatchNumber = 0
	g.FirstRoundOfMatch = true
	g.LastWinner = 0
	g.LastPlay = nil
	g.CurrentTurn = 0

	events := []Event{{Kind: EventGameRestarted, Payload: GameRestartedPayload{Seat: seat}}}
	if countConnected(connected) == 4 {
		roundEvents, err := s.StartRound(g, connected)
		if err != nil {
			return events, err
		}
		events = append(events, roundEvents...)
	}
	return events, nil
}

func countConnected(connected map[int]bool) int {
	n := 0
	for _, ok := range connected {
		if ok {
			n++
		}
	}
	return n
}

func copyScores(scores map[domain.TeamID]int) map[domain.TeamID]int {
	out := make(map[domain.TeamID]int, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}

func copyWins(wins map[int]int) map[int]int {
	out := make(map[int]int, len(wins))
	for k, v := range wins {
		out[k] = v
	}
	return out
}
