package bot

import (
	"fmt"

	"domino/internal/domain"
)

// Move is a bot's decision for its turn.
type Move struct {
	Pass bool
	Tile domain.Tile
	Side domain.Side
}

// Agent fills an empty seat and plays a straightforward game: shed the
// heaviest legal tile, pass otherwise.
type Agent struct {
	UserID string
	Seat   int
}

// NewAgent constructs an agent for the given bot user id.
func NewAgent(userID string, seat int) (*Agent, error) {
	if !IsBot(userID) {
		return nil, fmt.Errorf("user %s is not a bot identity", userID)
	}
	return &Agent{UserID: userID, Seat: seat}, nil
}

// ChooseMove picks the agent's move for the current state. The returned
// move is always legal for the agent's seat.
func (a *Agent) ChooseMove(g *domain.Game) (Move, error) {
	if g.CurrentTurn != a.Seat {
		return Move{}, fmt.Errorf("seat %d is not in turn", a.Seat)
	}

	if g.Phase == domain.PhaseAwaitingFirstMove {
		if g.FirstRoundOfMatch {
			if !domain.ContainsTile(g.Hands[a.Seat], domain.DoubleSix) {
				return Move{Pass: true}, nil
			}
			return Move{Tile: domain.DoubleSix, Side: domain.SideRight}, nil
		}
		return Move{Tile: heaviest(g.Hands[a.Seat]), Side: domain.SideRight}, nil
	}

	best := Move{Pass: true}
	bestPips := -1
	left, right := g.Board.LeftEnd(), g.Board.RightEnd()
	for _, t := range g.Hands[a.Seat] {
		if t.Pips() <= bestPips {
			continue
		}
		switch {
		case t.HasFace(right):
			best = Move{Tile: t, Side: domain.SideRight}
			bestPips = t.Pips()
		case t.HasFace(left):
			best = Move{Tile: t, Side: domain.SideLeft}
			bestPips = t.Pips()
		}
	}
	return best, nil
}

func heaviest(hand []domain.Tile) domain.Tile {
	best := hand[0]
	for _, t := range hand[1:] {
		if t.Pips() > best.Pips() {
			best = t
		}
	}
	return best
}
