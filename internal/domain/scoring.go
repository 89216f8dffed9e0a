package domain

// Outcome classifies how a round ended.
type Outcome string

const (
	// OutcomeWin: a seat emptied its hand.
	OutcomeWin Outcome = "win"
	// OutcomeBlocked: nobody could move; the lower-pip team takes the round.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeTied: blocked with equal team pips; no points awarded.
	OutcomeTied Outcome = "tied"
)

// RoundResult is the settlement of a single round.
type RoundResult struct {
	Outcome    Outcome
	WinnerSeat int    // emptied hand, or the lowest-pip seat on a block; 0 on a tie
	WinnerTeam TeamID // empty on a tie
	Points     int
	TeamPips   map[TeamID]int
}

// SettleWin settles a round after the given seat's hand emptied. The
// winning team is awarded the pip total of both opposing hands.
func SettleWin(g *Game, seat int) RoundResult {
	team := g.Teams.TeamOf(seat)
	pips := teamPips(g)
	return RoundResult{
		Outcome:    OutcomeWin,
		WinnerSeat: seat,
		WinnerTeam: team,
		Points:     pips[Opposing(team)],
		TeamPips:   pips,
	}
}

// SettleBlocked settles a blocked board: the team holding fewer pips wins
// the opposing team's pip total. Equal totals are an explicit tie worth
// nothing, and the next round's opener falls back to the double-six holder.
func SettleBlocked(g *Game) RoundResult {
	pips := teamPips(g)
	switch {
	case pips[TeamA] < pips[TeamB]:
		return blockedResult(g, TeamA, pips)
	case pips[TeamB] < pips[TeamA]:
		return blockedResult(g, TeamB, pips)
	default:
		return RoundResult{Outcome: OutcomeTied, TeamPips: pips}
	}
}

func blockedResult(g *Game, winner TeamID, pips map[TeamID]int) RoundResult {
	return RoundResult{
		Outcome:    OutcomeBlocked,
		WinnerSeat: lowestPipSeat(g, winner),
		WinnerTeam: winner,
		Points:     pips[Opposing(winner)],
		TeamPips:   pips,
	}
}

// lowestPipSeat picks the team member holding the lighter hand; it leads
// the next round after a blocked win.
func lowestPipSeat(g *Game, team TeamID) int {
	members := g.Teams.Members(team)
	best := members[0]
	for _, seat := range members[1:] {
		if HandPips(g.Hands[seat]) < HandPips(g.Hands[best]) {
			best = seat
		}
	}
	return best
}

func teamPips(g *Game) map[TeamID]int {
	pips := map[TeamID]int{TeamA: 0, TeamB: 0}
	for seat, hand := range g.Hands {
		pips[g.Teams.TeamOf(seat)] += HandPips(hand)
	}
	return pips
}
