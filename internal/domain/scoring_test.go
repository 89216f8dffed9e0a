package domain

import "testing"

// Seat 3 goes out; the opposing team's remaining pips go to seat 3's team.
func TestSettleWin(t *testing.T) {
	g := newTestGame() // teams {1,2} vs {3,4}
	g.Phase = PhaseInPlay
	g.Hands[1] = []Tile{{5, 5}}         // 10
	g.Hands[2] = []Tile{{6, 4}, {2, 1}} // 13
	g.Hands[3] = nil
	g.Hands[4] = []Tile{{3, 3}} // own partner, not counted

	res := SettleWin(g, 3)
	if res.Outcome != OutcomeWin {
		t.Fatalf("outcome = %s, want win", res.Outcome)
	}
	if res.WinnerSeat != 3 || res.WinnerTeam != TeamB {
		t.Fatalf("winner = seat %d team %s, want seat 3 team B", res.WinnerSeat, res.WinnerTeam)
	}
	if res.Points != 23 {
		t.Fatalf("points = %d, want 23", res.Points)
	}
}

func TestSettleBlocked(t *testing.T) {
	tests := []struct {
		name       string
		hands      map[int][]Tile
		wantOut    Outcome
		wantTeam   TeamID
		wantPoints int
		wantSeat   int
	}{
		{
			name: "lower team takes higher team's pips",
			hands: map[int][]Tile{
				1: {{4, 4}},         // team A: 14
				2: {{3, 3}},         //
				3: {{1, 1}},         // team B: 9, seat 3 holds 2
				4: {{3, 4}},         // seat 4 holds 7
			},
			wantOut:    OutcomeBlocked,
			wantTeam:   TeamB,
			wantPoints: 14,
			wantSeat:   3,
		},
		{
			name: "equal pips is an explicit tie",
			hands: map[int][]Tile{
				1: {{2, 3}},
				2: {{1, 1}},
				3: {{3, 3}},
				4: {{0, 1}},
			},
			wantOut:    OutcomeTied,
			wantTeam:   "",
			wantPoints: 0,
			wantSeat:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame()
			g.Phase = PhaseInPlay
			g.Hands = tt.hands

			res := SettleBlocked(g)
			if res.Outcome != tt.wantOut {
				t.Fatalf("outcome = %s, want %s", res.Outcome, tt.wantOut)
			}
			if res.WinnerTeam != tt.wantTeam {
				t.Fatalf("winner team = %q, want %q", res.WinnerTeam, tt.wantTeam)
			}
			if res.Points != tt.wantPoints {
				t.Fatalf("points = %d, want %d", res.Points, tt.wantPoints)
			}
			if res.WinnerSeat != tt.wantSeat {
				t.Fatalf("winner seat = %d, want %d", res.WinnerSeat, tt.wantSeat)
			}
		})
	}
}

func TestTeamPipsCoverAllSeats(t *testing.T) {
	g := newTestGame()
	g.Hands = map[int][]Tile{
		1: {{1, 0}},
		2: {{2, 0}},
		3: {{3, 0}},
		4: {{4, 0}},
	}
	pips := teamPips(g)
	if pips[TeamA] != 3 || pips[TeamB] != 7 {
		t.Fatalf("team pips = %v, want A:3 B:7", pips)
	}
}
