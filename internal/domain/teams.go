package domain

// TeamID names one of the two partnerships.
type TeamID string

const (
	TeamA TeamID = "A"
	TeamB TeamID = "B"
)

// Teams holds the two 2-seat partnerships for the current match.
type Teams struct {
	A [2]int `json:"a"`
	B [2]int `json:"b"`
}

// Pairing derives the partnerships from the match number. The cycle has
// period 3, so over three consecutive matches every seat partners with every
// other seat exactly once.
func Pairing(matchNumber int) Teams {
	switch ((matchNumber % 3) + 3) % 3 {
	case 1:
		return Teams{A: [2]int{1, 3}, B: [2]int{2, 4}}
	case 2:
		return Teams{A: [2]int{1, 4}, B: [2]int{2, 3}}
	default:
		return Teams{A: [2]int{1, 2}, B: [2]int{3, 4}}
	}
}

// SeatingOrder interleaves the two teams so no team ever plays two turns in
// a row: A[0], B[0], A[1], B[1].
func (t Teams) SeatingOrder() [4]int {
	return [4]int{t.A[0], t.B[0], t.A[1], t.B[1]}
}

// TeamOf returns the team the seat belongs to.
func (t Teams) TeamOf(seat int) TeamID {
	if seat == t.A[0] || seat == t.A[1] {
		return TeamA
	}
	return TeamB
}

// Members returns the two seats of a team.
func (t Teams) Members(team TeamID) [2]int {
	if team == TeamA {
		return t.A
	}
	return t.B
}

// Opposing returns the other team.
func Opposing(team TeamID) TeamID {
	if team == TeamA {
		return TeamB
	}
	return TeamA
}
