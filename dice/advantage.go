package dice

// Mode selects which of two independent rolls is kept.
type Mode string

const (
	ModeAdvantage    Mode = "advantage"
	ModeDisadvantage Mode = "disadvantage"
)

// Compare orders two independently drawn rolls. The first roll wins only when
// its total is strictly greater, so ties go to the second roll.
func Compare(first, second *Roll) (winner, loser *Roll) {
	if first.Total() > second.Total() {
		return first, second
	}
	return second, first
}

// Keep returns the kept and discarded rolls for mode: advantage keeps the
// winner, disadvantage keeps the loser.
func Keep(mode Mode, first, second *Roll) (kept, discarded *Roll) {
	winner, loser := Compare(first, second)
	if mode == ModeDisadvantage {
		return loser, winner
	}
	return winner, loser
}
