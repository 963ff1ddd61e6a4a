package dice

import "math/rand/v2"

// Roller draws a single die result.
type Roller interface {
	// Roll returns a uniformly distributed value in [1, sides].
	Roll(sides int) int
}

// RandomRoller draws from the math/rand/v2 top-level source, which is safe for
// concurrent use and shares no state between rolls.
type RandomRoller struct{}

func (RandomRoller) Roll(sides int) int {
	return rand.IntN(sides) + 1
}

// DefaultRoller is used when Evaluate is given a nil Roller.
var DefaultRoller Roller = RandomRoller{}
