package dice

import (
	"fmt"
	"strings"
	"sync"
)

// Roll is the outcome of evaluating a Spec. The dice are drawn at most once:
// the first call to Total, Rolls or Detailed performs the draw and every later
// call returns the same values.
type Roll struct {
	spec   Spec
	roller Roller

	mu        sync.Mutex
	evaluated bool
	rolls     []int
	total     int
}

// Evaluate validates spec and binds it to roller. A nil roller uses DefaultRoller.
func Evaluate(spec Spec, roller Roller) (*Roll, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if roller == nil {
		roller = DefaultRoller
	}
	return &Roll{spec: spec, roller: roller}, nil
}

// Spec returns the parameters this roll was evaluated from.
func (r *Roll) Spec() Spec {
	return r.spec
}

// Evaluated reports whether the dice have been drawn yet.
func (r *Roll) Evaluated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evaluated
}

func (r *Roll) evaluate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.evaluated {
		return
	}

	rolls := make([]int, r.spec.DiceNumber)
	total := r.spec.FlatBonus
	for i := range rolls {
		rolls[i] = r.roller.Roll(r.spec.DiceValue)
		total += rolls[i]
	}

	r.rolls = rolls
	r.total = total
	r.evaluated = true
}

// Total returns the sum of the dice plus the flat bonus.
func (r *Roll) Total() int {
	r.evaluate()
	return r.total
}

// Rolls returns a copy of the individual die results in draw order.
func (r *Roll) Rolls() []int {
	r.evaluate()
	out := make([]int, len(r.rolls))
	copy(out, r.rolls)
	return out
}

// Detailed renders every die as "(v)" joined by " + ", followed by the bonus
// term, e.g. "(6) + (6) - 5".
func (r *Roll) Detailed() string {
	rolls := r.Rolls()
	parts := make([]string, len(rolls))
	for i, v := range rolls {
		parts[i] = fmt.Sprintf("(%d)", v)
	}

	detailed := strings.Join(parts, " + ")
	if bonus := formatBonus(r.spec.FlatBonus); bonus != "" {
		detailed += " " + bonus
	}
	return detailed
}

func formatBonus(bonus int) string {
	switch {
	case bonus > 0:
		return fmt.Sprintf("+ %d", bonus)
	case bonus < 0:
		return fmt.Sprintf("- %d", -bonus)
	default:
		return ""
	}
}
