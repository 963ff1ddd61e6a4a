package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRoll(t *testing.T, value int) *Roll {
	t.Helper()
	roll, err := Evaluate(Spec{DiceNumber: 1, DiceValue: 20}, &SequenceRoller{Values: []int{value}})
	require.NoError(t, err)
	return roll
}

func TestCompare(t *testing.T) {
	t.Run("first higher", func(t *testing.T) {
		first, second := fixedRoll(t, 15), fixedRoll(t, 4)
		winner, loser := Compare(first, second)
		assert.Same(t, first, winner)
		assert.Same(t, second, loser)
	})

	t.Run("second higher", func(t *testing.T) {
		first, second := fixedRoll(t, 2), fixedRoll(t, 19)
		winner, loser := Compare(first, second)
		assert.Same(t, second, winner)
		assert.Same(t, first, loser)
	})

	t.Run("tie goes to second", func(t *testing.T) {
		first, second := fixedRoll(t, 11), fixedRoll(t, 11)
		winner, loser := Compare(first, second)
		assert.Same(t, second, winner)
		assert.Same(t, first, loser)
		assert.GreaterOrEqual(t, winner.Total(), loser.Total())
	})
}

func TestKeep(t *testing.T) {
	first, second := fixedRoll(t, 18), fixedRoll(t, 3)

	kept, discarded := Keep(ModeAdvantage, first, second)
	assert.Equal(t, 18, kept.Total())
	assert.Equal(t, 3, discarded.Total())

	kept, discarded = Keep(ModeDisadvantage, first, second)
	assert.Equal(t, 3, kept.Total())
	assert.Equal(t, 18, discarded.Total())
}

func TestCompare_WinnerNeverBelowLoser(t *testing.T) {
	spec := Spec{DiceNumber: 2, DiceValue: 6}
	for i := 0; i < 200; i++ {
		first, err := Evaluate(spec, nil)
		require.NoError(t, err)
		second, err := Evaluate(spec, nil)
		require.NoError(t, err)

		winner, loser := Compare(first, second)
		assert.GreaterOrEqual(t, winner.Total(), loser.Total())
	}
}
