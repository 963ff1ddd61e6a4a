// Package dice parses dice notation such as "2d6+5" and evaluates rolls.
package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Limits applied when parsing a rollstring.
const (
	MaxDiceNumber = 100
	MaxDiceValue  = 10000
	MaxFlatBonus  = 1000000
)

// diceExpr matches [N]d[V][+B|-B]. An empty die value is rejected after matching.
var diceExpr = regexp.MustCompile(`(\d*)d(\d*)([+-]\d+)?`)

// Spec holds the parsed, unevaluated parameters of a roll.
type Spec struct {
	DiceNumber int
	DiceValue  int
	FlatBonus  int
}

// Parse extracts the first dice expression found in rollstring.
// Matching is case-insensitive; a missing dice count defaults to 1 and a
// missing bonus to 0. Text with no d<digits> anywhere is ErrParse, unless a
// d without a die value is itself the dice expression ("d", "2d", "d+3"),
// which is ErrInvalidSpec.
func Parse(rollstring string) (Spec, error) {
	lowered := strings.ToLower(rollstring)
	matches := diceExpr.FindAllStringSubmatch(lowered, -1)

	var match []string
	for _, m := range matches {
		if m[2] != "" {
			match = m
			break
		}
	}
	if match == nil {
		if hasValuelessExpression(lowered, matches) {
			return Spec{}, &ParseError{Input: rollstring, Err: fmt.Errorf("%w: missing die value", ErrInvalidSpec)}
		}
		return Spec{}, &ParseError{Input: rollstring, Err: ErrParse}
	}

	spec := Spec{DiceNumber: 1}
	var err error
	if match[1] != "" {
		if spec.DiceNumber, err = strconv.Atoi(match[1]); err != nil {
			return Spec{}, &ParseError{Input: rollstring, Err: fmt.Errorf("%w: dice count %s", ErrInvalidSpec, match[1])}
		}
	}
	if spec.DiceValue, err = strconv.Atoi(match[2]); err != nil {
		return Spec{}, &ParseError{Input: rollstring, Err: fmt.Errorf("%w: die value %s", ErrInvalidSpec, match[2])}
	}
	if match[3] != "" {
		if spec.FlatBonus, err = strconv.Atoi(match[3]); err != nil {
			return Spec{}, &ParseError{Input: rollstring, Err: fmt.Errorf("%w: bonus %s", ErrInvalidSpec, match[3])}
		}
	}

	if err := spec.Validate(); err != nil {
		return Spec{}, &ParseError{Input: rollstring, Err: err}
	}
	return spec, nil
}

// hasValuelessExpression reports whether a match without a die value still
// reads as dice notation: it carries a count or a bonus, or it is the whole
// input. A letter d inside a word such as "sword" does not count.
func hasValuelessExpression(lowered string, matches [][]string) bool {
	for _, m := range matches {
		if m[1] != "" || m[3] != "" {
			return true
		}
	}
	return strings.TrimSpace(lowered) == "d"
}

// Validate reports ErrInvalidSpec when any field is outside the supported range.
func (s Spec) Validate() error {
	switch {
	case s.DiceNumber < 1 || s.DiceNumber > MaxDiceNumber:
		return fmt.Errorf("%w: dice count must be between 1 and %d, got %d", ErrInvalidSpec, MaxDiceNumber, s.DiceNumber)
	case s.DiceValue < 1 || s.DiceValue > MaxDiceValue:
		return fmt.Errorf("%w: die value must be between 1 and %d, got %d", ErrInvalidSpec, MaxDiceValue, s.DiceValue)
	case s.FlatBonus < -MaxFlatBonus || s.FlatBonus > MaxFlatBonus:
		return fmt.Errorf("%w: bonus must be within ±%d, got %d", ErrInvalidSpec, MaxFlatBonus, s.FlatBonus)
	}
	return nil
}

// String renders the spec in canonical notation, e.g. "2d6+5".
func (s Spec) String() string {
	switch {
	case s.FlatBonus > 0:
		return fmt.Sprintf("%dd%d+%d", s.DiceNumber, s.DiceValue, s.FlatBonus)
	case s.FlatBonus < 0:
		return fmt.Sprintf("%dd%d%d", s.DiceNumber, s.DiceValue, s.FlatBonus)
	default:
		return fmt.Sprintf("%dd%d", s.DiceNumber, s.DiceValue)
	}
}
