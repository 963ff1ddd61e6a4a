package models

import "dicey/dice"

// RollKind identifies which command produced a roll
type RollKind string

const (
	RollKindRoll         RollKind = "roll"
	RollKindReroll       RollKind = "reroll"
	RollKindAdvantage    RollKind = "advantage"
	RollKindDisadvantage RollKind = "disadvantage"
)

// RollResult is an evaluated roll together with the text that produced it
type RollResult struct {
	Kind  RollKind
	Input string
	Roll  *dice.Roll
}

// AdvantageResult holds both draws of an advantage or disadvantage roll
type AdvantageResult struct {
	Kind      RollKind
	Input     string
	Kept      *dice.Roll
	Discarded *dice.Roll
}

// SavedRoll is a single labelled rollstring
type SavedRoll struct {
	Label      string `json:"label"`
	Rollstring string `json:"rollstring"`
}
