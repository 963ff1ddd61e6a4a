package service

import "errors"

var (
	// ErrNoPreviousRoll is returned by Reroll when the user has never rolled.
	ErrNoPreviousRoll = errors.New("no previous roll")

	// ErrInvalidLabel is returned when a saved roll label is blank.
	ErrInvalidLabel = errors.New("saved roll label must not be empty")
)
