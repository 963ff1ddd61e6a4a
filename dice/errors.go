package dice

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates the input contains no d<value> dice expression.
	ErrParse = errors.New("invalid roll format")

	// ErrInvalidSpec indicates a dice expression with out-of-range values,
	// such as a zero-sided die.
	ErrInvalidSpec = errors.New("invalid dice expression")
)

// ParseError records the rollstring that failed to parse and why.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse roll %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
