package dice

import "github.com/stretchr/testify/mock"

// MockRoller is a mock implementation of Roller for testing
type MockRoller struct {
	mock.Mock
}

func (m *MockRoller) Roll(sides int) int {
	args := m.Called(sides)
	return args.Int(0)
}

// SequenceRoller returns the given values in order, cycling when exhausted.
type SequenceRoller struct {
	Values []int
	next   int
}

func (s *SequenceRoller) Roll(sides int) int {
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}
