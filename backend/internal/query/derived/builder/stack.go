package builder

import (
	apperrors "graphderive/backend/pkg/errors"
)

// Stack holds the bound arguments of one derived-query invocation.
// The top of the stack is the leftmost argument not yet consumed.
type Stack struct {
	values []any
}

// NewStack pushes args so that Pop yields them left to right
func NewStack(args ...any) *Stack {
	s := &Stack{values: make([]any, 0, len(args))}
	for i := len(args) - 1; i >= 0; i-- {
		s.values = append(s.values, args[i])
	}
	return s
}

// Push places v on top of the stack
func (s *Stack) Push(v any) {
	s.values = append(s.values, v)
}

// Pop removes and returns the top value
func (s *Stack) Pop() (any, error) {
	if len(s.values) == 0 {
		return nil, apperrors.NewArgumentStackUnderflow("", 1, 0)
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v, nil
}

// Len is the number of values left
func (s *Stack) Len() int {
	return len(s.values)
}

// take pops n values in argument order, or none at all when fewer than n remain
func (s *Stack) take(property string, n int) ([]any, error) {
	if len(s.values) < n {
		return nil, apperrors.NewArgumentStackUnderflow(property, n, len(s.values))
	}
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = s.values[len(s.values)-1-i]
	}
	s.values = s.values[:len(s.values)-n]
	return out, nil
}

// restore undoes a take
func (s *Stack) restore(values []any) {
	for i := len(values) - 1; i >= 0; i-- {
		s.values = append(s.values, values[i])
	}
}
