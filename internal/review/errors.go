package review

import "errors"

var (
	// ErrNothingDue is returned when there is nothing to schedule ("all caught up").
	ErrNothingDue = errors.New("review: nothing due")
	// ErrInvalidGoal is returned when the weekly review target is missing or zero.
	ErrInvalidGoal = errors.New("review: invalid review goal")
)
