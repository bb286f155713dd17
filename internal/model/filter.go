package model

import (
	"errors"
	"fmt"
)

// ErrUnknownFilter is returned by ParseFilter for an unrecognized name
var ErrUnknownFilter = errors.New("unknown filter")

// Filter restricts a view by completion status
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

// String returns the string representation of the filter
func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Allows reports whether t passes the filter
func (f Filter) Allows(t Todo) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// ParseFilter converts a string to a Filter. The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	default:
		return FilterAll, fmt.Errorf("%w %q (want all, active or completed)", ErrUnknownFilter, s)
	}
}

// DeleteState tracks a record through the staged delete
type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeletePendingConfirmation
	DeleteDeleting
	DeleteRemoved
)

// String returns the string representation of the delete state
func (s DeleteState) String() string {
	switch s {
	case DeletePendingConfirmation:
		return "pending_confirmation"
	case DeleteDeleting:
		return "deleting"
	case DeleteRemoved:
		return "removed"
	default:
		return "idle"
	}
}
