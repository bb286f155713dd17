package todo

import "errors"

var (
	// ErrEmptyTitle is returned when a title is blank after trimming
	ErrEmptyTitle = errors.New("title cannot be empty")
	// ErrInvalidDueDate is returned for a due date that is not YYYY-MM-DD
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")
	// ErrNotFound is returned when no task has the given id
	ErrNotFound = errors.New("task not found")
	// ErrAmbiguous is returned when an id prefix matches more than one task
	ErrAmbiguous = errors.New("task id prefix is ambiguous")
)
