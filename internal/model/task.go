package model

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for due dates
const DateLayout = "2006-01-02"

// Todo represents a single task in a user's list
type Todo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Completed   bool   `json:"completed"`
	CreatedAt   int64  `json:"createdAt"` // epoch millis

	// IsDeleting marks a record whose removal has been confirmed but not yet applied.
	IsDeleting bool `json:"-"`
}

// Due parses the due date. ok is false when there is none or it is malformed.
func (t *Todo) Due() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsDueToday returns true if an active task is due on now's calendar day
func (t *Todo) IsDueToday(now time.Time) bool {
	due, ok := t.Due()
	if !ok || t.Completed {
		return false
	}
	return due.Format(DateLayout) == now.Format(DateLayout)
}

// IsOverdue returns true if an active task is past its due date
func (t *Todo) IsOverdue(now time.Time) bool {
	due, ok := t.Due()
	if !ok || t.Completed {
		return false
	}
	return due.Format(DateLayout) < now.Format(DateLayout)
}

// Matches reports whether query occurs in the title or description, ignoring case.
// A blank query matches everything.
func (t *Todo) Matches(query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// Patch lists the editable fields of a Todo.
// A nil field is left unchanged; a pointer to "" clears it.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// IsEmpty returns true if the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil
}

// String returns a pointer to s, for building patches
func String(s string) *string {
	return &s
}
