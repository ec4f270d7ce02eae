package domain

import "time"

// CalendarNote is a free-form annotation attached to a single calendar date,
// with an optional checklist flag and references to tasks due that day.
type CalendarNote struct {
	Date      string    `json:"date"`
	Checked   bool      `json:"checked"`
	Notes     string    `json:"notes"`
	Tasks     []string  `json:"tasks"`
	UpdatedAt time.Time `json:"updatedAt"`
}
