package roadmap

import "time"

// DayPlan is one day of the roadmap.
type DayPlan struct {
	Day   int     `json:"day"`
	Phase string  `json:"phase"`
	Tasks []*Task `json:"tasks"`
}

// Task is a single checklist item. DoneAt is non-nil exactly when Done is true.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	Done             bool       `json:"done"`
	DoneAt           *time.Time `json:"doneAt"`
	Notes            string     `json:"notes"`
}

// Template describes a task a phase can schedule.
type Template struct {
	Title       string
	Description string
	Minutes     int
}

// Phase owns the inclusive day range [First, Last].
type Phase struct {
	Name      string
	First     int
	Last      int
	Templates []Template
}

// Contains reports whether day falls inside the phase.
func (p Phase) Contains(day int) bool {
	return day >= p.First && day <= p.Last
}
