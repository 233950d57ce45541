package document

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/roadmap"
)

// CheckInvariants enforces the rules the schema cannot express: known phases,
// ascending unique days, unique task ids per day, and doneAt set exactly when
// a task is done.
func CheckInvariants(d *Document) error {
	prev := 0
	for _, plan := range d.Roadmap {
		if plan.Day <= prev || plan.Day > roadmap.Days {
			return violation("days must be unique, ascending and within 1..%d", roadmap.Days).
				WithContext("day", plan.Day).Build()
		}
		prev = plan.Day
		if !roadmap.IsPhase(plan.Phase) {
			return violation("unknown phase %q", plan.Phase).WithContext("day", plan.Day).Build()
		}
		seen := make(map[string]struct{}, len(plan.Tasks))
		for _, t := range plan.Tasks {
			if _, dup := seen[t.ID]; dup {
				return violation("duplicate task id %q", t.ID).WithContext("day", plan.Day).Build()
			}
			seen[t.ID] = struct{}{}
			if t.Done != (t.DoneAt != nil) {
				return violation("task %q: doneAt must be set exactly when done", t.ID).
					WithContext("day", plan.Day).Build()
			}
		}
	}
	return nil
}

func violation(format string, args ...any) *ferrors.ErrorBuilder {
	return ferrors.SchemaError(fmt.Sprintf(format, args...))
}
