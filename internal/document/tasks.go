package document

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/roadmap"
)

// FindTask returns the task with the given id and the day it belongs to.
func (d *Document) FindTask(id string) (*roadmap.Task, int, error) {
	for _, plan := range d.Roadmap {
		for _, t := range plan.Tasks {
			if t.ID == id {
				return t, plan.Day, nil
			}
		}
	}
	return nil, 0, notFound("task", id)
}

// ToggleTask flips the done flag. DoneAt is stamped on the transition to done
// and cleared on the way back.
func (d *Document) ToggleTask(id string, now time.Time) (*roadmap.Task, error) {
	t, _, err := d.FindTask(id)
	if err != nil {
		return nil, err
	}
	t.Done = !t.Done
	if t.Done {
		ts := now
		t.DoneAt = &ts
	} else {
		t.DoneAt = nil
	}
	return t, nil
}

// SetTaskNotes replaces the notes of a task.
func (d *Document) SetTaskNotes(id, notes string) error {
	t, _, err := d.FindTask(id)
	if err != nil {
		return err
	}
	t.Notes = notes
	return nil
}

// ArchiveTaskNotes prefixes the current notes with an archive marker.
func (d *Document) ArchiveTaskNotes(id string, now time.Time) error {
	t, _, err := d.FindTask(id)
	if err != nil {
		return err
	}
	if t.Notes == "" {
		return invalid("no notes to archive").WithContext("id", id).Build()
	}
	t.Notes = fmt.Sprintf("[ARCHIVED %s]\n%s", now.UTC().Format(time.RFC3339Nano), t.Notes)
	return nil
}

// RemoveTask deletes a task from its day. The day itself stays, even when empty.
func (d *Document) RemoveTask(id string) error {
	for i := range d.Roadmap {
		tasks := d.Roadmap[i].Tasks
		for j, t := range tasks {
			if t.ID == id {
				d.Roadmap[i].Tasks = append(tasks[:j:j], tasks[j+1:]...)
				return nil
			}
		}
	}
	return notFound("task", id)
}
