package commands

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/kaizen/internal/document"
)

// TaskCmd groups the task operations.
type TaskCmd struct {
	Done        TaskDoneCmd        `cmd:"" help:"Mark a task done"`
	Undo        TaskUndoCmd        `cmd:"" help:"Mark a task not done"`
	Show        TaskShowCmd        `cmd:"" help:"Show a task"`
	Note        TaskNoteCmd        `cmd:"" help:"Replace a task's notes"`
	ArchiveNote TaskArchiveNoteCmd `cmd:"" name:"archive-note" help:"Stamp a task's notes as archived"`
	Remove      TaskRemoveCmd      `cmd:"" help:"Remove a task from its day"`
}

type TaskDoneCmd struct {
	ID string `arg:"" help:"Task id"`
}

func (c *TaskDoneCmd) Run(g *Global, root *CLI) error { return setDone(g, root, c.ID, true) }

type TaskUndoCmd struct {
	ID string `arg:"" help:"Task id"`
}

func (c *TaskUndoCmd) Run(g *Global, root *CLI) error { return setDone(g, root, c.ID, false) }

func setDone(g *Global, root *CLI, id string, done bool) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	changed := false
	err = s.Mutate(ctx, func(d *document.Document) error {
		t, _, err := d.FindTask(id)
		if err != nil {
			return err
		}
		if t.Done == done {
			return nil
		}
		changed = true
		_, err = d.ToggleTask(id, s.Now())
		return err
	})
	if err != nil {
		return err
	}
	switch {
	case !changed && done:
		fmt.Fprintf(g.Out, "Task %s already done\n", id)
	case !changed:
		fmt.Fprintf(g.Out, "Task %s not done\n", id)
	case done:
		fmt.Fprintf(g.Out, "Completed %s\n", id)
	default:
		fmt.Fprintf(g.Out, "Reopened %s\n", id)
	}
	return nil
}

type TaskShowCmd struct {
	ID string `arg:"" help:"Task id"`
}

func (c *TaskShowCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	t, day, err := s.Snapshot().FindTask(c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "%s %s (day %d, %d min)\n", check(t.Done), t.Title, day, t.EstimatedMinutes)
	fmt.Fprintf(g.Out, "%s\n", t.Description)
	if t.DoneAt != nil {
		fmt.Fprintf(g.Out, "Completed: %s\n", formatTime(*t.DoneAt))
	}
	if t.Notes != "" {
		fmt.Fprintf(g.Out, "\n%s\n", t.Notes)
	}
	return nil
}

type TaskNoteCmd struct {
	ID   string   `arg:"" help:"Task id"`
	Text []string `arg:"" optional:"" help:"Notes text (empty clears)"`
}

func (c *TaskNoteCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	notes := strings.Join(c.Text, " ")
	if err := s.Mutate(ctx, func(d *document.Document) error { return d.SetTaskNotes(c.ID, notes) }); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Notes saved")
	return nil
}

type TaskArchiveNoteCmd struct {
	ID string `arg:"" help:"Task id"`
}

func (c *TaskArchiveNoteCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.Mutate(ctx, func(d *document.Document) error { return d.ArchiveTaskNotes(c.ID, s.Now()) }); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Notes archived")
	return nil
}

type TaskRemoveCmd struct {
	ID string `arg:"" help:"Task id"`
}

func (c *TaskRemoveCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.Mutate(ctx, func(d *document.Document) error { return d.RemoveTask(c.ID) }); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Removed %s\n", c.ID)
	return nil
}
