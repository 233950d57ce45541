package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/document"
)

// DiaryCmd groups diary operations.
type DiaryCmd struct {
	List    DiaryListCmd    `cmd:"" default:"1" help:"List notes, pinned first"`
	Add     DiaryAddCmd     `cmd:"" help:"Add a note"`
	Show    DiaryShowCmd    `cmd:"" help:"Show a note"`
	Edit    DiaryEditCmd    `cmd:"" help:"Replace a note's content"`
	Archive DiaryArchiveCmd `cmd:"" help:"Toggle a note's archived flag"`
	Pin     DiaryPinCmd     `cmd:"" help:"Toggle a note's pinned flag"`
	Delete  DiaryDeleteCmd  `cmd:"" help:"Delete a note"`
}

type DiaryListCmd struct {
	Archived bool `help:"Include archived notes"`
}

func (c *DiaryListCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	notes := make([]*document.Note, 0)
	for _, n := range s.Snapshot().Diary {
		if n.Archived && !c.Archived {
			continue
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		fmt.Fprintln(g.Out, "No notes.")
		return nil
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Pinned && !notes[j].Pinned })

	tw := table(g.Out)
	fmt.Fprintln(tw, "ID\tCREATED\tFLAGS\tTITLE")
	for _, n := range notes {
		var flags []string
		if n.Pinned {
			flags = append(flags, "pinned")
		}
		if n.Archived {
			flags = append(flags, "archived")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, formatTime(n.CreatedAt), strings.Join(flags, ","), oneLine(n.Title, 0))
	}
	return tw.Flush()
}

type DiaryAddCmd struct {
	Text []string `arg:"" optional:"" help:"Note content"`
}

func (c *DiaryAddCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	var added *document.Note
	err = s.Mutate(ctx, func(d *document.Document) error {
		var err error
		added, err = d.AddNote(strings.Join(c.Text, " "), s.Now(), s.IDs())
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Note added (%s)\n", added.ID)
	return nil
}

type DiaryShowCmd struct {
	ID string `arg:"" help:"Note id"`
}

func (c *DiaryShowCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	n, err := s.Snapshot().FindNote(c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "%s  %s\n\n%s\n", n.Title, formatTime(n.CreatedAt), n.Content)
	return nil
}

type DiaryEditCmd struct {
	ID   string   `arg:"" help:"Note id"`
	Text []string `arg:"" help:"New content"`
}

func (c *DiaryEditCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.Mutate(ctx, func(d *document.Document) error {
		return d.EditNote(c.ID, strings.Join(c.Text, " "))
	}); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Note updated")
	return nil
}

type DiaryArchiveCmd struct {
	ID string `arg:"" help:"Note id"`
}

func (c *DiaryArchiveCmd) Run(g *Global, root *CLI) error {
	return toggleNote(g, root, c.ID, (*document.Document).ToggleArchive, func(n *document.Note) string {
		if n.Archived {
			return "Note archived"
		}
		return "Note restored"
	})
}

type DiaryPinCmd struct {
	ID string `arg:"" help:"Note id"`
}

func (c *DiaryPinCmd) Run(g *Global, root *CLI) error {
	return toggleNote(g, root, c.ID, (*document.Document).TogglePin, func(n *document.Note) string {
		if n.Pinned {
			return "Note pinned"
		}
		return "Note unpinned"
	})
}

func toggleNote(g *Global, root *CLI, id string,
	toggle func(*document.Document, string) (*document.Note, error),
	message func(*document.Note) string,
) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	var msg string
	err = s.Mutate(ctx, func(d *document.Document) error {
		n, err := toggle(d, id)
		if err != nil {
			return err
		}
		msg = message(n)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, msg)
	return nil
}

type DiaryDeleteCmd struct {
	ID string `arg:"" help:"Note id"`
}

func (c *DiaryDeleteCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.Mutate(ctx, func(d *document.Document) error { return d.DeleteNote(c.ID) }); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Note deleted")
	return nil
}

// ProjectCmd groups project metadata operations.
type ProjectCmd struct {
	Rename ProjectRenameCmd `cmd:"" help:"Rename the project"`
}

type ProjectRenameCmd struct {
	Name []string `arg:"" help:"New project name"`
}

func (c *ProjectRenameCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	name := strings.Join(c.Name, " ")
	if err := s.Mutate(ctx, func(d *document.Document) error { return d.SetProjectName(name) }); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Project renamed to %q\n", strings.TrimSpace(name))
	return nil
}

// SettingsCmd groups client settings.
type SettingsCmd struct {
	Autosave SettingsAutosaveCmd `cmd:"" help:"Set the autosave interval in milliseconds"`
}

type SettingsAutosaveCmd struct {
	Ms int `arg:"" help:"Interval in milliseconds"`
}

func (c *SettingsAutosaveCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.Mutate(ctx, func(d *document.Document) error { return d.SetAutoSaveInterval(c.Ms) }); err != nil {
		return err
	}
	if err := s.RestartAutosave(ctx); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Autosave every %s\n", time.Duration(c.Ms)*time.Millisecond)
	return nil
}
