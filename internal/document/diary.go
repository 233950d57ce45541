package document

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/ids"
)

const noteTitleRunes = 40

// NoteTitle derives a title from the first 40 characters of content.
func NoteTitle(content string) string {
	r := []rune(content)
	if len(r) > noteTitleRunes {
		r = r[:noteTitleRunes]
	}
	if len(r) == 0 {
		return "Note"
	}
	return string(r)
}

// AddNote prepends a new note so the diary stays newest first.
func (d *Document) AddNote(content string, now time.Time, src ids.Source) (*Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("write something first").Build()
	}
	n := &Note{
		ID:        ids.New(src, "note"),
		Title:     NoteTitle(content),
		Content:   content,
		CreatedAt: now,
	}
	d.Diary = append([]*Note{n}, d.Diary...)
	return n, nil
}

// FindNote looks a note up by id.
func (d *Document) FindNote(id string) (*Note, error) {
	for _, n := range d.Diary {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, notFound("note", id)
}

// EditNote replaces the content. The title keeps the value derived at creation.
func (d *Document) EditNote(id, content string) error {
	n, err := d.FindNote(id)
	if err != nil {
		return err
	}
	n.Content = content
	return nil
}

// ToggleArchive flips the archived flag.
func (d *Document) ToggleArchive(id string) (*Note, error) {
	n, err := d.FindNote(id)
	if err != nil {
		return nil, err
	}
	n.Archived = !n.Archived
	return n, nil
}

// TogglePin flips the pinned flag.
func (d *Document) TogglePin(id string) (*Note, error) {
	n, err := d.FindNote(id)
	if err != nil {
		return nil, err
	}
	n.Pinned = !n.Pinned
	return n, nil
}

// DeleteNote removes a note.
func (d *Document) DeleteNote(id string) error {
	for i, n := range d.Diary {
		if n.ID == id {
			d.Diary = append(d.Diary[:i:i], d.Diary[i+1:]...)
			return nil
		}
	}
	return notFound("note", id)
}

// SetProjectName renames the project.
func (d *Document) SetProjectName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("project name is required").Build()
	}
	d.Meta.ProjectName = name
	return nil
}

// SetAutoSaveInterval changes the autosave period.
func (d *Document) SetAutoSaveInterval(ms int) error {
	if ms <= 0 {
		return invalid("autosave interval must be positive").WithContext("ms", ms).Build()
	}
	d.Settings.AutoSaveIntervalMs = ms
	return nil
}
