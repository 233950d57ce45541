package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/report"
)

// SaveCmd persists the document to the local store.
type SaveCmd struct{}

func (c *SaveCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Saved locally")
	return nil
}

// ExportCmd groups export formats.
type ExportCmd struct {
	JSON   ExportJSONCmd   `cmd:"" name:"json" help:"Export the whole document as JSON"`
	Day    ExportDayCmd    `cmd:"" help:"Export one roadmap day as JSON"`
	Report ExportReportCmd `cmd:"" help:"Write the project summary"`
}

type ExportJSONCmd struct {
	Out string `short:"o" type:"path" help:"Write to file instead of stdout"`
}

func (c *ExportJSONCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	data, err := s.Export()
	if err != nil {
		return err
	}
	return emit(g, c.Out, data)
}

type ExportDayCmd struct {
	Day int    `arg:"" help:"Day number"`
	Out string `short:"o" type:"path" help:"Write to file instead of stdout"`
}

func (c *ExportDayCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	day, ok := s.Snapshot().Day(c.Day)
	if !ok {
		return ferrors.NotFoundError("day not in roadmap").WithContext("day", c.Day).Build()
	}
	data, err := json.MarshalIndent(day, "", "  ")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "encode day").Build()
	}
	return emit(g, c.Out, append(data, '\n'))
}

func emit(g *Global, path string, data []byte) error {
	if path == "" {
		_, err := g.Out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferrors.FileSystemError("write export").WithCause(err).WithContext("path", path).Build()
	}
	fmt.Fprintf(g.Out, "Wrote %s\n", path)
	return nil
}

type ExportReportCmd struct {
	Format string `enum:"md,html,both" default:"both" help:"Output format (${enum})"`
	Dir    string `type:"path" default:"." help:"Output directory"`
}

func (c *ExportReportCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	doc := s.Snapshot()
	now := s.Now()
	if err := os.MkdirAll(c.Dir, 0o750); err != nil {
		return ferrors.FileSystemError("create output directory").WithCause(err).WithContext("path", c.Dir).Build()
	}

	type output struct {
		ext    string
		render func() ([]byte, error)
	}
	var outputs []output
	if c.Format == "md" || c.Format == "both" {
		outputs = append(outputs, output{"md", func() ([]byte, error) { return report.Markdown(doc, now) }})
	}
	if c.Format == "html" || c.Format == "both" {
		outputs = append(outputs, output{"html", func() ([]byte, error) { return report.HTML(doc, now) }})
	}
	for _, o := range outputs {
		data, err := o.render()
		if err != nil {
			return err
		}
		if err := emit(g, filepath.Join(c.Dir, report.FileName(doc.Meta.ProjectName, o.ext)), data); err != nil {
			return err
		}
	}
	return nil
}

// ImportCmd replaces the document with a JSON file.
type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"JSON document to import"`
}

func (c *ImportCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(c.File)
	if err != nil {
		return ferrors.FileSystemError("read import file").WithCause(err).WithContext("path", c.File).Build()
	}
	rep, err := s.Import(ctx, raw)
	if err != nil {
		return err
	}
	if rep.Changed() {
		fmt.Fprintf(g.Out, "Migrated from schema %s\n", rep.From)
	}
	fmt.Fprintln(g.Out, "Imported JSON")
	return nil
}
