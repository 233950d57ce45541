package commands

import (
	"context"
	"fmt"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/report"
	"git.home.luguber.info/inful/kaizen/internal/roadmap"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct {
	Phase string `help:"Only show days of this phase"`
}

func (c *StatusCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	if c.Phase != "" && !roadmap.IsPhase(c.Phase) {
		return unknownPhase(c.Phase)
	}
	doc := s.Snapshot()
	costs := doc.ComputeCosts()

	fmt.Fprintf(g.Out, "Project:   %s\n", doc.Meta.ProjectName)
	fmt.Fprintf(g.Out, "Created:   %s\n", formatTime(doc.Meta.CreatedAt))
	if doc.Meta.LastSaved != nil {
		fmt.Fprintf(g.Out, "Saved:     %s\n", formatTime(*doc.Meta.LastSaved))
	}
	fmt.Fprintf(g.Out, "Progress:  %s\n", formatProgress(doc.Progress()))
	fmt.Fprintf(g.Out, "Costs/day: %s (tools %s, labor %s, misc %s)\n",
		report.Money(costs.GrandDaily), report.Money(costs.ToolsDaily),
		report.Money(costs.LaborDaily), report.Money(costs.MiscDaily))
	fmt.Fprintf(g.Out, "Purchases: %s\n\n", report.Money(costs.ToolsPurchase))

	tw := table(g.Out)
	if c.Phase == "" {
		fmt.Fprintln(tw, "PHASE\tPROGRESS")
		for _, name := range roadmap.PhaseNames() {
			fmt.Fprintf(tw, "%s\t%s\n", name, formatProgress(doc.PhaseProgress(name)))
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintln(tw, "DAY\tPHASE\tPROGRESS")
	for _, day := range doc.Roadmap {
		if c.Phase != "" && day.Phase != c.Phase {
			continue
		}
		p, err := doc.DayProgress(day.Day)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", day.Day, day.Phase, formatProgress(p))
	}
	return tw.Flush()
}

func unknownPhase(name string) error {
	return ferrors.ValidationError("unknown phase").
		WithContext("phase", name).
		WithContext("known", roadmap.PhaseNames()).
		Build()
}

// RoadmapCmd implements the 'roadmap' command.
type RoadmapCmd struct {
	Phase string `help:"Only show days of this phase"`
	Day   int    `help:"Only show this day"`
}

func (c *RoadmapCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	if c.Phase != "" && !roadmap.IsPhase(c.Phase) {
		return unknownPhase(c.Phase)
	}
	doc := s.Snapshot()
	if c.Day != 0 {
		if _, ok := doc.Day(c.Day); !ok {
			return ferrors.NotFoundError("day not in roadmap").WithContext("day", c.Day).Build()
		}
	}

	for _, day := range doc.Roadmap {
		if c.Phase != "" && day.Phase != c.Phase {
			continue
		}
		if c.Day != 0 && day.Day != c.Day {
			continue
		}
		p, _ := doc.DayProgress(day.Day)
		fmt.Fprintf(g.Out, "Day %d  %s  %s\n", day.Day, day.Phase, formatProgress(p))
		tw := table(g.Out)
		for _, t := range day.Tasks {
			notes := ""
			if t.Notes != "" {
				notes = "  notes: " + oneLine(t.Notes, 40)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%dm%s\n", check(t.Done), t.ID, t.Title, t.EstimatedMinutes, notes)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
