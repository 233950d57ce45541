package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/kaizen/internal/document"
	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/report"
)

// ToolCmd groups tool operations.
type ToolCmd struct {
	List   ToolListCmd   `cmd:"" default:"1" help:"List tools"`
	Add    ToolAddCmd    `cmd:"" help:"Add a tool"`
	Set    ToolSetCmd    `cmd:"" help:"Update tool fields"`
	Remove ToolRemoveCmd `cmd:"" help:"Remove a tool"`
}

type ToolListCmd struct{}

func (c *ToolListCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	tw := table(g.Out)
	fmt.Fprintln(tw, "ID\tNAME\tDAILY\tPURCHASE\tENABLED")
	for _, t := range s.Snapshot().Tools {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name,
			money(t.DailyCost), money(t.PurchaseCost), yesNo(t.Enabled))
	}
	return tw.Flush()
}

type ToolAddCmd struct {
	Name     string  `arg:"" optional:"" help:"Tool name"`
	Daily    float64 `help:"Daily cost"`
	Purchase float64 `help:"One-off purchase cost"`
	Disabled bool    `help:"Add the tool disabled"`
}

func (c *ToolAddCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	var added *document.Tool
	err = s.Mutate(ctx, func(d *document.Document) error {
		t := d.AddTool(s.IDs())
		patch := document.ToolPatch{}
		if c.Name != "" {
			patch.Name = &c.Name
		}
		if c.Daily != 0 {
			patch.DailyCost = &c.Daily
		}
		if c.Purchase != 0 {
			patch.PurchaseCost = &c.Purchase
		}
		if c.Disabled {
			enabled := false
			patch.Enabled = &enabled
		}
		var err error
		added, err = d.UpdateTool(t.ID, patch)
		if err != nil {
			_ = d.RemoveTool(t.ID)
		}
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Added %s (%s)\n", added.Name, added.ID)
	return nil
}

type ToolSetCmd struct {
	ID       string   `arg:"" help:"Tool id"`
	Name     *string  `help:"New name"`
	Daily    *float64 `help:"Daily cost"`
	Purchase *float64 `help:"One-off purchase cost"`
	Enabled  *bool    `help:"Enable or disable"`
}

func (c *ToolSetCmd) Run(g *Global, root *CLI) error {
	if c.Name == nil && c.Daily == nil && c.Purchase == nil && c.Enabled == nil {
		return ferrors.ValidationError("nothing to update").
			WithHint("pass --name, --daily, --purchase or --enabled").Build()
	}
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	err = s.Mutate(ctx, func(d *document.Document) error {
		_, err := d.UpdateTool(c.ID, document.ToolPatch{
			Name:         c.Name,
			DailyCost:    c.Daily,
			PurchaseCost: c.Purchase,
			Enabled:      c.Enabled,
		})
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Updated %s\n", c.ID)
	return nil
}

type ToolRemoveCmd struct {
	ID string `arg:"" help:"Tool id"`
}

func (c *ToolRemoveCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.Mutate(ctx, func(d *document.Document) error { return d.RemoveTool(c.ID) }); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Removed %s\n", c.ID)
	return nil
}

// CostsCmd groups the cost calculator operations.
type CostsCmd struct {
	Show CostsShowCmd `cmd:"" default:"1" help:"Show the cost breakdown"`
	Set  CostsSetCmd  `cmd:"" help:"Set calculator inputs"`
}

type CostsShowCmd struct{}

func (c *CostsShowCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	doc := s.Snapshot()
	sum := doc.ComputeCosts()
	tw := table(g.Out)
	fmt.Fprintf(tw, "Workers\t%d x %s\n", doc.Costs.WorkerCount, money(doc.Costs.CostPerWorker))
	fmt.Fprintf(tw, "Tools/day\t%s\n", report.Money(sum.ToolsDaily))
	fmt.Fprintf(tw, "Labor/day\t%s\n", report.Money(sum.LaborDaily))
	fmt.Fprintf(tw, "Misc/day\t%s\n", report.Money(sum.MiscDaily))
	fmt.Fprintf(tw, "Total/day\t%s\n", report.Money(sum.GrandDaily))
	fmt.Fprintf(tw, "Purchases\t%s\n", report.Money(sum.ToolsPurchase))
	return tw.Flush()
}

type CostsSetCmd struct {
	Workers       *int     `help:"Number of workers"`
	CostPerWorker *float64 `name:"cost-per-worker" help:"Daily cost per worker"`
	Misc          *float64 `help:"Miscellaneous daily cost"`
}

func (c *CostsSetCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	err = s.Mutate(ctx, func(d *document.Document) error {
		in := d.Costs.CostInputs
		if c.Workers != nil {
			in.WorkerCount = *c.Workers
		}
		if c.CostPerWorker != nil {
			in.CostPerWorker = *c.CostPerWorker
		}
		if c.Misc != nil {
			in.MiscDailyCost = *c.Misc
		}
		return d.SetCosts(in)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Costs updated")
	return nil
}

// PresetCmd groups cost preset operations.
type PresetCmd struct {
	List  PresetListCmd  `cmd:"" default:"1" help:"List presets"`
	Save  PresetSaveCmd  `cmd:"" help:"Save current inputs as a preset"`
	Apply PresetApplyCmd `cmd:"" help:"Load a preset into the calculator"`
}

type PresetListCmd struct{}

func (c *PresetListCmd) Run(g *Global, root *CLI) error {
	s, err := g.Store(context.Background(), root)
	if err != nil {
		return err
	}
	doc := s.Snapshot()
	names := doc.PresetNames()
	if len(names) == 0 {
		fmt.Fprintln(g.Out, "No presets.")
		return nil
	}
	tw := table(g.Out)
	fmt.Fprintln(tw, "NAME\tWORKERS\tPER WORKER\tMISC")
	for _, name := range names {
		p := doc.Costs.Presets[name]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", name, p.WorkerCount,
			money(p.CostPerWorker), money(p.MiscDailyCost))
	}
	return tw.Flush()
}

type PresetSaveCmd struct {
	Name string `arg:"" help:"Preset name"`
}

func (c *PresetSaveCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.Mutate(ctx, func(d *document.Document) error { return d.SavePreset(c.Name) }); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Preset %q saved\n", c.Name)
	return nil
}

type PresetApplyCmd struct {
	Name string `arg:"" help:"Preset name"`
}

func (c *PresetApplyCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.Mutate(ctx, func(d *document.Document) error { return d.ApplyPreset(c.Name) }); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Preset %q applied\n", c.Name)
	return nil
}
