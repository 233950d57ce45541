package document

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CostSummary is the output of the cost calculator. Amounts are per day except
// ToolsPurchase, the one-off total of enabled tools.
type CostSummary struct {
	ToolsDaily    decimal.Decimal
	LaborDaily    decimal.Decimal
	MiscDaily     decimal.Decimal
	GrandDaily    decimal.Decimal
	ToolsPurchase decimal.Decimal
}

// Validate rejects negative inputs.
func (c CostInputs) Validate() error {
	switch {
	case c.WorkerCount < 0:
		return invalid("worker count must not be negative").Build()
	case c.CostPerWorker < 0:
		return invalid("cost per worker must not be negative").Build()
	case c.MiscDailyCost < 0:
		return invalid("misc daily cost must not be negative").Build()
	}
	return nil
}

// SetCosts replaces the live calculator inputs.
func (d *Document) SetCosts(in CostInputs) error {
	if err := in.Validate(); err != nil {
		return err
	}
	d.Costs.CostInputs = in
	return nil
}

// SavePreset snapshots the live inputs under name, overwriting any existing preset.
func (d *Document) SavePreset(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("preset name is required").Build()
	}
	if d.Costs.Presets == nil {
		d.Costs.Presets = map[string]CostInputs{}
	}
	d.Costs.Presets[name] = d.Costs.CostInputs
	return nil
}

// ApplyPreset copies a preset into the live inputs.
func (d *Document) ApplyPreset(name string) error {
	p, ok := d.Costs.Presets[name]
	if !ok {
		return notFound("preset", name)
	}
	d.Costs.CostInputs = p
	return nil
}

// PresetNames lists preset names in lexical order.
func (d *Document) PresetNames() []string {
	names := make([]string, 0, len(d.Costs.Presets))
	for n := range d.Costs.Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ComputeCosts runs the calculator. Only enabled tools count.
func (d *Document) ComputeCosts() CostSummary {
	var s CostSummary
	for _, t := range d.Tools {
		if !t.Enabled {
			continue
		}
		s.ToolsDaily = s.ToolsDaily.Add(decimal.NewFromFloat(t.DailyCost))
		s.ToolsPurchase = s.ToolsPurchase.Add(decimal.NewFromFloat(t.PurchaseCost))
	}
	s.LaborDaily = decimal.NewFromInt(int64(d.Costs.WorkerCount)).
		Mul(decimal.NewFromFloat(d.Costs.CostPerWorker))
	s.MiscDaily = decimal.NewFromFloat(d.Costs.MiscDailyCost)
	s.GrandDaily = s.ToolsDaily.Add(s.LaborDaily).Add(s.MiscDaily)
	return s
}
