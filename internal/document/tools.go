package document

import "git.home.luguber.info/inful/kaizen/internal/ids"

// ToolPatch carries optional tool field updates.
type ToolPatch struct {
	Name         *string
	DailyCost    *float64
	PurchaseCost *float64
	Enabled      *bool
}

// AddTool appends a placeholder tool and returns it.
func (d *Document) AddTool(src ids.Source) *Tool {
	t := &Tool{ID: ids.New(src, "tool"), Name: "New Tool", Enabled: true}
	d.Tools = append(d.Tools, t)
	return t
}

// FindTool looks a tool up by id.
func (d *Document) FindTool(id string) (*Tool, error) {
	for _, t := range d.Tools {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, notFound("tool", id)
}

// RemoveTool deletes a tool.
func (d *Document) RemoveTool(id string) error {
	for i, t := range d.Tools {
		if t.ID == id {
			d.Tools = append(d.Tools[:i:i], d.Tools[i+1:]...)
			return nil
		}
	}
	return notFound("tool", id)
}

// UpdateTool applies a patch. Negative costs are rejected before anything changes.
func (d *Document) UpdateTool(id string, p ToolPatch) (*Tool, error) {
	t, err := d.FindTool(id)
	if err != nil {
		return nil, err
	}
	if p.DailyCost != nil && *p.DailyCost < 0 {
		return nil, invalid("daily cost must not be negative").WithContext("id", id).Build()
	}
	if p.PurchaseCost != nil && *p.PurchaseCost < 0 {
		return nil, invalid("purchase cost must not be negative").WithContext("id", id).Build()
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.DailyCost != nil {
		t.DailyCost = *p.DailyCost
	}
	if p.PurchaseCost != nil {
		t.PurchaseCost = *p.PurchaseCost
	}
	if p.Enabled != nil {
		t.Enabled = *p.Enabled
	}
	return t, nil
}
