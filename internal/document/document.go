package document

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/ids"
	"git.home.luguber.info/inful/kaizen/internal/roadmap"
)

const (
	// DefaultProjectName is used for fresh documents.
	DefaultProjectName = "Kaizen Automation"
	// DefaultAutoSaveIntervalMs is the autosave period of fresh documents.
	DefaultAutoSaveIntervalMs = 10000
)

// Document is the root aggregate.
type Document struct {
	SchemaVersion string            `json:"schemaVersion"`
	Meta          Meta              `json:"meta"`
	Tools         []*Tool           `json:"tools"`
	Costs         Costs             `json:"costs"`
	Roadmap       []roadmap.DayPlan `json:"roadmap"`
	Diary         []*Note           `json:"diary"`
	Settings      Settings          `json:"settings"`
}

// Meta holds project level information.
type Meta struct {
	ProjectName string     `json:"projectName"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastSaved   *time.Time `json:"lastSaved"`
}

// Tool is a paid service counted by the cost calculator.
type Tool struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DailyCost    float64 `json:"dailyCost"`
	PurchaseCost float64 `json:"purchaseCost"`
	Enabled      bool    `json:"enabled"`
}

// CostInputs are the calculator inputs, also used as preset snapshots.
type CostInputs struct {
	WorkerCount   int     `json:"workerCount"`
	CostPerWorker float64 `json:"costPerWorker"`
	MiscDailyCost float64 `json:"miscDailyCost"`
}

// Costs holds the live calculator inputs and the saved presets.
type Costs struct {
	CostInputs
	Presets map[string]CostInputs `json:"presets"`
}

// Note is a diary entry.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	Archived  bool      `json:"archived"`
}

// Settings holds client behaviour knobs.
type Settings struct {
	AutoSaveIntervalMs int `json:"autoSaveIntervalMs"`
}

// AutoSaveInterval returns the autosave period, falling back to the default
// for non-positive values.
func (s Settings) AutoSaveInterval() time.Duration {
	ms := s.AutoSaveIntervalMs
	if ms <= 0 {
		ms = DefaultAutoSaveIntervalMs
	}
	return time.Duration(ms) * time.Millisecond
}

// New builds the default document with a freshly generated roadmap.
func New(now time.Time, src ids.Source) (*Document, error) {
	plans, err := roadmap.Generate(src)
	if err != nil {
		return nil, err
	}
	return &Document{
		SchemaVersion: CurrentSchemaVersion,
		Meta:          defaultMeta(now),
		Tools:         defaultTools(src),
		Costs:         defaultCosts(),
		Roadmap:       plans,
		Diary:         []*Note{},
		Settings:      Settings{AutoSaveIntervalMs: DefaultAutoSaveIntervalMs},
	}, nil
}

func defaultMeta(now time.Time) Meta {
	return Meta{ProjectName: DefaultProjectName, CreatedAt: now}
}

func defaultTools(src ids.Source) []*Tool {
	return []*Tool{
		{ID: ids.New(src, "twilio"), Name: "Twilio", DailyCost: 8, Enabled: true},
		{ID: ids.New(src, "vapi"), Name: "Vapi", DailyCost: 6, Enabled: true},
		{ID: ids.New(src, "wa"), Name: "WhatsApp Cloud", DailyCost: 2, Enabled: true},
	}
}

func defaultCosts() Costs {
	return Costs{
		CostInputs: CostInputs{WorkerCount: 3, CostPerWorker: 80, MiscDailyCost: 10},
		Presets:    map[string]CostInputs{},
	}
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	data, err := json.Marshal(d)
	if err != nil {
		// Every field of Document is JSON-safe.
		panic(err)
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	out.normalize()
	return &out
}

// Day returns the plan for day n.
func (d *Document) Day(n int) (*roadmap.DayPlan, bool) {
	for i := range d.Roadmap {
		if d.Roadmap[i].Day == n {
			return &d.Roadmap[i], true
		}
	}
	return nil, false
}

// normalize replaces nil collections with empty ones so they encode as [] / {}.
func (d *Document) normalize() {
	if d.Tools == nil {
		d.Tools = []*Tool{}
	}
	if d.Roadmap == nil {
		d.Roadmap = []roadmap.DayPlan{}
	}
	for i := range d.Roadmap {
		if d.Roadmap[i].Tasks == nil {
			d.Roadmap[i].Tasks = []*roadmap.Task{}
		}
	}
	if d.Diary == nil {
		d.Diary = []*Note{}
	}
	if d.Costs.Presets == nil {
		d.Costs.Presets = map[string]CostInputs{}
	}
}
