package document

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/ids"
	"git.home.luguber.info/inful/kaizen/internal/roadmap"
)

const (
	// CurrentSchemaVersion is written into every saved document.
	CurrentSchemaVersion = "1.0.0"
	// LegacySchemaVersion is assumed for documents without a schemaVersion.
	LegacySchemaVersion = "0.0.0"
)

// MigrationReport describes what Migrate or ParseImport changed.
type MigrationReport struct {
	From               string
	To                 string
	Applied            []string
	Backfilled         []string
	Dropped            []string
	RoadmapRegenerated bool
}

// Changed reports whether the stored form differs from the decoded document.
func (r MigrationReport) Changed() bool {
	return len(r.Applied) > 0 || len(r.Backfilled) > 0 || len(r.Dropped) > 0 || r.RoadmapRegenerated
}

type migration struct {
	from, to string
	name     string
	apply    func(map[string]any)
}

var migrations = []migration{
	{from: "0.0.0", to: "1.0.0", name: "rename-legacy-keys", apply: renameLegacyKeys},
}

var sectionKeys = []string{"meta", "tools", "costs", "roadmap", "diary", "settings"}

// Migrate upgrades a stored document to the current schema and backfills
// missing sections from defaults. It does not apply schema validation.
// Sections are decoded one at a time: a section of the wrong shape is
// replaced by its default and listed in MigrationReport.Dropped, the rest of
// the document is kept.
func Migrate(raw []byte, now time.Time, src ids.Source) (*Document, MigrationReport, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return nil, MigrationReport{}, err
	}
	report, err := upgrade(m)
	if err != nil {
		return nil, report, err
	}
	coerceIntegers(m)

	d := &Document{}
	decoded := map[string]bool{
		"meta":     decodeSection(m["meta"], &d.Meta),
		"tools":    decodeSection(m["tools"], &d.Tools),
		"costs":    decodeSection(m["costs"], &d.Costs),
		"roadmap":  decodeSection(m["roadmap"], &d.Roadmap),
		"diary":    decodeSection(m["diary"], &d.Diary),
		"settings": decodeSection(m["settings"], &d.Settings),
	}
	for _, key := range sectionKeys {
		if decoded[key] {
			continue
		}
		if m[key] != nil {
			report.Dropped = append(report.Dropped, key)
		}
		report.Backfilled = append(report.Backfilled, key)
		switch key {
		case "meta":
			d.Meta = defaultMeta(now)
		case "tools":
			d.Tools = defaultTools(src)
		case "costs":
			d.Costs = defaultCosts()
		}
	}
	d.Tools = slices.DeleteFunc(d.Tools, func(t *Tool) bool { return t == nil })
	d.Diary = slices.DeleteFunc(d.Diary, func(n *Note) bool { return n == nil })
	if err := finish(d, &report, src); err != nil {
		return nil, report, err
	}
	return d, report, nil
}

// ParseImport is the strict counterpart of Migrate used for imports and remote
// loads: after the upgrade, the document must satisfy the JSON Schema and the
// Go-side invariants.
func ParseImport(raw []byte, src ids.Source) (*Document, MigrationReport, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return nil, MigrationReport{}, err
	}
	report, err := upgrade(m)
	if err != nil {
		return nil, report, err
	}
	if err := validateValue(m); err != nil {
		return nil, report, err
	}
	d, err := decodeMap(m)
	if err != nil {
		return nil, report, err
	}
	if err := CheckInvariants(d); err != nil {
		return nil, report, err
	}
	if err := finish(d, &report, src); err != nil {
		return nil, report, err
	}
	return d, report, nil
}

func finish(d *Document, report *MigrationReport, src ids.Source) error {
	d.SchemaVersion = CurrentSchemaVersion
	d.normalize()
	if len(d.Roadmap) == 0 {
		plans, err := roadmap.Generate(src)
		if err != nil {
			return err
		}
		d.Roadmap = plans
		report.RoadmapRegenerated = true
	}
	if d.Settings.AutoSaveIntervalMs <= 0 {
		d.Settings.AutoSaveIntervalMs = DefaultAutoSaveIntervalMs
		report.Backfilled = append(report.Backfilled, "settings.autoSaveIntervalMs")
	}
	return nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, ferrors.SchemaError("document is not a JSON object").WithCause(err).Build()
	}
	if m == nil {
		return nil, ferrors.SchemaError("document is not a JSON object").Build()
	}
	return m, nil
}

// decodeSection decodes v into dst. dst is left untouched when v is absent,
// null or of the wrong shape.
func decodeSection[T any](v any, dst *T) bool {
	if v == nil {
		return false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return false
	}
	*dst = out
	return true
}

func decodeMap(m map[string]any) (*Document, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "re-encode document").Build()
	}
	return Unmarshal(data)
}

// upgrade walks the migration chain from the stored version to the current one.
func upgrade(m map[string]any) (MigrationReport, error) {
	report := MigrationReport{From: LegacySchemaVersion, To: CurrentSchemaVersion}
	if v, ok := m["schemaVersion"]; ok {
		s, isString := v.(string)
		if !isString {
			return report, ferrors.SchemaError("schemaVersion must be a string").Build()
		}
		report.From = s
	}
	from, err := semver.NewVersion(report.From)
	if err != nil {
		return report, ferrors.SchemaError("invalid schemaVersion").
			WithCause(err).WithContext("schemaVersion", report.From).Build()
	}
	current := semver.MustParse(CurrentSchemaVersion)
	if from.GreaterThan(current) {
		return report, ferrors.SchemaError("unsupported schemaVersion").
			WithCause(ErrNewerSchema).WithContext("schemaVersion", report.From).Build()
	}
	for from.LessThan(current) {
		step, ok := migrationFrom(from)
		if !ok {
			return report, ferrors.SchemaError("no migration path").
				WithContext("schemaVersion", from.String()).Build()
		}
		step.apply(m)
		report.Applied = append(report.Applied, step.name)
		from = semver.MustParse(step.to)
	}
	m["schemaVersion"] = CurrentSchemaVersion
	return report, nil
}

func migrationFrom(v *semver.Version) (migration, bool) {
	for _, step := range migrations {
		if semver.MustParse(step.from).Equal(v) {
			return step, true
		}
	}
	return migration{}, false
}

// renameLegacyKeys maps the browser-era field names onto the current ones.
func renameLegacyKeys(m map[string]any) {
	delete(m, "templates")
	for _, t := range objects(m["tools"]) {
		rename(t, "daily", "dailyCost")
		rename(t, "purchase", "purchaseCost")
		coerceNumbers(t, "dailyCost", "purchaseCost")
	}
	if costs, ok := m["costs"].(map[string]any); ok {
		renameCosts(costs)
		if presets, ok := costs["presets"].(map[string]any); ok {
			for _, p := range presets {
				if pm, ok := p.(map[string]any); ok {
					renameCosts(pm)
				}
			}
		}
	}
	for _, day := range objects(m["roadmap"]) {
		for _, t := range objects(day["tasks"]) {
			rename(t, "desc", "description")
			rename(t, "estMinutes", "estimatedMinutes")
		}
	}
	if s, ok := m["settings"].(map[string]any); ok {
		rename(s, "autoSaveInterval", "autoSaveIntervalMs")
		coerceNumbers(s, "autoSaveIntervalMs")
	}
	coerceIntegers(m)
}

// coerceIntegers rounds fractional values of the integer fields. The browser
// client stored whatever Number(input) produced, so 2.5 workers is real data.
func coerceIntegers(m map[string]any) {
	if costs, ok := m["costs"].(map[string]any); ok {
		roundNumbers(costs, "workerCount")
		if presets, ok := costs["presets"].(map[string]any); ok {
			for _, p := range presets {
				if pm, ok := p.(map[string]any); ok {
					roundNumbers(pm, "workerCount")
				}
			}
		}
	}
	for _, day := range objects(m["roadmap"]) {
		roundNumbers(day, "day")
		for _, t := range objects(day["tasks"]) {
			roundNumbers(t, "estimatedMinutes")
		}
	}
	if s, ok := m["settings"].(map[string]any); ok {
		roundNumbers(s, "autoSaveIntervalMs")
	}
}

func roundNumbers(m map[string]any, keys ...string) {
	for _, k := range keys {
		if f, ok := m[k].(float64); ok && f != math.Trunc(f) {
			m[k] = math.Round(f)
		}
	}
}

func renameCosts(c map[string]any) {
	rename(c, "numWorkers", "workerCount")
	rename(c, "perWorker", "costPerWorker")
	rename(c, "miscDaily", "miscDailyCost")
	coerceNumbers(c, "workerCount", "costPerWorker", "miscDailyCost")
}

func rename(m map[string]any, from, to string) {
	v, ok := m[from]
	if !ok {
		return
	}
	delete(m, from)
	if _, exists := m[to]; !exists {
		m[to] = v
	}
}

// coerceNumbers converts numeric strings left behind by form inputs.
func coerceNumbers(m map[string]any, keys ...string) {
	for _, k := range keys {
		s, ok := m[k].(string)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			f = 0
		}
		m[k] = f
	}
}

func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
