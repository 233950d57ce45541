package document

import (
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/ids"
)

const legacyDocument = `{
  "meta": {"projectName": "Legacy", "createdAt": "2024-05-01T10:00:00.000Z", "lastSaved": "2024-05-02T10:00:00.000Z"},
  "tools": [{"id": "twilio-abc", "name": "Twilio", "daily": "8", "purchase": 12.5, "enabled": true}],
  "costs": {"numWorkers": 2, "perWorker": 100, "miscDaily": 5, "presets": {"small": {"numWorkers": 1, "perWorker": 90, "miscDaily": 0}}},
  "roadmap": [{"day": 1, "phase": "Foundation", "tasks": [
    {"id": "d1t0-ab12", "title": "Set up Vapi", "desc": "Create assistant", "estMinutes": 30, "done": true, "doneAt": "2024-05-01T11:00:00.000Z", "notes": ""}
  ]}],
  "templates": {"messageTrees": {}, "sops": {}},
  "diary": [],
  "settings": {"autoSaveInterval": 5000}
}`

func TestMigrateLegacyDocument(t *testing.T) {
	d, report, err := Migrate([]byte(legacyDocument), testNow, ids.Fixed("x"))
	require.NoError(t, err)

	require.Equal(t, LegacySchemaVersion, report.From)
	require.Equal(t, []string{"rename-legacy-keys"}, report.Applied)
	require.Empty(t, report.Backfilled)
	require.False(t, report.RoadmapRegenerated)

	require.Equal(t, CurrentSchemaVersion, d.SchemaVersion)
	require.Equal(t, "Legacy", d.Meta.ProjectName)
	require.InDelta(t, 8.0, d.Tools[0].DailyCost, 0)
	require.InDelta(t, 12.5, d.Tools[0].PurchaseCost, 0)
	require.Equal(t, 2, d.Costs.WorkerCount)
	require.InDelta(t, 100.0, d.Costs.CostPerWorker, 0)
	require.Equal(t, CostInputs{WorkerCount: 1, CostPerWorker: 90}, d.Costs.Presets["small"])
	require.Len(t, d.Roadmap, 1)
	task := d.Roadmap[0].Tasks[0]
	require.Equal(t, "Create assistant", task.Description)
	require.Equal(t, 30, task.EstimatedMinutes)
	require.NotNil(t, task.DoneAt)
	require.Equal(t, 5000, d.Settings.AutoSaveIntervalMs)
}

func TestMigrateBackfillsSectionsIndependently(t *testing.T) {
	raw := `{"schemaVersion": "1.0.0", "meta": {"projectName": "Keep", "createdAt": "2024-01-01T00:00:00Z"}, "roadmap": []}`
	d, report, err := Migrate([]byte(raw), testNow, ids.Fixed("x"))
	require.NoError(t, err)

	require.Empty(t, report.Applied)
	require.ElementsMatch(t, []string{"tools", "costs", "diary", "settings", "settings.autoSaveIntervalMs"}, report.Backfilled)
	require.True(t, report.RoadmapRegenerated)
	require.Equal(t, "Keep", d.Meta.ProjectName)
	require.Len(t, d.Tools, 3)
	require.Equal(t, 3, d.Costs.WorkerCount)
	require.Len(t, d.Roadmap, 60)
	require.NotNil(t, d.Diary)
	require.Equal(t, DefaultAutoSaveIntervalMs, d.Settings.AutoSaveIntervalMs)
}

func TestMigrateRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{oops"},
		{"array", "[]"},
		{"null", "null"},
		{"bad version", `{"schemaVersion": "one"}`},
		{"numeric version", `{"schemaVersion": 1}`},
		{"no path", `{"schemaVersion": "0.5.0"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Migrate([]byte(tt.raw), testNow, ids.Fixed("x"))
			require.Error(t, err)
			require.True(t, ferrors.HasCategory(err, ferrors.CategorySchema))
		})
	}
}

func TestMigrateDropsOnlyMisshapenSections(t *testing.T) {
	raw := `{"schemaVersion": "1.0.0",
	  "meta": {"projectName": "Keep", "createdAt": "2024-01-01T00:00:00Z"},
	  "tools": "twilio",
	  "costs": {"workerCount": 2.5, "costPerWorker": 80, "miscDailyCost": 1},
	  "diary": [{"id": "n1", "title": "t", "content": "c", "createdAt": "2024-01-02T00:00:00Z"}],
	  "settings": {"autoSaveIntervalMs": "soon"}}`
	d, report, err := Migrate([]byte(raw), testNow, ids.Fixed("x"))
	require.NoError(t, err)

	require.Equal(t, []string{"tools", "settings"}, report.Dropped)
	require.Contains(t, report.Backfilled, "tools")
	require.True(t, report.Changed())
	require.Equal(t, "Keep", d.Meta.ProjectName)
	require.Len(t, d.Tools, 3)
	require.Equal(t, 3, d.Costs.WorkerCount)
	require.InDelta(t, 80.0, d.Costs.CostPerWorker, 0)
	require.Len(t, d.Diary, 1)
	require.Equal(t, DefaultAutoSaveIntervalMs, d.Settings.AutoSaveIntervalMs)
}

func TestMigrateRoundsFractionalLegacyIntegers(t *testing.T) {
	raw := `{"costs": {"numWorkers": 1.4, "perWorker": 10, "miscDaily": 0},
	  "roadmap": [{"day": 1, "phase": "Foundation", "tasks": [{"id": "a", "title": "A", "desc": "", "estMinutes": 12.6, "done": false, "doneAt": null, "notes": ""}]}],
	  "settings": {"autoSaveInterval": 2500.5}}`
	d, report, err := Migrate([]byte(raw), testNow, ids.Fixed("x"))
	require.NoError(t, err)
	require.Empty(t, report.Dropped)
	require.Equal(t, 1, d.Costs.WorkerCount)
	require.Equal(t, 13, d.Roadmap[0].Tasks[0].EstimatedMinutes)
	require.Equal(t, 2501, d.Settings.AutoSaveIntervalMs)
}

func TestMigrateRejectsNewerSchema(t *testing.T) {
	_, _, err := Migrate([]byte(`{"schemaVersion": "2.1.0"}`), testNow, ids.Fixed("x"))
	require.ErrorIs(t, err, ErrNewerSchema)
}

func TestParseImport(t *testing.T) {
	d := newDoc(t)
	data, err := Marshal(d)
	require.NoError(t, err)

	back, _, err := ParseImport(data, ids.Fixed("x"))
	require.NoError(t, err)
	same, err := EqualContent(d, back)
	require.NoError(t, err)
	require.True(t, same)

	legacy, report, err := ParseImport([]byte(legacyDocument), ids.Fixed("x"))
	require.NoError(t, err)
	require.Equal(t, "Legacy", legacy.Meta.ProjectName)
	require.NotEmpty(t, report.Applied)
}

func TestParseImportRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"missing roadmap", `{"meta": {"projectName": "a", "createdAt": "2024-01-01T00:00:00Z"}, "tools": [], "costs": {}, "diary": [], "settings": {}}`},
		{"negative cost", validWith(`"tools": [{"id": "t", "name": "x", "dailyCost": -1, "enabled": true}]`)},
		{"day out of range", validWith(`"roadmap": [{"day": 61, "phase": "Foundation", "tasks": []}]`)},
		{"unknown phase", validWith(`"roadmap": [{"day": 1, "phase": "Nope", "tasks": []}]`)},
		{"done without doneAt", validWith(`"roadmap": [{"day": 1, "phase": "Foundation", "tasks": [{"id": "a", "title": "t", "estimatedMinutes": 5, "done": true, "doneAt": null}]}]`)},
		{"zero minutes", validWith(`"roadmap": [{"day": 1, "phase": "Foundation", "tasks": [{"id": "a", "title": "t", "estimatedMinutes": 0, "done": false}]}]`)},
		{"descending days", validWith(`"roadmap": [{"day": 2, "phase": "Foundation", "tasks": []}, {"day": 1, "phase": "Foundation", "tasks": []}]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseImport([]byte(tt.raw), ids.Fixed("x"))
			require.Error(t, err)
			require.True(t, ferrors.HasCategory(err, ferrors.CategorySchema))
		})
	}
}

// validWith builds a minimal valid document with one section overridden.
func validWith(section string) string {
	base := map[string]string{
		"meta":     `"meta": {"projectName": "a", "createdAt": "2024-01-01T00:00:00Z"}`,
		"tools":    `"tools": []`,
		"costs":    `"costs": {"workerCount": 1, "costPerWorker": 1, "miscDailyCost": 0}`,
		"roadmap":  `"roadmap": []`,
		"diary":    `"diary": []`,
		"settings": `"settings": {"autoSaveIntervalMs": 1000}`,
	}
	for key := range base {
		if len(section) > len(key)+2 && section[1:len(key)+1] == key {
			base[key] = section
		}
	}
	out := "{"
	for _, key := range []string{"meta", "tools", "costs", "roadmap", "diary", "settings"} {
		if out != "{" {
			out += ","
		}
		out += base[key]
	}
	return out + "}"
}
