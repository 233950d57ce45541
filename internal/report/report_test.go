package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/inful/mdfp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/kaizen/internal/document"
	"git.home.luguber.info/inful/kaizen/internal/ids"
)

var (
	created = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	now     = time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
)

func newDoc(t *testing.T) *document.Document {
	t.Helper()
	d, err := document.New(created, ids.Fixed("x"))
	require.NoError(t, err)
	return d
}

func TestMoney(t *testing.T) {
	require.Equal(t, "$266", Money(decimal.NewFromInt(266)))
	require.Equal(t, "$1,234.5", Money(decimal.RequireFromString("1234.5")))
	require.Equal(t, "$0.33", Money(decimal.RequireFromString("0.333")))
	require.Equal(t, "$0", Money(decimal.Zero))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", Truncate("short", 80))
	long := strings.Repeat("é", 100)
	got := Truncate(long, 80)
	require.Equal(t, 80, len([]rune(got)))
	require.True(t, strings.HasSuffix(got, "…"))
	require.Equal(t, strings.Repeat("a", 80), Truncate(strings.Repeat("a", 80), 80))
}

func TestFileName(t *testing.T) {
	require.Equal(t, "My_Big_Project_summary.md", FileName("My Big\t Project", "md"))
	require.Equal(t, "My_Big_Project_summary.html", FileName("  My   Big Project ", ".html"))
	require.Equal(t, "kaizen_summary.md", FileName("   ", "md"))
}

func TestSummarize_ToolsAndRecentTasks(t *testing.T) {
	d := newDoc(t)
	for i := range 10 {
		d.AddTool(ids.Fixed(strings.Repeat("t", i+1)))
	}
	var toggled []string
	for _, day := range d.Roadmap[:6] {
		for _, task := range day.Tasks {
			_, err := d.ToggleTask(task.ID, now)
			require.NoError(t, err)
			toggled = append(toggled, task.Title)
		}
	}
	require.Greater(t, len(toggled), 20)

	s := Summarize(d)
	require.Len(t, s.Tools, 8)
	require.Equal(t, "Twilio", s.Tools[0].Name)
	require.Len(t, s.Completed, 20)
	last := toggled[len(toggled)-1]
	prefix := []rune(last)
	require.True(t, strings.HasPrefix(s.Completed[0], string(prefix[:min(10, len(prefix))])))
	require.Contains(t, s.Completed[0], "(2025-03-05 12:00 UTC)")
	for _, label := range s.Completed {
		require.LessOrEqual(t, len([]rune(label)), LabelLimit)
	}
}

func TestMarkdown_FrontMatterAndBody(t *testing.T) {
	d := newDoc(t)
	out, err := Markdown(d, now)
	require.NoError(t, err)

	front, body, err := split(out)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, yaml.Unmarshal(front, &fields))
	require.Equal(t, "Kaizen Automation — Kaizen Automation", fields["title"])
	require.Equal(t, "$266", fields["costsPerDay"])
	require.NotEmpty(t, fields[mdfp.FingerprintField])
	progress := fields["progress"].(map[string]any)
	require.Equal(t, 300, progress["total"])

	text := string(body)
	require.Contains(t, text, "Progress: 0/300 (0%)")
	require.Contains(t, text, "| Twilio | $8/day | yes |")
	require.Contains(t, text, "Nothing completed yet.")
}

func TestMarkdown_FingerprintStableAcrossRenderTimes(t *testing.T) {
	d := newDoc(t)
	a, err := Markdown(d, now)
	require.NoError(t, err)
	b, err := Markdown(d, now.Add(time.Hour))
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	fpOf := func(out []byte) string {
		front, _, err := split(out)
		require.NoError(t, err)
		var fields map[string]any
		require.NoError(t, yaml.Unmarshal(front, &fields))
		return fields[mdfp.FingerprintField].(string)
	}
	require.Equal(t, fpOf(a), fpOf(b))
}

func TestVerify(t *testing.T) {
	d := newDoc(t)
	out, err := Markdown(d, now)
	require.NoError(t, err)

	ok, err := Verify(out)
	require.NoError(t, err)
	require.True(t, ok)

	tampered := bytes.Replace(out, []byte("Progress: 0/300"), []byte("Progress: 300/300"), 1)
	ok, err = Verify(tampered)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = Verify([]byte("# no front matter\n"))
	require.ErrorIs(t, err, ErrNoFrontMatter)
}

func TestHTML_RendersTables(t *testing.T) {
	d := newDoc(t)
	d.Meta.ProjectName = "<Acme>"
	out, err := HTML(d, now)
	require.NoError(t, err)
	page := string(out)
	require.Contains(t, page, "<title>Kaizen Automation — &lt;Acme&gt;</title>")
	require.Contains(t, page, "<table>")
	require.Contains(t, page, "<td>Twilio</td>")
	require.NotContains(t, page, "<Acme>")
}
