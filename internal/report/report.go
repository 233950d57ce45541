package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/kaizen/internal/document"
	"git.home.luguber.info/inful/kaizen/internal/roadmap"
)

const (
	topTools       = 8
	recentTasks    = 20
	timestampShape = "2006-01-02 15:04 MST"
)

// Summary is the data shown in a report.
type Summary struct {
	Title     string
	Project   string
	CreatedAt time.Time
	Progress  document.Progress
	Costs     document.CostSummary
	Tools     []*document.Tool
	Completed []string
}

// Summarize collects the report data: the first eight tools in document
// order and the last twenty completed tasks in roadmap order, newest first.
func Summarize(doc *document.Document) Summary {
	s := Summary{
		Title:     "Kaizen Automation — " + doc.Meta.ProjectName,
		Project:   doc.Meta.ProjectName,
		CreatedAt: doc.Meta.CreatedAt,
		Progress:  doc.Progress(),
		Costs:     doc.ComputeCosts(),
	}
	s.Tools = doc.Tools[:min(topTools, len(doc.Tools))]

	var done []*roadmap.Task
	for _, day := range doc.Roadmap {
		for _, t := range day.Tasks {
			if t.Done {
				done = append(done, t)
			}
		}
	}
	if len(done) > recentTasks {
		done = done[len(done)-recentTasks:]
	}
	for i := len(done) - 1; i >= 0; i-- {
		s.Completed = append(s.Completed, taskLabel(done[i]))
	}
	return s
}

func taskLabel(t *roadmap.Task) string {
	when := ""
	if t.DoneAt != nil {
		when = t.DoneAt.UTC().Format(timestampShape)
	}
	return Truncate(fmt.Sprintf("%s (%s)", t.Title, when), LabelLimit)
}

// Markdown renders the report with a YAML front matter carrying an mdfp
// fingerprint of the content.
func Markdown(doc *document.Document, now time.Time) ([]byte, error) {
	s := Summarize(doc)
	body := markdownBody(s)

	fields := map[string]any{
		"title":        s.Title,
		"project":      s.Project,
		"created":      s.CreatedAt.UTC().Format(time.RFC3339),
		generatedField: now.UTC().Format(time.RFC3339),
		"progress": map[string]any{
			"done":    s.Progress.Done,
			"total":   s.Progress.Total,
			"percent": s.Progress.Percent,
		},
		"costsPerDay": Money(s.Costs.GrandDaily),
	}
	fp, err := fingerprint(fields, body)
	if err != nil {
		return nil, fmt.Errorf("fingerprint report: %w", err)
	}
	fields[mdfp.FingerprintField] = fp

	front, err := serializeYAML(fields)
	if err != nil {
		return nil, fmt.Errorf("serialize front matter: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("---\n")
	out.Write(front)
	out.WriteString("---\n")
	out.WriteString(body)
	return out.Bytes(), nil
}

func markdownBody(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	fmt.Fprintf(&b, "Created: %s\n\n", s.CreatedAt.UTC().Format(timestampShape))
	fmt.Fprintf(&b, "Progress: %d/%d (%d%%)\n\n", s.Progress.Done, s.Progress.Total, s.Progress.Percent)
	fmt.Fprintf(&b, "Costs/day: %s\n\n", Money(s.Costs.GrandDaily))

	b.WriteString("## Costs\n\n")
	b.WriteString("| Item | Per day |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Tools | %s |\n", Money(s.Costs.ToolsDaily))
	fmt.Fprintf(&b, "| Labor | %s |\n", Money(s.Costs.LaborDaily))
	fmt.Fprintf(&b, "| Misc | %s |\n", Money(s.Costs.MiscDaily))
	fmt.Fprintf(&b, "| **Total** | **%s** |\n\n", Money(s.Costs.GrandDaily))
	fmt.Fprintf(&b, "One-off tool purchases: %s\n\n", Money(s.Costs.ToolsPurchase))

	b.WriteString("## Top tools\n\n")
	if len(s.Tools) == 0 {
		b.WriteString("No tools.\n\n")
	} else {
		b.WriteString("| Tool | Per day | Enabled |\n|---|---:|:---:|\n")
		for _, t := range s.Tools {
			enabled := "no"
			if t.Enabled {
				enabled = "yes"
			}
			fmt.Fprintf(&b, "| %s | %s/day | %s |\n", cell(t.Name), Money(decimalOf(t.DailyCost)), enabled)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recent completed tasks\n\n")
	if len(s.Completed) == 0 {
		b.WriteString("Nothing completed yet.\n")
	}
	for _, label := range s.Completed {
		fmt.Fprintf(&b, "- %s\n", strings.ReplaceAll(label, "\n", " "))
	}
	return b.String()
}

// HTML renders the Markdown body as a standalone page.
func HTML(doc *document.Document, now time.Time) ([]byte, error) {
	s := Summarize(doc)
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var rendered bytes.Buffer
	if err := md.Convert([]byte(markdownBody(s)), &rendered); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(s.Title))
	out.WriteString("<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem}</style>\n")
	out.WriteString("</head>\n<body>\n")
	out.Write(rendered.Bytes())
	fmt.Fprintf(&out, "<footer><small>Generated %s</small></footer>\n", html.EscapeString(now.UTC().Format(timestampShape)))
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
