package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"git.home.luguber.info/inful/kaizen/internal/document"
	"git.home.luguber.info/inful/kaizen/internal/report"
)

const timeLayout = "2006-01-02 15:04"

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatProgress(p document.Progress) string {
	return fmt.Sprintf("%d/%d (%d%%)", p.Done, p.Total, p.Percent)
}

func check(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// oneLine flattens text for single-line listings.
func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if limit > 0 && len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}

func money(f float64) string {
	return report.Money(decimal.NewFromFloat(f))
}
