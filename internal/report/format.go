package report

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/unicode/norm"
)

// LabelLimit is the maximum rune length of a task label.
const LabelLimit = 80

var (
	printer    = message.NewPrinter(language.English)
	whitespace = regexp.MustCompile(`\s+`)
)

// Money renders an amount grouped with at most two decimals, e.g. "$1,234.5".
func Money(d decimal.Decimal) string {
	return "$" + printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

// Truncate shortens s to n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	s = norm.NFC.String(s)
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// FileName builds "<project>_summary.<ext>" with whitespace runs collapsed
// to underscores. An empty project name becomes "kaizen".
func FileName(projectName, ext string) string {
	base := whitespace.ReplaceAllString(strings.TrimSpace(projectName), "_")
	if base == "" {
		base = "kaizen"
	}
	return base + "_summary." + strings.TrimPrefix(ext, ".")
}

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func decimalOf(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }
