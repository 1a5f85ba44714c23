package ui

import (
	"fmt"
	"io"
	"strings"
)

// Row is one line of a rendered result table.
type Row struct {
	Rank    int
	ID      string
	Title   string
	Score   float64
	Signals map[string]float64 // raw per-signal scores
}

// Table renders ranked rows with aligned columns and score bars.
type Table struct {
	styles   Styles
	barWidth int
	signals  []string // signal detail column order; empty hides the detail line
}

// NewTable creates a table renderer. Pass noColor=true for plain output.
func NewTable(noColor bool) *Table {
	return &Table{
		styles:   GetStyles(noColor),
		barWidth: 10,
	}
}

// WithSignals enables a per-row detail line for the named signals, in order.
func (t *Table) WithSignals(names ...string) *Table {
	t.signals = names
	return t
}

// Render writes the table to w. Bars are scaled to the highest score so the
// top result always renders full.
func (t *Table) Render(w io.Writer, rows []Row) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, t.styles.Dim.Render("no results"))
		return
	}

	maxScore := 0.0
	for _, r := range rows {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	header := fmt.Sprintf("%4s  %-8s  %-*s  %s", "RANK", "SCORE", t.barWidth, "", "TITLE")
	_, _ = fmt.Fprintln(w, t.styles.Header.Render(header))

	for _, r := range rows {
		title := r.Title
		if title == "" {
			title = r.ID
		}

		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
			t.styles.Rank.Render(fmt.Sprintf("%4d", r.Rank)),
			t.styles.Score.Render(fmt.Sprintf("%-8.4f", r.Score)),
			t.styles.Bar.Render(ScoreBar(r.Score, maxScore, t.barWidth)),
			t.styles.Title.Render(title))

		if len(t.signals) > 0 && r.Signals != nil {
			var parts []string
			for _, name := range t.signals {
				if v, ok := r.Signals[name]; ok {
					parts = append(parts, fmt.Sprintf("%s=%.3f", name, v))
				}
			}
			if len(parts) > 0 {
				_, _ = fmt.Fprintf(w, "      %s\n", t.styles.Label.Render(strings.Join(parts, "  ")))
			}
		}
	}
}

// RenderFalloff writes a one-line sparkline of scores in rank order,
// showing how quickly relevance drops down the list.
func (t *Table) RenderFalloff(w io.Writer, scores []float64) {
	if len(scores) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s\n",
		t.styles.Label.Render("scores:"), t.styles.Bar.Render(Sparkline(scores)))
}
