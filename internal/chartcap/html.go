package chartcap

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// Chart documents are fully self-contained (inline CSS, no scripts, no
// external assets) so a capture renders deterministically and offline.

const chartCSS = `
  body { margin: 0; font-family: Helvetica, Arial, sans-serif; background: #ffffff; }
  .chart { padding: 16px 20px; }
  .chart h3 { margin: 0 0 12px; font-size: 15px; color: #1e3a5f; }
  .bar-row { display: flex; align-items: center; margin-bottom: 8px; }
  .bar-label { width: 110px; font-size: 12px; color: #2c3e50; flex-shrink: 0; }
  .bar-track { flex: 1; background: #f1f5f9; border-radius: 3px; height: 18px; }
  .bar-fill { height: 18px; border-radius: 3px; }
  .bar-value { width: 60px; font-size: 12px; color: #7f8c8d; text-align: right; flex-shrink: 0; }
`

// SeverityBars renders the severity distribution as horizontal bars colored
// by severity level, highest first.
func SeverityBars(title string, dist []schemas.SeverityCount) string {
	max := 0
	for _, d := range dist {
		if d.Count > max {
			max = d.Count
		}
	}

	// Highest severity on top.
	ordered := append([]schemas.SeverityCount(nil), dist...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Severity > ordered[j].Severity })

	var rows strings.Builder
	for _, d := range ordered {
		sev := schemas.Severity(d.Severity)
		r, g, b := sev.RGB()
		rows.WriteString(barRow(
			fmt.Sprintf("%s (%d)", sev.Label(), d.Severity),
			d.Count, max, fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)))
	}
	return document(title, rows.String())
}

// CountBars renders arbitrary label/count pairs as uniform accent bars, used
// for the top-hosts chart.
func CountBars(title string, labels []string, counts []int) string {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	var rows strings.Builder
	for i, label := range labels {
		if i >= len(counts) {
			break
		}
		rows.WriteString(barRow(label, counts[i], max, "rgb(52,152,219)"))
	}
	return document(title, rows.String())
}

// TrendBars renders a time series as chronological bars.
func TrendBars(title string, points []schemas.TrendDataPoint) string {
	max := 0
	for _, p := range points {
		if p.Value > max {
			max = p.Value
		}
	}
	var rows strings.Builder
	for _, p := range points {
		label := p.Date
		if p.Label != "" {
			label = p.Label
		}
		rows.WriteString(barRow(label, p.Value, max, "rgb(30,58,95)"))
	}
	return document(title, rows.String())
}

func barRow(label string, value, max int, color string) string {
	pct := 0
	if max > 0 {
		pct = value * 100 / max
	}
	return fmt.Sprintf(`<div class="bar-row">`+
		`<div class="bar-label">%s</div>`+
		`<div class="bar-track"><div class="bar-fill" style="width:%d%%;background:%s"></div></div>`+
		`<div class="bar-value">%d</div>`+
		`</div>`,
		html.EscapeString(label), pct, color, value)
}

func document(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>%s</style></head>
<body><div class="chart"><h3>%s</h3>%s</div></body></html>`,
		chartCSS, html.EscapeString(title), body)
}
