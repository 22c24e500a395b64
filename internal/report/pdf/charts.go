package pdf

import "fmt"

// BarDatum is one horizontal bar: a label, its magnitude, and the fill.
type BarDatum struct {
	Label string
	Value int
	Color [3]int
}

const (
	barRowH    = 8.0 // per-bar vertical pitch
	barPadding = 6.0 // frame padding above and below the bars
	barLabelW  = 32.0
	barValueW  = 12.0
)

// barChartHeight is the frame height of a natively drawn bar chart.
func barChartHeight(bars int) float64 {
	return float64(bars)*barRowH + barPadding
}

// AddBarChart draws a horizontal bar chart directly into the document. It is
// the rendering used when no browser capture is available.
func (b *Builder) AddBarChart(data []BarDatum) {
	if len(data) == 0 {
		return
	}
	need := barChartHeight(len(data)) + 4
	b.ensureRoom(need)
	b.drawBars(b.geo.marginL, b.cursorY, b.geo.contentWidth(), data)
	b.cursorY += need
	b.doc.SetY(b.cursorY)
}

// AddBarChartPair draws two bar charts side by side at half content width.
// A single non-empty side degrades to a full-width chart; two empty sides
// are a no-op. The taller chart reserves the space.
func (b *Builder) AddBarChartPair(left, right []BarDatum) {
	switch {
	case len(left) == 0 && len(right) == 0:
		return
	case len(right) == 0:
		b.AddBarChart(left)
		return
	case len(left) == 0:
		b.AddBarChart(right)
		return
	}

	g := b.geo
	half := (g.contentWidth() - g.gutter) / 2
	taller := len(left)
	if len(right) > taller {
		taller = len(right)
	}
	need := barChartHeight(taller) + 4
	b.ensureRoom(need)

	b.drawBars(g.marginL, b.cursorY, half, left)
	b.drawBars(g.marginL+half+g.gutter, b.cursorY, half, right)

	b.cursorY += need
	b.doc.SetY(b.cursorY)
}

// drawBars renders the framed bar rows at an absolute position. Bars are
// scaled against the largest value in the set; a zero set draws empty
// tracks only.
func (b *Builder) drawBars(x, y, w float64, data []BarDatum) {
	h := barChartHeight(len(data))

	b.doc.SetFillColor(255, 255, 255)
	b.doc.SetDrawColor(colorRule[0], colorRule[1], colorRule[2])
	b.doc.SetLineWidth(0.3)
	b.doc.Rect(x, y, w, h, "FD")

	max := 0
	for _, d := range data {
		if d.Value > max {
			max = d.Value
		}
	}

	labelW := barLabelW
	if w < 70 {
		labelW = w * 0.3
	}
	trackX := x + 2 + labelW
	trackW := w - labelW - barValueW - 6

	for i, d := range data {
		rowY := y + barPadding/2 + float64(i)*barRowH

		b.doc.SetFont("Helvetica", "", 8)
		b.doc.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		b.doc.SetXY(x+2, rowY)
		b.doc.CellFormat(labelW-2, barRowH-2, truncate(d.Label, int(labelW/1.8)), "", 0, "L", false, 0, "")

		// Track behind the bar.
		b.doc.SetFillColor(colorTableAlt[0], colorTableAlt[1], colorTableAlt[2])
		b.doc.Rect(trackX, rowY+1, trackW, barRowH-4, "F")

		if max > 0 && d.Value > 0 {
			barW := trackW * float64(d.Value) / float64(max)
			b.doc.SetFillColor(d.Color[0], d.Color[1], d.Color[2])
			b.doc.Rect(trackX, rowY+1, barW, barRowH-4, "F")
		}

		b.doc.SetFont("Helvetica", "B", 8)
		b.doc.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
		b.doc.SetXY(trackX+trackW+1, rowY)
		b.doc.CellFormat(barValueW, barRowH-2, fmt.Sprintf("%d", d.Value), "", 0, "R", false, 0, "")
	}
}
