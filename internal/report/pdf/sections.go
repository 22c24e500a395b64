package pdf

import "github.com/go-pdf/fpdf"

// KPI is one banner box: a short label over an emphasized value.
type KPI struct {
	Label string
	Value string
}

// Description is one label/value pair of a description grid.
type Description struct {
	Label string
	Value string
}

// descValueBudget is the character budget before a grid value is truncated.
const descValueBudget = 38

// AddFilterSummary writes the active-filter line in a muted, smaller font,
// breaking to a new page first when the reserved height does not fit.
func (b *Builder) AddFilterSummary(text string) {
	if text == "" {
		return
	}
	b.doc.SetFont("Helvetica", "I", 8)
	lines := b.doc.SplitText(text, b.geo.contentWidth())
	need := float64(len(lines))*4 + 3
	b.ensureRoom(need)

	b.doc.SetFont("Helvetica", "I", 8)
	b.doc.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
	b.doc.SetXY(b.geo.marginL, b.cursorY)
	for _, line := range lines {
		b.doc.CellFormat(b.geo.contentWidth(), 4, line, "", 1, "L", false, 0, "")
	}
	b.cursorY += need
	b.doc.SetY(b.cursorY)
}

// AddKPIs lays out equal-width rounded boxes across the content width, each
// with a label line and an emphasized value line.
func (b *Builder) AddKPIs(items []KPI) {
	if len(items) == 0 {
		return
	}
	g := b.geo
	need := g.kpiBoxH + 5
	b.ensureRoom(need)

	n := float64(len(items))
	boxW := (g.contentWidth() - g.gutter*(n-1)) / n

	for i, item := range items {
		x := g.marginL + float64(i)*(boxW+g.gutter)

		b.doc.SetFillColor(colorBoxFill[0], colorBoxFill[1], colorBoxFill[2])
		b.doc.SetDrawColor(colorRule[0], colorRule[1], colorRule[2])
		b.doc.RoundedRect(x, b.cursorY, boxW, g.kpiBoxH, 2, "1234", "FD")

		b.doc.SetXY(x, b.cursorY+4)
		b.doc.SetFont("Helvetica", "", 8)
		b.doc.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
		b.doc.CellFormat(boxW, 5, item.Label, "", 2, "C", false, 0, "")

		b.doc.SetX(x)
		b.doc.SetFont("Helvetica", "B", 15)
		b.doc.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
		b.doc.CellFormat(boxW, 9, item.Value, "", 0, "C", false, 0, "")
	}

	b.cursorY += need
	b.doc.SetY(b.cursorY)
}

// AddSectionTitle writes an accent-colored heading. It reserves a
// conservative lookahead (title plus a few expected content rows) so a title
// is never orphaned at a page bottom.
func (b *Builder) AddSectionTitle(text string) {
	b.ensureRoom(titleLookahead(b.geo))

	b.doc.SetXY(b.geo.marginL, b.cursorY)
	b.doc.SetFont("Helvetica", "B", 12)
	b.doc.SetTextColor(colorAccent[0], colorAccent[1], colorAccent[2])
	b.doc.CellFormat(0, 7, text, "", 1, "L", false, 0, "")

	b.cursorY += 9
	b.doc.SetY(b.cursorY)
}

// AddChartImage places a captured chart at full content width with a
// proportional height. Absent or undecodable bytes are a silent no-op so a
// failed capture never aborts the document.
func (b *Builder) AddChartImage(img []byte) {
	name, w, h, ok := b.registerImage(img)
	if !ok {
		return
	}
	displayW := b.geo.contentWidth()
	displayH := scaledHeight(w, h, displayW)
	b.ensureRoom(displayH + 4)

	b.doc.ImageOptions(name, b.geo.marginL, b.cursorY, displayW, displayH, false,
		fpdf.ImageOptions{}, 0, "")
	b.cursorY += displayH + 4
	b.doc.SetY(b.cursorY)
}

// AddChartPair places two captures side by side at half content width. With
// only one side present it degrades to a full-width single capture; with
// both absent it is a no-op. The taller scaled height reserves the space.
func (b *Builder) AddChartPair(left, right []byte) {
	leftName, lw, lh, leftOK := b.registerImage(left)
	rightName, rw, rh, rightOK := b.registerImage(right)

	switch {
	case !leftOK && !rightOK:
		return
	case leftOK && !rightOK:
		b.placeFullWidth(leftName, lw, lh)
		return
	case !leftOK && rightOK:
		b.placeFullWidth(rightName, rw, rh)
		return
	}

	g := b.geo
	half := (g.contentWidth() - g.gutter) / 2
	need := pairHeight(g, lw, lh, rw, rh) + 4
	b.ensureRoom(need)

	b.doc.ImageOptions(leftName, g.marginL, b.cursorY, half, scaledHeight(lw, lh, half), false,
		fpdf.ImageOptions{}, 0, "")
	b.doc.ImageOptions(rightName, g.marginL+half+g.gutter, b.cursorY, half, scaledHeight(rw, rh, half), false,
		fpdf.ImageOptions{}, 0, "")

	b.cursorY += need
	b.doc.SetY(b.cursorY)
}

// placeFullWidth positions an already registered image like AddChartImage.
func (b *Builder) placeFullWidth(name string, w, h float64) {
	displayW := b.geo.contentWidth()
	displayH := scaledHeight(w, h, displayW)
	b.ensureRoom(displayH + 4)
	b.doc.ImageOptions(name, b.geo.marginL, b.cursorY, displayW, displayH, false,
		fpdf.ImageOptions{}, 0, "")
	b.cursorY += displayH + 4
	b.doc.SetY(b.cursorY)
}

// AddDescriptions lays out label/value pairs in a fixed 3-column grid.
// The grid breaks to a new page only as a whole: a grid taller than one
// page's usable height is drawn as far as it goes. Values are truncated
// with an ellipsis at a fixed character budget.
func (b *Builder) AddDescriptions(items []Description) {
	if len(items) == 0 {
		return
	}
	g := b.geo
	total := descGridHeight(g, len(items))
	if total <= g.usablePageHeight() {
		b.ensureRoom(total + 2)
	} else {
		b.ensureRoom(g.usablePageHeight())
	}

	colW := g.contentWidth() / 3
	for i, item := range items {
		col := i % 3
		row := i / 3
		x := g.marginL + float64(col)*colW
		y := b.cursorY + float64(row)*g.descRowH

		b.doc.SetXY(x, y)
		b.doc.SetFont("Helvetica", "B", 8)
		b.doc.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
		b.doc.CellFormat(colW, 4, item.Label, "", 2, "L", false, 0, "")

		b.doc.SetX(x)
		b.doc.SetFont("Helvetica", "", 9)
		b.doc.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		b.doc.CellFormat(colW, 5, truncate(item.Value, descValueBudget), "", 0, "L", false, 0, "")
	}

	b.cursorY += total + 2
	b.doc.SetY(b.cursorY)
}

// AddTextBlock writes a bolded title followed by word-wrapped content drawn
// line by line. It is the only section type that may break mid-paragraph:
// each line checks the bottom margin and continues on a fresh page (header
// redrawn) when reached. Empty content is a no-op.
func (b *Builder) AddTextBlock(title, content string) {
	if content == "" {
		return
	}
	g := b.geo

	b.ensureRoom(8 + 2*g.lineH)
	b.doc.SetXY(g.marginL, b.cursorY)
	b.doc.SetFont("Helvetica", "B", 10)
	b.doc.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	b.doc.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	b.cursorY += 7

	b.doc.SetFont("Helvetica", "", 9)
	lines := b.doc.SplitText(content, g.contentWidth())
	for _, line := range lines {
		if g.needsBreak(b.cursorY, g.lineH) {
			b.newPage()
		}
		b.doc.SetXY(g.marginL, b.cursorY)
		b.doc.SetFont("Helvetica", "", 9)
		b.doc.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		b.doc.CellFormat(g.contentWidth(), g.lineH, line, "", 1, "L", false, 0, "")
		b.cursorY += g.lineH
	}

	b.cursorY += 3
	b.doc.SetY(b.cursorY)
}
