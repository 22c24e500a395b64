package pdf

import "github.com/vulndeck/vulndeck-cli/api/schemas"

// AddTable lays out rows under the given column definitions. A table whose
// estimated height fits a single page is never micro-split: when the current
// page lacks the room, the whole table moves to a fresh page. Longer tables
// flow across pages, and every continuation page redraws both the running
// page header and the table header row. Column headers use an inverse
// scheme; body rows alternate a light fill and use a denser font size.
func (b *Builder) AddTable(columns []schemas.Column, rows []schemas.Row) {
	if len(columns) == 0 || len(rows) == 0 {
		return
	}
	g := b.geo

	estimated := tableHeight(g, len(rows))
	if estimated <= g.usablePageHeight() {
		// Whole table can live on one page; avoid a pointless split.
		b.ensureRoom(estimated + 2)
	} else {
		// Minimal lookahead: header plus a couple of body rows.
		b.ensureRoom(3 * g.tableRowH)
	}

	widths := b.columnWidths(columns)

	b.drawTableHeader(columns, widths)
	for i, row := range rows {
		if g.needsBreak(b.cursorY, g.tableRowH) {
			b.newPage()
			b.drawTableHeader(columns, widths)
		}
		b.drawTableRow(columns, widths, row, i%2 == 1)
	}

	b.cursorY += 2
	b.doc.SetY(b.cursorY)
}

// columnWidths distributes the content width: explicit hints are honored and
// the remainder is shared equally among unhinted columns.
func (b *Builder) columnWidths(columns []schemas.Column) []float64 {
	widths := make([]float64, len(columns))
	rest := b.geo.contentWidth()
	unhinted := 0
	for i, c := range columns {
		if c.WidthMM > 0 {
			widths[i] = c.WidthMM
			rest -= c.WidthMM
		} else {
			unhinted++
		}
	}
	if unhinted > 0 {
		share := rest / float64(unhinted)
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

func (b *Builder) drawTableHeader(columns []schemas.Column, widths []float64) {
	g := b.geo
	b.doc.SetXY(g.marginL, b.cursorY)
	b.doc.SetFont("Helvetica", "B", 8)
	b.doc.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	b.doc.SetTextColor(255, 255, 255)
	for i, c := range columns {
		b.doc.CellFormat(widths[i], g.tableRowH, c.Header, "", 0, "L", true, 0, "")
	}
	b.cursorY += g.tableRowH
	b.doc.SetXY(g.marginL, b.cursorY)
}

func (b *Builder) drawTableRow(columns []schemas.Column, widths []float64, row schemas.Row, alt bool) {
	g := b.geo
	b.doc.SetXY(g.marginL, b.cursorY)
	b.doc.SetFont("Helvetica", "", 8)
	b.doc.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	if alt {
		b.doc.SetFillColor(colorTableAlt[0], colorTableAlt[1], colorTableAlt[2])
	} else {
		b.doc.SetFillColor(255, 255, 255)
	}
	for i, c := range columns {
		cell := truncate(c.Display(row[c.Field]), cellBudget(widths[i]))
		b.doc.CellFormat(widths[i], g.tableRowH, cell, "", 0, "L", true, 0, "")
	}
	b.cursorY += g.tableRowH
	b.doc.SetXY(g.marginL, b.cursorY)
}

// cellBudget approximates how many characters fit a column at the body font.
func cellBudget(width float64) int {
	n := int(width / 1.6)
	if n < 4 {
		n = 4
	}
	return n
}
