package pdf

import "strings"

// geometry captures the fixed page metrics (A4 portrait, millimetres). All
// page-break decisions are pure functions over these values so they can be
// tested without a rendering backend.
type geometry struct {
	pageW     float64
	pageH     float64
	marginL   float64
	marginR   float64
	headerH   float64 // vertical space consumed by the page header
	bottomM   float64 // reserved for the footer
	lineH     float64 // narrative line height
	tableRowH float64
	kpiBoxH   float64
	descRowH  float64
	gutter    float64
}

func a4() geometry {
	return geometry{
		pageW:     210,
		pageH:     297,
		marginL:   15,
		marginR:   15,
		headerH:   30,
		bottomM:   20,
		lineH:     5,
		tableRowH: 7,
		kpiBoxH:   22,
		descRowH:  12,
		gutter:    4,
	}
}

// contentWidth is the printable width between margins.
func (g geometry) contentWidth() float64 {
	return g.pageW - g.marginL - g.marginR
}

// bottomLimit is the lowest cursor position content may reach.
func (g geometry) bottomLimit() float64 {
	return g.pageH - g.bottomM
}

// remaining reports the printable height left below the cursor.
func (g geometry) remaining(cursorY float64) float64 {
	return g.bottomLimit() - cursorY
}

// needsBreak reports whether a section of the given height cannot fit below
// the cursor.
func (g geometry) needsBreak(cursorY, need float64) bool {
	return need > g.remaining(cursorY)
}

// usablePageHeight is the content height of a fresh page (below the header).
func (g geometry) usablePageHeight() float64 {
	return g.bottomLimit() - g.headerH
}

// scaledHeight computes the display height of an image scaled to displayW
// while keeping its aspect ratio.
func scaledHeight(imgW, imgH, displayW float64) float64 {
	if imgW <= 0 || imgH <= 0 {
		return 0
	}
	return displayW * imgH / imgW
}

// pairHeight reserves the taller of two images each scaled to half the
// content width minus the gutter.
func pairHeight(g geometry, leftW, leftH, rightW, rightH float64) float64 {
	half := (g.contentWidth() - g.gutter) / 2
	lh := scaledHeight(leftW, leftH, half)
	rh := scaledHeight(rightW, rightH, half)
	if lh > rh {
		return lh
	}
	return rh
}

// tableHeight estimates a table's total height from the fixed per-row
// heuristic, including one header row.
func tableHeight(g geometry, rows int) float64 {
	return float64(rows+1) * g.tableRowH
}

// descGridHeight computes the height of a 3-column description grid.
func descGridHeight(g geometry, items int) float64 {
	rows := (items + 2) / 3
	return float64(rows) * g.descRowH
}

// titleLookahead is the space reserved before drawing a section title so it
// is never orphaned at a page bottom: the title line plus a few rows of the
// content expected to follow.
func titleLookahead(g geometry) float64 {
	return 8 + 3*g.tableRowH
}

// truncate cuts a value to the character budget, appending an ellipsis.
func truncate(s string, budget int) string {
	if budget <= 1 || len([]rune(s)) <= budget {
		return s
	}
	return string([]rune(s)[:budget-1]) + "…"
}

// wrapWords is the estimation-side word wrap: it predicts line counts from a
// character budget so pagination decisions stay independent of font metrics.
func wrapWords(text string, charsPerLine int) []string {
	if charsPerLine <= 0 {
		charsPerLine = 1
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			if len(current)+1+len(w) > charsPerLine {
				lines = append(lines, current)
				current = w
				continue
			}
			current += " " + w
		}
		lines = append(lines, current)
	}
	return lines
}
