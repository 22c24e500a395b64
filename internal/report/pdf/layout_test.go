package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometryBasics(t *testing.T) {
	g := a4()

	assert.Equal(t, 180.0, g.contentWidth())
	assert.Equal(t, 277.0, g.bottomLimit())
	assert.Equal(t, 277.0-g.headerH, g.usablePageHeight())
	assert.Equal(t, 100.0, g.remaining(177))
}

func TestNeedsBreak(t *testing.T) {
	g := a4()

	assert.False(t, g.needsBreak(g.headerH, 10), "fresh page fits small sections")
	assert.False(t, g.needsBreak(267, 10), "section exactly filling the page fits")
	assert.True(t, g.needsBreak(268, 10), "one millimetre over the limit breaks")
}

func TestScaledHeightKeepsAspectRatio(t *testing.T) {
	assert.Equal(t, 90.0, scaledHeight(640, 320, 180))
	assert.Equal(t, 0.0, scaledHeight(0, 320, 180), "degenerate dimensions collapse to zero")
	assert.Equal(t, 0.0, scaledHeight(640, 0, 180))
}

func TestPairHeightUsesTallerSide(t *testing.T) {
	g := a4()
	half := (g.contentWidth() - g.gutter) / 2

	// Left is square, right is 2:1 landscape. The square scales taller.
	got := pairHeight(g, 400, 400, 640, 320)
	assert.Equal(t, half, got)
}

func TestTableHeightIncludesHeaderRow(t *testing.T) {
	g := a4()
	assert.Equal(t, 11*g.tableRowH, tableHeight(g, 10))
}

func TestDescGridHeightRoundsRowsUp(t *testing.T) {
	g := a4()
	assert.Equal(t, 1*g.descRowH, descGridHeight(g, 3))
	assert.Equal(t, 2*g.descRowH, descGridHeight(g, 4))
	assert.Equal(t, 3*g.descRowH, descGridHeight(g, 7))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "this is a…", truncate("this is a long value", 10))
	// Rune-safe: no mid-codepoint cuts.
	assert.Equal(t, "héllo wo…", truncate("héllo world", 9))
	assert.Equal(t, "x", truncate("x", 1))
}

func TestWrapWordsRespectsBudgetAndParagraphs(t *testing.T) {
	lines := wrapWords("alpha beta gamma delta", 11)
	assert.Equal(t, []string{"alpha beta", "gamma delta"}, lines)

	lines = wrapWords("first\n\nsecond", 40)
	assert.Equal(t, []string{"first", "", "second"}, lines)

	// A single oversized word still lands on its own line.
	lines = wrapWords("supercalifragilistic ok", 10)
	assert.Equal(t, []string{"supercalifragilistic", "ok"}, lines)
}

func TestBarChartHeightScalesWithBars(t *testing.T) {
	assert.Equal(t, barPadding+5*barRowH, barChartHeight(5))
}

func TestTitleLookaheadReservesContentRows(t *testing.T) {
	g := a4()
	assert.Equal(t, 8+3*g.tableRowH, titleLookahead(g))
}
