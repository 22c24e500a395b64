package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// testPNG renders a small solid PNG for image-placement tests.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testColumns() []schemas.Column {
	return []schemas.Column{
		{Field: "qid", Header: "QID", Kind: schemas.ColumnNumeric, WidthMM: 18},
		{Field: "title", Header: "Title", Kind: schemas.ColumnText},
		{Field: "severity", Header: "Severity", Kind: schemas.ColumnSeverity, WidthMM: 22},
	}
}

func testRows(n int) []schemas.Row {
	rows := make([]schemas.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, schemas.Row{
			"qid":      41000 + i,
			"title":    fmt.Sprintf("Finding number %d", i),
			"severity": 1 + i%5,
		})
	}
	return rows
}

func TestNewStartsOnPageOneBelowHeader(t *testing.T) {
	b := New("Report", "vulndeck", nil)

	assert.Equal(t, 1, b.Page())
	assert.Equal(t, a4().headerH, b.CursorY())
}

func TestBytesProducesValidPDF(t *testing.T) {
	b := New("Report", "vulndeck", nil)
	b.AddSectionTitle("Overview")
	b.AddTextBlock("Notes", "Nothing unusual this cycle.")

	data, err := b.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output must carry the PDF magic")
}

func TestUndecodableLogoIsIgnored(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	b := New("Report", "vulndeck", svg)

	data, err := b.Bytes()
	require.NoError(t, err, "an SVG logo must not poison the document")
	assert.NotEmpty(t, data)
}

func TestLongTableBreaksAcrossPages(t *testing.T) {
	b := New("Report", "vulndeck", nil)
	b.AddTable(testColumns(), testRows(120))

	assert.Greater(t, b.Page(), 2, "120 rows at 7mm cannot fit two pages")

	data, err := b.Bytes()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestShortTableAvoidsMicroSplit(t *testing.T) {
	b := New("Report", "vulndeck", nil)
	// Push the cursor near the bottom so a whole-table fit forces one break.
	b.AddTable(testColumns(), testRows(30))
	pageBefore := b.Page()

	b.AddTable(testColumns(), testRows(8))
	// The 8-row table fits a fresh page, so it must not start at the
	// bottom of the previous one if it would split.
	if b.Page() > pageBefore {
		assert.Equal(t, a4().headerH+9*a4().tableRowH+2, b.CursorY())
	}
}

func TestSectionTitleNeverOrphanedAtPageBottom(t *testing.T) {
	b := New("Report", "vulndeck", nil)
	g := a4()

	// Fill until less than the title lookahead remains.
	for g.remaining(b.CursorY()) > titleLookahead(g) {
		b.AddKPIs([]KPI{{Label: "Filler", Value: "1"}})
	}
	page := b.Page()
	b.AddSectionTitle("Trailing Section")

	assert.Equal(t, page+1, b.Page(), "a title with no room for content moves to the next page")
	assert.Equal(t, g.headerH+9, b.CursorY())
}

func TestChartPairDegradation(t *testing.T) {
	img := testPNG(t, 64, 32)

	t.Run("both absent is a no-op", func(t *testing.T) {
		b := New("Report", "vulndeck", nil)
		y := b.CursorY()
		b.AddChartPair(nil, nil)
		assert.Equal(t, y, b.CursorY())
	})

	t.Run("single side renders full width", func(t *testing.T) {
		b := New("Report", "vulndeck", nil)
		y := b.CursorY()
		b.AddChartPair(img, nil)
		// Full content width at 2:1 gives 90mm plus spacing.
		assert.Equal(t, y+90+4, b.CursorY())
	})

	t.Run("both sides render half width", func(t *testing.T) {
		b := New("Report", "vulndeck", nil)
		y := b.CursorY()
		b.AddChartPair(img, img)
		half := (a4().contentWidth() - a4().gutter) / 2
		assert.Equal(t, y+half/2+4, b.CursorY())
	})

	t.Run("undecodable bytes degrade like absent ones", func(t *testing.T) {
		b := New("Report", "vulndeck", nil)
		y := b.CursorY()
		b.AddChartPair([]byte("not an image"), img)
		assert.Equal(t, y+90+4, b.CursorY())

		data, err := b.Bytes()
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	})
}

func TestTextBlockSplitsMidParagraph(t *testing.T) {
	b := New("Report", "vulndeck", nil)
	long := strings.Repeat("The remediation requires a staged rollout across all affected segments. ", 120)

	b.AddTextBlock("Solution", long)

	assert.Greater(t, b.Page(), 1, "a paragraph taller than a page continues on the next one")
	data, err := b.Bytes()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestEmptySectionsAreNoOps(t *testing.T) {
	b := New("Report", "vulndeck", nil)
	y := b.CursorY()

	b.AddTextBlock("Threat", "")
	b.AddFilterSummary("")
	b.AddKPIs(nil)
	b.AddDescriptions(nil)
	b.AddBarChart(nil)
	b.AddBarChartPair(nil, nil)

	assert.Equal(t, y, b.CursorY())
	assert.Equal(t, 1, b.Page())
}

func TestNativeBarChartAdvancesCursor(t *testing.T) {
	b := New("Report", "vulndeck", nil)
	y := b.CursorY()

	data := []BarDatum{
		{Label: "Urgent (5)", Value: 12, Color: [3]int{166, 29, 36}},
		{Label: "Critical (4)", Value: 30, Color: [3]int{231, 76, 60}},
		{Label: "Serious (3)", Value: 7, Color: [3]int{243, 156, 18}},
	}
	b.AddBarChart(data)

	assert.Equal(t, y+barChartHeight(3)+4, b.CursorY())
	out, err := b.Bytes()
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFilenameIsDatePrefixed(t *testing.T) {
	b := New("Report", "vulndeck", nil)
	name := b.Filename("dashboard_report.pdf")

	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}_dashboard_report\.pdf$`, name)
}
