// Package pdf assembles multi-page paginated reports from heterogeneous
// content sections appended imperatively. Page-break decisions are made by
// pure geometry functions over an explicit {page, cursorY} state machine;
// drawing is delegated to fpdf.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Palette shared by every report.
var (
	colorPrimary  = [3]int{30, 58, 95}    // dark navy
	colorAccent   = [3]int{52, 152, 219}  // bright blue
	colorTextDark = [3]int{44, 62, 80}    // narrative text
	colorMuted    = [3]int{127, 140, 141} // secondary text
	colorTableAlt = [3]int{241, 245, 249} // alternating row fill
	colorBoxFill  = [3]int{248, 249, 250} // KPI card background
	colorRule     = [3]int{220, 220, 220} // hairlines
)

// Builder composes one report document. It is single-use: after Save or
// Bytes the document must not be extended.
type Builder struct {
	doc   *fpdf.Fpdf
	geo   geometry
	title string
	// product appears in the footer line.
	product string
	now     time.Time

	logoName string // registered fpdf image name, empty when absent

	page    int
	cursorY float64
	imgSeq  int
}

// New initializes a report at A4 size, draws the page-1 header (logo left,
// title centered, timestamp right, rule) and positions the cursor below it.
// The logo is best-effort: undecodable bytes leave the document logo-less.
func New(title, product string, logo []byte) *Builder {
	doc := fpdf.New("P", "mm", "A4", "")
	g := a4()
	doc.SetMargins(g.marginL, 10, g.marginR)
	// Page breaks are decided by the builder, never by fpdf.
	doc.SetAutoPageBreak(false, 0)

	b := &Builder{
		doc:     doc,
		geo:     g,
		title:   title,
		product: product,
		now:     time.Now(),
	}
	b.registerLogo(logo)
	b.newPage()
	return b
}

// Page returns the current page index (1-based).
func (b *Builder) Page() int { return b.page }

// CursorY returns the current vertical offset on the current page.
func (b *Builder) CursorY() float64 { return b.cursorY }

// Save stamps the footer on every page and writes the document to w.
// Terminal operation.
func (b *Builder) Save(w io.Writer) error {
	b.stampFooters()
	if err := b.doc.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// Bytes finalizes the document and returns the rendered PDF.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename returns the date-prefixed artifact name for this report.
func (b *Builder) Filename(name string) string {
	return b.now.Format("2006-01-02") + "_" + name
}

// ensureRoom starts a new page (with a fresh header) when the next section
// of the given height would cross the bottom margin.
func (b *Builder) ensureRoom(need float64) {
	if b.geo.needsBreak(b.cursorY, need) {
		b.newPage()
	}
}

// newPage opens a page, redraws the header, and rests the cursor below it.
func (b *Builder) newPage() {
	b.doc.AddPage()
	b.page = b.doc.PageCount()
	b.drawHeader()
	b.cursorY = b.geo.headerH
	b.doc.SetY(b.cursorY)
}

// drawHeader renders the running page header: logo left, title centered,
// timestamp right, and a rule underneath.
func (b *Builder) drawHeader() {
	g := b.geo

	if b.logoName != "" {
		b.doc.ImageOptions(b.logoName, g.marginL, 8, 0, 12, false,
			fpdf.ImageOptions{AllowNegativePosition: false}, 0, "")
		if b.doc.Err() {
			// Logo placement is best-effort only.
			b.doc.ClearError()
		}
	}

	b.doc.SetY(11)
	b.doc.SetFont("Helvetica", "B", 13)
	b.doc.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	b.doc.CellFormat(0, 7, b.title, "", 1, "C", false, 0, "")

	b.doc.SetXY(g.marginL, 11)
	b.doc.SetFont("Helvetica", "", 8)
	b.doc.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
	b.doc.CellFormat(0, 7, b.now.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")

	b.doc.SetDrawColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	b.doc.SetLineWidth(0.5)
	b.doc.Line(g.marginL, 24, g.pageW-g.marginR, 24)
}

// stampFooters writes "Page i/N — product — timestamp" centered on every
// page already drawn.
func (b *Builder) stampFooters() {
	total := b.doc.PageCount()
	ts := b.now.Format("2006-01-02 15:04")
	for i := 1; i <= total; i++ {
		b.doc.SetPage(i)
		b.doc.SetY(b.geo.pageH - 12)
		b.doc.SetFont("Helvetica", "", 8)
		b.doc.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
		footer := fmt.Sprintf("Page %d/%d - %s - %s", i, total, b.product, ts)
		b.doc.CellFormat(0, 5, footer, "", 0, "C", false, 0, "")

		b.doc.SetDrawColor(colorRule[0], colorRule[1], colorRule[2])
		b.doc.SetLineWidth(0.3)
		b.doc.Line(b.geo.marginL, b.geo.pageH-15, b.geo.pageW-b.geo.marginR, b.geo.pageH-15)
	}
	b.doc.SetPage(total)
}

// registerLogo sniffs and registers the logo image. Anything fpdf cannot
// decode (e.g. an SVG default logo) is skipped silently.
func (b *Builder) registerLogo(logo []byte) {
	if len(logo) == 0 {
		return
	}
	kind := sniffImageType(logo)
	if kind == "" {
		return
	}
	b.doc.RegisterImageOptionsReader("logo",
		fpdf.ImageOptions{ImageType: kind}, bytes.NewReader(logo))
	if b.doc.Err() {
		b.doc.ClearError()
		return
	}
	b.logoName = "logo"
}

// registerImage registers chart bytes under a fresh name and returns the
// name with intrinsic dimensions. A decode failure returns ok=false and
// leaves the document usable.
func (b *Builder) registerImage(img []byte) (name string, w, h float64, ok bool) {
	if len(img) == 0 {
		return "", 0, 0, false
	}
	kind := sniffImageType(img)
	if kind == "" {
		return "", 0, 0, false
	}
	b.imgSeq++
	name = fmt.Sprintf("chart-%d", b.imgSeq)
	info := b.doc.RegisterImageOptionsReader(name,
		fpdf.ImageOptions{ImageType: kind}, bytes.NewReader(img))
	if b.doc.Err() || info == nil {
		b.doc.ClearError()
		return "", 0, 0, false
	}
	return name, info.Width(), info.Height(), true
}

// sniffImageType recognizes the raster formats fpdf can place.
func sniffImageType(data []byte) string {
	switch {
	case len(data) > 8 && bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "PNG"
	case len(data) > 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "JPG"
	default:
		return ""
	}
}
