package schemas

import (
	"fmt"
	"strconv"
)

// Row is a loosely typed record handed to table renderers and exporters.
type Row map[string]any

// ColumnKind selects how a cell value is serialized. The set is closed on
// purpose: renderers switch on the kind instead of invoking per-cell
// callbacks of unknown shape.
type ColumnKind int

const (
	// ColumnText renders the value as-is.
	ColumnText ColumnKind = iota
	// ColumnNumeric renders integers without a decimal part.
	ColumnNumeric
	// ColumnEnum maps raw values to display labels via the Enum table.
	ColumnEnum
	// ColumnSeverity renders a 1-5 severity as its label.
	ColumnSeverity
)

// Column describes one table/export column. Columns with an empty Field are
// presentation-only and never participate in exports.
type Column struct {
	Field  string
	Header string
	Kind   ColumnKind
	// Enum maps raw cell values to display labels for ColumnEnum.
	Enum map[string]string
	// WidthMM is an optional layout hint for PDF tables (0 = auto).
	WidthMM float64
}

// Display serializes a cell value for on-screen and PDF rendering.
func (c Column) Display(v any) string {
	switch c.Kind {
	case ColumnSeverity:
		if n, ok := asInt(v); ok {
			return Severity(n).Label()
		}
	case ColumnEnum:
		s := plain(v)
		if label, ok := c.Enum[s]; ok {
			return label
		}
		return s
	case ColumnNumeric:
		if n, ok := asInt(v); ok {
			return strconv.Itoa(n)
		}
	}
	return plain(v)
}

// Export serializes a cell value for CSV output. Severity stays numeric so
// spreadsheets can sort it; everything else matches Display.
func (c Column) Export(v any) string {
	if c.Kind == ColumnSeverity {
		if n, ok := asInt(v); ok {
			return strconv.Itoa(n)
		}
	}
	return c.Display(v)
}

func plain(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case float64:
		// JSON numbers decode as float64; render whole values without ".0".
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case Severity:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}
