package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplaySeverityUsesLabels(t *testing.T) {
	col := Column{Field: "severity", Header: "Severity", Kind: ColumnSeverity}

	assert.Equal(t, "Urgent", col.Display(5))
	assert.Equal(t, "Critical", col.Display(4))
	assert.Equal(t, "Urgent", col.Display(float64(5)), "JSON-decoded numbers render the same")
	assert.Equal(t, "Minimal", col.Display("1"))
	assert.Equal(t, "Unknown", col.Display(9))
}

func TestExportSeverityStaysNumeric(t *testing.T) {
	col := Column{Field: "severity", Header: "Severity", Kind: ColumnSeverity}

	assert.Equal(t, "5", col.Export(5))
	assert.Equal(t, "3", col.Export(float64(3)))
}

func TestDisplayEnumMapsKnownValues(t *testing.T) {
	col := Column{Field: "status", Kind: ColumnEnum, Enum: map[string]string{
		"active": "Active", "fixed": "Fixed",
	}}

	assert.Equal(t, "Active", col.Display("active"))
	assert.Equal(t, "Fixed", col.Display("fixed"))
	// Unknown raw values pass through untouched.
	assert.Equal(t, "reopened", col.Display("reopened"))
}

func TestDisplayNumericDropsDecimalPart(t *testing.T) {
	col := Column{Field: "count", Kind: ColumnNumeric}

	assert.Equal(t, "17", col.Display(17))
	assert.Equal(t, "17", col.Display(float64(17)))
}

func TestDisplayHandlesMissingValues(t *testing.T) {
	text := Column{Field: "dns", Kind: ColumnText}
	assert.Equal(t, "", text.Display(nil))

	sev := Column{Field: "severity", Kind: ColumnSeverity}
	assert.Equal(t, "", sev.Display(nil), "a nil severity renders empty, not Unknown")
}

func TestSeverityLabelsAndColors(t *testing.T) {
	assert.Equal(t, "Urgent", SeverityUrgent.Label())
	assert.Equal(t, "Minimal", SeverityMinimal.Label())
	assert.Equal(t, "Unknown", Severity(0).Label())

	r, g, b := SeverityUrgent.RGB()
	assert.Equal(t, [3]int{166, 29, 36}, [3]int{r, g, b})
}
