package chartcap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

func TestSeverityBarsOrdersHighestFirst(t *testing.T) {
	doc := SeverityBars("Severity Distribution", []schemas.SeverityCount{
		{Severity: 3, Count: 10},
		{Severity: 5, Count: 4},
		{Severity: 4, Count: 7},
	})

	urgent := strings.Index(doc, "Urgent (5)")
	critical := strings.Index(doc, "Critical (4)")
	serious := strings.Index(doc, "Serious (3)")
	assert.True(t, urgent >= 0 && critical >= 0 && serious >= 0)
	assert.Less(t, urgent, critical)
	assert.Less(t, critical, serious)
}

func TestSeverityBarsScalesAgainstLargestCount(t *testing.T) {
	doc := SeverityBars("x", []schemas.SeverityCount{
		{Severity: 5, Count: 50},
		{Severity: 4, Count: 25},
	})
	assert.Contains(t, doc, "width:100%")
	assert.Contains(t, doc, "width:50%")
}

func TestCountBarsIgnoresTrailingLabelsWithoutCounts(t *testing.T) {
	doc := CountBars("Hosts", []string{"a", "b", "c"}, []int{3, 1})
	assert.Contains(t, doc, ">a<")
	assert.Contains(t, doc, ">b<")
	assert.NotContains(t, doc, ">c<")
}

func TestDocumentsAreSelfContained(t *testing.T) {
	doc := CountBars("Hosts", []string{"web01"}, []int{1})

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<style>")
	assert.NotContains(t, doc, "<script")
	assert.NotContains(t, doc, "http://")
	assert.NotContains(t, doc, "https://")
}

func TestLabelsAreHTMLEscaped(t *testing.T) {
	doc := CountBars("<title>", []string{`<img src=x onerror="x">`}, []int{1})

	assert.NotContains(t, doc, "<img")
	assert.Contains(t, doc, "&lt;img")
	assert.Contains(t, doc, "&lt;title&gt;")
}

func TestTrendBarsPrefersPointLabel(t *testing.T) {
	doc := TrendBars("Trend", []schemas.TrendDataPoint{
		{Date: "2025-01-01", Value: 3},
		{Date: "2025-01-02", Label: "Week 1", Value: 5},
	})
	assert.Contains(t, doc, "2025-01-01")
	assert.Contains(t, doc, "Week 1")
	assert.NotContains(t, doc, ">2025-01-02<")
}

func TestZeroMaxRendersEmptyTracks(t *testing.T) {
	doc := CountBars("Hosts", []string{"a"}, []int{0})
	assert.Contains(t, doc, "width:0%")
}
