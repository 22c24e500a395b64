package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

var exportTime = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func TestCSVQuotingAndLayout(t *testing.T) {
	cols := []schemas.Column{
		{Field: "ip", Header: "IP", Kind: schemas.ColumnText},
		{Field: "dns", Header: "DNS", Kind: schemas.ColumnText},
		{Field: "count", Header: "Count", Kind: schemas.ColumnNumeric},
	}
	rows := []schemas.Row{
		{"ip": "10.0.0.1", "dns": "a,b", "count": 3},
	}

	a := CSV("hosts.csv", cols, rows, exportTime)

	require.True(t, strings.HasPrefix(string(a.Data), "\xEF\xBB\xBF"),
		"payload must start with a UTF-8 BOM")
	body := strings.TrimPrefix(string(a.Data), "\xEF\xBB\xBF")
	assert.Equal(t, "IP,DNS,Count\r\n10.0.0.1,\"a,b\",3", body)
	assert.Equal(t, "2025-03-14_hosts.csv", a.Filename)
}

func TestCSVEscapesQuotesAndNewlines(t *testing.T) {
	cols := []schemas.Column{{Field: "v", Header: "Value", Kind: schemas.ColumnText}}
	rows := []schemas.Row{
		{"v": `say "hi"`},
		{"v": "line1\nline2"},
		{"v": "plain"},
	}

	a := CSV("x.csv", cols, rows, exportTime)
	body := strings.TrimPrefix(string(a.Data), "\xEF\xBB\xBF")

	assert.Contains(t, body, `"say ""hi"""`)
	assert.Contains(t, body, "\"line1\nline2\"")
	assert.False(t, strings.HasSuffix(body, "\r\n"), "no trailing record separator")
}

func TestCSVSkipsPresentationColumns(t *testing.T) {
	cols := []schemas.Column{
		{Field: "", Header: "Actions", Kind: schemas.ColumnText}, // presentation-only
		{Field: "qid", Header: "QID", Kind: schemas.ColumnNumeric},
	}
	a := CSV("q.csv", cols, []schemas.Row{{"qid": 11}}, exportTime)
	body := strings.TrimPrefix(string(a.Data), "\xEF\xBB\xBF")

	assert.Equal(t, "QID\r\n11", body)
	assert.NotContains(t, body, "Actions")
}

func TestCSVSeverityStaysNumeric(t *testing.T) {
	cols := []schemas.Column{{Field: "severity", Header: "Severity", Kind: schemas.ColumnSeverity}}
	a := CSV("s.csv", cols, []schemas.Row{{"severity": 5}}, exportTime)
	body := strings.TrimPrefix(string(a.Data), "\xEF\xBB\xBF")

	assert.Equal(t, "Severity\r\n5", body, "exports keep severity as the raw level")
}

func TestWriteFileCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "nested")
	a := Artifact{Filename: "out.csv", Data: []byte("data")}

	path, err := WriteFile(dir, a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}
