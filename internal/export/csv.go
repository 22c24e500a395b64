// Package export serializes typed rows into downloadable artifacts.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// utf8BOM makes spreadsheet applications detect UTF-8 reliably.
const utf8BOM = "\xEF\xBB\xBF"

// Artifact is a finished export ready to be written out.
type Artifact struct {
	Filename string
	Data     []byte
}

// CSV serializes rows under the given column definitions. Only columns with
// a non-empty Field participate. Cells are quoted per RFC 4180 when they
// contain commas, quotes, or newlines; records are CRLF-separated and the
// whole payload is prefixed with a UTF-8 byte-order mark. The filename is
// prefixed with the current date.
func CSV(name string, cols []schemas.Column, rows []schemas.Row, now time.Time) Artifact {
	active := make([]schemas.Column, 0, len(cols))
	for _, c := range cols {
		if c.Field != "" {
			active = append(active, c)
		}
	}

	records := make([]string, 0, len(rows)+1)

	header := make([]string, len(active))
	for i, c := range active {
		header[i] = escapeCell(c.Header)
	}
	records = append(records, strings.Join(header, ","))

	for _, row := range rows {
		cells := make([]string, len(active))
		for i, c := range active {
			cells[i] = escapeCell(c.Export(row[c.Field]))
		}
		records = append(records, strings.Join(cells, ","))
	}

	return Artifact{
		Filename: datePrefix(now) + name,
		Data:     []byte(utf8BOM + strings.Join(records, "\r\n")),
	}
}

// WriteFile stores the artifact under dir and returns the full path.
func WriteFile(dir string, a Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", path, err)
	}
	return path, nil
}

func datePrefix(now time.Time) string {
	return now.Format("2006-01-02") + "_"
}

// escapeCell applies RFC 4180 quoting when the value contains a delimiter,
// quote, or line break.
func escapeCell(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
