// Package views composes API data, the active filter state, and the report
// builders into the artifacts a user actually asks for: dashboard, single
// vulnerability, and single host reports as PDF or CSV.
package views

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
	"github.com/vulndeck/vulndeck-cli/internal/apiclient"
	"github.com/vulndeck/vulndeck-cli/internal/chartcap"
	"github.com/vulndeck/vulndeck-cli/internal/config"
	"github.com/vulndeck/vulndeck-cli/internal/filterstore"
)

// ErrFiltersNotReady is returned when a data fetch is attempted before the
// filter store has been initialized. Queries must never run against an
// unhydrated filter set.
var ErrFiltersNotReady = errors.New("filter store not initialized")

// detailPageSize is the page size used when collecting host/vuln listings
// for a report.
const detailPageSize = 100

// maxReportRows caps the rows collected into a single report so a huge
// asset base cannot balloon a PDF into thousands of pages.
const maxReportRows = 1000

// Views bundles the dependencies shared by all view operations.
type Views struct {
	client   *apiclient.Client
	filters  *filterstore.Store
	capturer *chartcap.Capturer
	report   config.ReportConfig
	logger   *zap.Logger
}

// New wires a Views facade. The capturer may be nil when chart capture is
// disabled in the configuration.
func New(client *apiclient.Client, filters *filterstore.Store, capturer *chartcap.Capturer, report config.ReportConfig, logger *zap.Logger) *Views {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Views{
		client:   client,
		filters:  filters,
		capturer: capturer,
		report:   report,
		logger:   logger,
	}
}

// captureChart rasterizes a chart document, returning nil bytes when capture
// is disabled or fails. Callers fall back to natively drawn charts.
func (v *Views) captureChart(ctx context.Context, html string, width, height int64) []byte {
	if !v.report.ChartCapture || v.capturer == nil {
		return nil
	}
	img, err := v.capturer.Capture(ctx, html, width, height)
	if err != nil {
		v.logger.Warn("Chart capture failed, falling back to native rendering.", zap.Error(err))
		return nil
	}
	return img
}

// Column sets shared between PDF tables and CSV exports.

var topVulnColumns = []schemas.Column{
	{Field: "qid", Header: "QID", Kind: schemas.ColumnNumeric, WidthMM: 18},
	{Field: "title", Header: "Title", Kind: schemas.ColumnText},
	{Field: "severity", Header: "Severity", Kind: schemas.ColumnSeverity, WidthMM: 22},
	{Field: "count", Header: "Hosts", Kind: schemas.ColumnNumeric, WidthMM: 18},
}

var topHostColumns = []schemas.Column{
	{Field: "ip", Header: "IP", Kind: schemas.ColumnText, WidthMM: 32},
	{Field: "dns", Header: "DNS", Kind: schemas.ColumnText},
	{Field: "os", Header: "OS", Kind: schemas.ColumnText, WidthMM: 45},
	{Field: "host_count", Header: "Count", Kind: schemas.ColumnNumeric, WidthMM: 18},
}

var vulnHostColumns = []schemas.Column{
	{Field: "ip", Header: "IP", Kind: schemas.ColumnText, WidthMM: 30},
	{Field: "dns", Header: "DNS", Kind: schemas.ColumnText},
	{Field: "port", Header: "Port", Kind: schemas.ColumnNumeric, WidthMM: 14},
	{Field: "protocol", Header: "Proto", Kind: schemas.ColumnText, WidthMM: 14},
	{Field: "vuln_status", Header: "Status", Kind: schemas.ColumnEnum, WidthMM: 20,
		Enum: map[string]string{"active": "Active", "fixed": "Fixed", "reopened": "Re-Opened", "new": "New"}},
	{Field: "last_detected", Header: "Last Detected", Kind: schemas.ColumnText, WidthMM: 28},
}

var hostVulnColumns = []schemas.Column{
	{Field: "qid", Header: "QID", Kind: schemas.ColumnNumeric, WidthMM: 16},
	{Field: "title", Header: "Title", Kind: schemas.ColumnText},
	{Field: "severity", Header: "Severity", Kind: schemas.ColumnSeverity, WidthMM: 20},
	{Field: "port", Header: "Port", Kind: schemas.ColumnNumeric, WidthMM: 14},
	{Field: "vuln_status", Header: "Status", Kind: schemas.ColumnEnum, WidthMM: 20,
		Enum: map[string]string{"active": "Active", "fixed": "Fixed", "reopened": "Re-Opened", "new": "New"}},
	{Field: "last_detected", Header: "Last Detected", Kind: schemas.ColumnText, WidthMM: 26},
}

func topVulnRows(items []schemas.TopVuln) []schemas.Row {
	rows := make([]schemas.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, schemas.Row{
			"qid": it.QID, "title": it.Title, "severity": it.Severity, "count": it.Count,
		})
	}
	return rows
}

func topHostRows(items []schemas.TopHost) []schemas.Row {
	rows := make([]schemas.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, schemas.Row{
			"ip": it.IP, "dns": it.DNS, "os": it.OS, "host_count": it.HostCount,
		})
	}
	return rows
}

func vulnHostRows(items []schemas.VulnHostItem) []schemas.Row {
	rows := make([]schemas.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, schemas.Row{
			"ip": it.IP, "dns": it.DNS, "os": it.OS, "port": it.Port,
			"protocol": it.Protocol, "vuln_status": it.VulnStatus,
			"first_detected": it.FirstDetected, "last_detected": it.LastDetected,
		})
	}
	return rows
}

func hostVulnRows(items []schemas.HostVulnItem) []schemas.Row {
	rows := make([]schemas.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, schemas.Row{
			"qid": it.QID, "title": it.Title, "severity": it.Severity,
			"type": it.Type, "port": it.Port, "protocol": it.Protocol,
			"vuln_status": it.VulnStatus, "first_detected": it.FirstDetected,
			"last_detected": it.LastDetected,
		})
	}
	return rows
}
