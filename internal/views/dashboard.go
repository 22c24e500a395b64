package views

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
	"github.com/vulndeck/vulndeck-cli/internal/chartcap"
	"github.com/vulndeck/vulndeck-cli/internal/export"
	"github.com/vulndeck/vulndeck-cli/internal/report/pdf"
)

// Overview fetches the dashboard aggregate for the active filter set. The
// fetch is refused until the filter store has been initialized.
func (v *Views) Overview(ctx context.Context) (schemas.DashboardOverview, error) {
	if !v.filters.Ready() {
		return schemas.DashboardOverview{}, ErrFiltersNotReady
	}
	overview, err := v.client.DashboardOverview(ctx, v.filters.QueryString())
	if err != nil {
		return schemas.DashboardOverview{}, err
	}
	if ctx.Err() != nil {
		// A response that raced a cancellation is discarded, never shown.
		return schemas.DashboardOverview{}, ctx.Err()
	}
	return overview, nil
}

// DashboardPDF builds the full dashboard report: filter summary, KPI banner,
// severity and top-host charts, top-vulnerability and top-host tables, and
// any coherence warnings from the latest import.
func (v *Views) DashboardPDF(ctx context.Context) (export.Artifact, error) {
	runID := uuid.NewString()
	log := v.logger.With(zap.String("export_id", runID))
	log.Info("Building dashboard report.")

	overview, err := v.Overview(ctx)
	if err != nil {
		return export.Artifact{}, err
	}

	b := pdf.New("Vulnerability Dashboard", v.report.ProductName, v.client.Logo(ctx))
	b.AddFilterSummary(v.filters.Summary())
	b.AddKPIs([]pdf.KPI{
		{Label: "Total Vulnerabilities", Value: strconv.Itoa(overview.TotalVulns)},
		{Label: "Hosts", Value: strconv.Itoa(overview.HostCount)},
		{Label: "Critical Findings", Value: strconv.Itoa(overview.CriticalCount)},
	})

	b.AddSectionTitle("Severity Distribution / Most Exposed Hosts")
	sevImg := v.captureChart(ctx, chartcap.SeverityBars("Severity Distribution", overview.SeverityDistribution), 640, 400)
	hostLabels, hostCounts := hostChartSeries(overview.TopHosts)
	hostImg := v.captureChart(ctx, chartcap.CountBars("Most Exposed Hosts", hostLabels, hostCounts), 640, 400)
	if sevImg != nil || hostImg != nil {
		b.AddChartPair(sevImg, hostImg)
	} else {
		b.AddBarChartPair(severityBarData(overview.SeverityDistribution), hostBarData(overview.TopHosts))
	}

	if len(overview.TopVulns) > 0 {
		b.AddSectionTitle("Top Vulnerabilities")
		b.AddTable(topVulnColumns, topVulnRows(overview.TopVulns))
	}
	if len(overview.TopHosts) > 0 {
		b.AddSectionTitle("Top Hosts")
		b.AddTable(topHostColumns, topHostRows(overview.TopHosts))
	}
	if len(overview.CoherenceChecks) > 0 {
		b.AddSectionTitle("Data Coherence Warnings")
		b.AddDescriptions(coherenceDescriptions(overview.CoherenceChecks))
	}

	data, err := b.Bytes()
	if err != nil {
		return export.Artifact{}, err
	}
	log.Info("Dashboard report ready.",
		zap.Int("pages", b.Page()), zap.Int("bytes", len(data)))
	return export.Artifact{Filename: b.Filename("dashboard_report.pdf"), Data: data}, nil
}

// DashboardCSV exports the dashboard's top-host table.
func (v *Views) DashboardCSV(ctx context.Context) (export.Artifact, error) {
	runID := uuid.NewString()
	v.logger.Info("Building dashboard CSV export.", zap.String("export_id", runID))

	overview, err := v.Overview(ctx)
	if err != nil {
		return export.Artifact{}, err
	}
	return export.CSV("dashboard_hosts.csv", topHostColumns, topHostRows(overview.TopHosts), time.Now()), nil
}

func hostChartSeries(hosts []schemas.TopHost) (labels []string, counts []int) {
	for _, h := range hosts {
		label := h.IP
		if h.DNS != "" {
			label = h.DNS
		}
		labels = append(labels, label)
		counts = append(counts, h.HostCount)
	}
	return labels, counts
}

func severityBarData(dist []schemas.SeverityCount) []pdf.BarDatum {
	data := make([]pdf.BarDatum, 0, len(dist))
	// Highest severity on top, matching the captured chart ordering.
	ordered := append([]schemas.SeverityCount(nil), dist...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Severity > ordered[j].Severity })
	for _, d := range ordered {
		sev := schemas.Severity(d.Severity)
		r, g, bl := sev.RGB()
		data = append(data, pdf.BarDatum{
			Label: fmt.Sprintf("%s (%d)", sev.Label(), d.Severity),
			Value: d.Count,
			Color: [3]int{r, g, bl},
		})
	}
	return data
}

func hostBarData(hosts []schemas.TopHost) []pdf.BarDatum {
	data := make([]pdf.BarDatum, 0, len(hosts))
	for _, h := range hosts {
		label := h.IP
		if h.DNS != "" {
			label = h.DNS
		}
		data = append(data, pdf.BarDatum{Label: label, Value: h.HostCount, Color: [3]int{52, 152, 219}})
	}
	return data
}

func coherenceDescriptions(checks []schemas.CoherenceCheck) []pdf.Description {
	items := make([]pdf.Description, 0, len(checks))
	for _, c := range checks {
		label := c.CheckType
		if c.Entity != "" {
			label = c.CheckType + ": " + c.Entity
		}
		items = append(items, pdf.Description{
			Label: label,
			Value: fmt.Sprintf("expected %s, got %s", c.ExpectedValue, c.ActualValue),
		})
	}
	return items
}
