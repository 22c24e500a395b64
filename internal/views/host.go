package views

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
	"github.com/vulndeck/vulndeck-cli/internal/chartcap"
	"github.com/vulndeck/vulndeck-cli/internal/export"
	"github.com/vulndeck/vulndeck-cli/internal/report/pdf"
)

// HostReport is the assembled state of a single-host view.
type HostReport struct {
	Detail schemas.HostDetail
	Vulns  []schemas.HostVulnItem
	Total  int
}

// Host loads a host record and its vulnerability occurrences, detail and
// first page in parallel, remaining pages sequentially up to the report cap.
func (v *Views) Host(ctx context.Context, ip string) (HostReport, error) {
	if !v.filters.Ready() {
		return HostReport{}, ErrFiltersNotReady
	}

	var (
		detail schemas.HostDetail
		first  schemas.PaginatedHostVulns
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = v.client.HostDetail(gctx, ip)
		return err
	})
	g.Go(func() error {
		var err error
		first, err = v.client.HostVulns(gctx, ip, 1, detailPageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return HostReport{}, err
	}
	if ctx.Err() != nil {
		return HostReport{}, ctx.Err()
	}

	vulns := first.Items
	for page := 2; len(vulns) < first.Total && len(vulns) < maxReportRows; page++ {
		next, err := v.client.HostVulns(ctx, ip, page, detailPageSize)
		if err != nil {
			return HostReport{}, err
		}
		if len(next.Items) == 0 {
			break
		}
		vulns = append(vulns, next.Items...)
	}
	if len(vulns) > maxReportRows {
		vulns = vulns[:maxReportRows]
	}
	return HostReport{Detail: detail, Vulns: vulns, Total: first.Total}, nil
}

// HostPDF builds the single-host report: identity grid, a severity breakdown
// of the host's findings, and the vulnerability table.
func (v *Views) HostPDF(ctx context.Context, ip string) (export.Artifact, error) {
	runID := uuid.NewString()
	log := v.logger.With(zap.String("export_id", runID), zap.String("ip", ip))
	log.Info("Building host report.")

	rep, err := v.Host(ctx, ip)
	if err != nil {
		return export.Artifact{}, err
	}
	d := rep.Detail

	title := d.IP
	if d.DNS != "" {
		title = d.DNS + " (" + d.IP + ")"
	}
	b := pdf.New(title, v.report.ProductName, v.client.Logo(ctx))
	b.AddFilterSummary(v.filters.Summary())
	b.AddDescriptions(hostDescriptions(d))

	dist := hostSeverityDistribution(rep.Vulns)
	if len(dist) > 0 {
		b.AddSectionTitle("Severity Breakdown")
		img := v.captureChart(ctx, chartcap.SeverityBars("Severity Breakdown", dist), 640, 400)
		if img != nil {
			b.AddChartImage(img)
		} else {
			b.AddBarChart(severityBarData(dist))
		}
	}

	if len(rep.Vulns) > 0 {
		tableTitle := fmt.Sprintf("Vulnerabilities (%d)", rep.Total)
		if len(rep.Vulns) < rep.Total {
			tableTitle = fmt.Sprintf("Vulnerabilities (first %d of %d)", len(rep.Vulns), rep.Total)
		}
		b.AddSectionTitle(tableTitle)
		b.AddTable(hostVulnColumns, hostVulnRows(rep.Vulns))
	}

	data, err := b.Bytes()
	if err != nil {
		return export.Artifact{}, err
	}
	log.Info("Host report ready.", zap.Int("pages", b.Page()), zap.Int("vulns", len(rep.Vulns)))
	name := fmt.Sprintf("host_%s_report.pdf", fileSafe(ip))
	return export.Artifact{Filename: b.Filename(name), Data: data}, nil
}

// HostCSV exports the vulnerability listing of a host.
func (v *Views) HostCSV(ctx context.Context, ip string) (export.Artifact, error) {
	runID := uuid.NewString()
	v.logger.Info("Building host CSV export.",
		zap.String("export_id", runID), zap.String("ip", ip))

	rep, err := v.Host(ctx, ip)
	if err != nil {
		return export.Artifact{}, err
	}
	name := fmt.Sprintf("host_%s_vulns.csv", fileSafe(ip))
	return export.CSV(name, hostVulnColumns, hostVulnRows(rep.Vulns), time.Now()), nil
}

func hostDescriptions(d schemas.HostDetail) []pdf.Description {
	return []pdf.Description{
		{Label: "IP Address", Value: d.IP},
		{Label: "DNS Name", Value: d.DNS},
		{Label: "NetBIOS", Value: d.NetBIOS},
		{Label: "Operating System", Value: d.OS},
		{Label: "OS CPE", Value: d.OSCPE},
		{Label: "First Seen", Value: d.FirstSeen},
		{Label: "Last Seen", Value: d.LastSeen},
		{Label: "Vulnerability Count", Value: strconv.Itoa(d.VulnCount)},
	}
}

// hostSeverityDistribution tallies the collected findings by severity.
func hostSeverityDistribution(vulns []schemas.HostVulnItem) []schemas.SeverityCount {
	tally := map[int]int{}
	for _, vu := range vulns {
		tally[vu.Severity]++
	}
	dist := make([]schemas.SeverityCount, 0, len(tally))
	for sev, count := range tally {
		dist = append(dist, schemas.SeverityCount{Severity: sev, Count: count})
	}
	sort.Slice(dist, func(i, j int) bool { return dist[i].Severity < dist[j].Severity })
	return dist
}

// fileSafe replaces characters that cannot appear in artifact filenames.
func fileSafe(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', ' ':
			out[i] = '-'
		}
	}
	return string(out)
}
