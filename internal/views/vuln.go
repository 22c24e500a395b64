package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
	"github.com/vulndeck/vulndeck-cli/internal/export"
	"github.com/vulndeck/vulndeck-cli/internal/report/pdf"
)

// VulnReport is the assembled state of a single-vulnerability view: the
// detail record plus every affected host collected up to the report cap.
type VulnReport struct {
	Detail schemas.VulnDetail
	Hosts  []schemas.VulnHostItem
	// Total is the server-side affected-host count, which may exceed
	// len(Hosts) when the cap was reached.
	Total int
}

// Vuln loads a vulnerability and its affected hosts. The detail record and
// the first host page are fetched in parallel; remaining pages follow
// sequentially. A cancellation discards everything already received.
func (v *Views) Vuln(ctx context.Context, qid int) (VulnReport, error) {
	if !v.filters.Ready() {
		return VulnReport{}, ErrFiltersNotReady
	}

	var (
		detail schemas.VulnDetail
		first  schemas.PaginatedVulnHosts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = v.client.VulnDetail(gctx, qid)
		return err
	})
	g.Go(func() error {
		var err error
		first, err = v.client.VulnHosts(gctx, qid, 1, detailPageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return VulnReport{}, err
	}
	if ctx.Err() != nil {
		return VulnReport{}, ctx.Err()
	}

	hosts := first.Items
	for page := 2; len(hosts) < first.Total && len(hosts) < maxReportRows; page++ {
		next, err := v.client.VulnHosts(ctx, qid, page, detailPageSize)
		if err != nil {
			return VulnReport{}, err
		}
		if len(next.Items) == 0 {
			break
		}
		hosts = append(hosts, next.Items...)
	}
	if len(hosts) > maxReportRows {
		hosts = hosts[:maxReportRows]
	}
	return VulnReport{Detail: detail, Hosts: hosts, Total: first.Total}, nil
}

// VulnPDF builds the single-vulnerability report: metadata grid, threat,
// impact and solution narratives, then the affected-host table.
func (v *Views) VulnPDF(ctx context.Context, qid int) (export.Artifact, error) {
	runID := uuid.NewString()
	log := v.logger.With(zap.String("export_id", runID), zap.Int("qid", qid))
	log.Info("Building vulnerability report.")

	rep, err := v.Vuln(ctx, qid)
	if err != nil {
		return export.Artifact{}, err
	}
	d := rep.Detail

	b := pdf.New(d.Title, v.report.ProductName, v.client.Logo(ctx))
	b.AddFilterSummary(v.filters.Summary())
	b.AddDescriptions(vulnDescriptions(d))

	b.AddTextBlock("Threat", d.Threat)
	b.AddTextBlock("Impact", d.Impact)
	b.AddTextBlock("Solution", d.Solution)

	if len(rep.Hosts) > 0 {
		title := fmt.Sprintf("Affected Hosts (%d)", rep.Total)
		if len(rep.Hosts) < rep.Total {
			title = fmt.Sprintf("Affected Hosts (first %d of %d)", len(rep.Hosts), rep.Total)
		}
		b.AddSectionTitle(title)
		b.AddTable(vulnHostColumns, vulnHostRows(rep.Hosts))
	}

	data, err := b.Bytes()
	if err != nil {
		return export.Artifact{}, err
	}
	log.Info("Vulnerability report ready.", zap.Int("pages", b.Page()), zap.Int("hosts", len(rep.Hosts)))
	return export.Artifact{Filename: b.Filename(fmt.Sprintf("vuln_%d_report.pdf", qid)), Data: data}, nil
}

// VulnCSV exports the affected-host listing of a vulnerability.
func (v *Views) VulnCSV(ctx context.Context, qid int) (export.Artifact, error) {
	runID := uuid.NewString()
	v.logger.Info("Building vulnerability CSV export.",
		zap.String("export_id", runID), zap.Int("qid", qid))

	rep, err := v.Vuln(ctx, qid)
	if err != nil {
		return export.Artifact{}, err
	}
	name := fmt.Sprintf("vuln_%d_hosts.csv", qid)
	return export.CSV(name, vulnHostColumns, vulnHostRows(rep.Hosts), time.Now()), nil
}

func vulnDescriptions(d schemas.VulnDetail) []pdf.Description {
	items := []pdf.Description{
		{Label: "QID", Value: strconv.Itoa(d.QID)},
		{Label: "Severity", Value: schemas.Severity(d.Severity).Label()},
		{Label: "Type", Value: d.Type},
		{Label: "Category", Value: d.Category},
		{Label: "CVSS Base", Value: d.CVSSBase},
		{Label: "CVSS3 Base", Value: d.CVSS3Base},
		{Label: "Vendor Reference", Value: d.VendorReference},
		{Label: "Affected Hosts", Value: strconv.Itoa(d.AffectedHostCount)},
		{Label: "Occurrences", Value: strconv.Itoa(d.TotalOccurrences)},
	}
	if len(d.CVEIDs) > 0 {
		items = append(items, pdf.Description{Label: "CVE IDs", Value: strings.Join(d.CVEIDs, ", ")})
	}
	return items
}
