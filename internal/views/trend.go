package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
	"github.com/vulndeck/vulndeck-cli/internal/chartcap"
	"github.com/vulndeck/vulndeck-cli/internal/export"
	"github.com/vulndeck/vulndeck-cli/internal/report/pdf"
)

// TrendPDF renders a trend query result as a report: the query parameters as
// a descriptions grid and the series as a chart. Trend queries carry their
// own predicate, so they do not wait on the filter store.
func (v *Views) TrendPDF(ctx context.Context, req schemas.TrendQueryRequest) (export.Artifact, error) {
	runID := uuid.NewString()
	log := v.logger.With(zap.String("export_id", runID), zap.String("metric", req.Metric))
	log.Info("Building trend report.")

	resp, err := v.client.TrendQuery(ctx, req)
	if err != nil {
		return export.Artifact{}, err
	}
	if ctx.Err() != nil {
		return export.Artifact{}, ctx.Err()
	}

	b := pdf.New("Vulnerability Trend", v.report.ProductName, v.client.Logo(ctx))
	b.AddDescriptions(trendDescriptions(req, resp))

	if len(resp.Points) > 0 {
		b.AddSectionTitle("Trend: " + resp.Metric)
		img := v.captureChart(ctx, chartcap.TrendBars(resp.Metric, resp.Points), 640, 400)
		if img != nil {
			b.AddChartImage(img)
		} else {
			b.AddBarChart(trendBarData(resp.Points))
		}
	}

	data, err := b.Bytes()
	if err != nil {
		return export.Artifact{}, err
	}
	log.Info("Trend report ready.", zap.Int("pages", b.Page()), zap.Int("points", len(resp.Points)))
	return export.Artifact{Filename: b.Filename("trend_report.pdf"), Data: data}, nil
}

func trendDescriptions(req schemas.TrendQueryRequest, resp schemas.TrendQueryResponse) []pdf.Description {
	window := "full history"
	if req.DateFrom != "" || req.DateTo != "" {
		window = fmt.Sprintf("%s to %s", req.DateFrom, req.DateTo)
	}
	items := []pdf.Description{
		{Label: "Metric", Value: resp.Metric},
		{Label: "Window", Value: window},
		{Label: "Samples", Value: strconv.Itoa(len(resp.Points))},
	}
	if req.GroupBy != "" {
		items = append(items, pdf.Description{Label: "Grouped By", Value: req.GroupBy})
	}
	return items
}

func trendBarData(points []schemas.TrendDataPoint) []pdf.BarDatum {
	data := make([]pdf.BarDatum, 0, len(points))
	for _, p := range points {
		label := p.Date
		if p.Label != "" {
			label = p.Label
		}
		data = append(data, pdf.BarDatum{Label: label, Value: p.Value, Color: [3]int{30, 58, 95}})
	}
	return data
}
