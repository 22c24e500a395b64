package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// newTrendsCmd creates the `trends` command group: ad-hoc time-series
// queries over the dataset and saved query templates.
func newTrendsCmd() *cobra.Command {
	trendsCmd := &cobra.Command{
		Use:   "trends",
		Short: "Query vulnerability trends over time",
	}
	trendsCmd.AddCommand(newTrendsQueryCmd(), newTrendsTemplatesCmd())
	return trendsCmd
}

func newTrendsQueryCmd() *cobra.Command {
	var (
		metric     string
		groupBy    string
		severities []int
		types      []string
		dateFrom   string
		dateTo     string
		asPDF      bool
	)
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Run a trend query",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			req := schemas.TrendQueryRequest{
				Metric:     metric,
				GroupBy:    groupBy,
				Severities: severities,
				Types:      types,
				DateFrom:   dateFrom,
				DateTo:     dateTo,
			}
			if asPDF {
				artifact, err := c.Views.TrendPDF(ctx, req)
				if err != nil {
					return err
				}
				return writeArtifact(c, artifact)
			}
			resp, err := c.Client.TrendQuery(ctx, req)
			if err != nil {
				return err
			}
			printTrend(cmd, resp)
			return nil
		},
	}
	queryCmd.Flags().BoolVar(&asPDF, "pdf", false, "write the series as a chart report instead of printing it")
	queryCmd.Flags().StringVar(&metric, "metric", "vuln_count", "metric to chart (vuln_count, host_count, new_findings)")
	queryCmd.Flags().StringVar(&groupBy, "group-by", "", "optional grouping dimension (severity, type, layer)")
	queryCmd.Flags().IntSliceVar(&severities, "severities", nil, "restrict to severity levels")
	queryCmd.Flags().StringSliceVar(&types, "types", nil, "restrict to vulnerability types")
	queryCmd.Flags().StringVar(&dateFrom, "date-from", "", "window start (YYYY-MM-DD)")
	queryCmd.Flags().StringVar(&dateTo, "date-to", "", "window end (YYYY-MM-DD)")
	return queryCmd
}

func newTrendsTemplatesCmd() *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage saved trend queries",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved trend queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			templates, err := c.Client.TrendTemplates(ctx)
			if err != nil {
				return err
			}
			for _, t := range templates {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4d %-24s metric=%s group_by=%s\n",
					t.ID, t.Name, t.Request.Metric, t.Request.GroupBy)
			}
			return nil
		},
	}

	var metric, groupBy string
	saveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a trend query as a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			t, err := c.Client.CreateTrendTemplate(ctx, schemas.TrendTemplate{
				Name:    args[0],
				Request: schemas.TrendQueryRequest{Metric: metric, GroupBy: groupBy},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved template %q (id %d)\n", t.Name, t.ID)
			return nil
		},
	}
	saveCmd.Flags().StringVar(&metric, "metric", "vuln_count", "metric to chart")
	saveCmd.Flags().StringVar(&groupBy, "group-by", "", "optional grouping dimension")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved trend query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid template id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.DeleteTrendTemplate(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %d\n", id)
			return nil
		},
	}

	templatesCmd.AddCommand(listCmd, saveCmd, deleteCmd)
	return templatesCmd
}

func printTrend(cmd *cobra.Command, resp schemas.TrendQueryResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s:\n", resp.Metric)

	max := 0
	for _, p := range resp.Points {
		if p.Value > max {
			max = p.Value
		}
	}
	for _, p := range resp.Points {
		label := p.Date
		if p.Label != "" {
			label = p.Date + " " + p.Label
		}
		bar := ""
		if max > 0 {
			bar = strings.Repeat("#", p.Value*40/max)
		}
		fmt.Fprintf(out, "  %-22s %6d %s\n", label, p.Value, bar)
	}
}
