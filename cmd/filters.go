package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// newFiltersCmd creates the `filters` command group controlling the active
// data predicate.
func newFiltersCmd() *cobra.Command {
	filtersCmd := &cobra.Command{
		Use:   "filters",
		Short: "Inspect and edit the active data filters",
	}
	filtersCmd.AddCommand(newFiltersShowCmd(), newFiltersSetCmd(), newFiltersResetCmd())
	return filtersCmd
}

func newFiltersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active filter predicate",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := initializeComponents(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Filters.Summary())
			fmt.Fprintf(cmd.OutOrStdout(), "query: %s\n", c.Filters.QueryString())
			return nil
		},
	}
}

func newFiltersSetCmd() *cobra.Command {
	var (
		severities []int
		types      []string
		layers     []int
		osClasses  []string
		freshness  string
		dateFrom   string
		dateTo     string
		reportID   int
	)

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update one or more filter dimensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := initializeComponents(cmd.Context())
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("severities") {
				c.Filters.SetSeverities(severities)
				changed = true
			}
			if cmd.Flags().Changed("types") {
				c.Filters.SetTypes(types)
				changed = true
			}
			if cmd.Flags().Changed("layers") {
				c.Filters.SetLayers(layers)
				changed = true
			}
			if cmd.Flags().Changed("os") {
				c.Filters.SetOSClasses(osClasses)
				changed = true
			}
			if cmd.Flags().Changed("freshness") {
				switch schemas.Freshness(freshness) {
				case schemas.FreshnessActive, schemas.FreshnessStale, schemas.FreshnessAll:
					c.Filters.SetFreshness(schemas.Freshness(freshness))
				default:
					return fmt.Errorf("invalid freshness %q: must be active, stale, or all", freshness)
				}
				changed = true
			}
			if cmd.Flags().Changed("date-from") || cmd.Flags().Changed("date-to") {
				c.Filters.SetDateRange(dateFrom, dateTo)
				changed = true
			}
			if cmd.Flags().Changed("report-id") {
				c.Filters.SetReportID(reportID)
				changed = true
			}

			if !changed {
				return fmt.Errorf("no filter flags given; see 'vulndeck filters set --help'")
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Filters.Summary())
			return nil
		},
	}

	setCmd.Flags().IntSliceVar(&severities, "severities", nil, "severity levels to include (1-5)")
	setCmd.Flags().StringSliceVar(&types, "types", nil, "vulnerability types to include")
	setCmd.Flags().IntSliceVar(&layers, "layers", nil, "layer IDs to include")
	setCmd.Flags().StringSliceVar(&osClasses, "os", nil, "OS classes to include")
	setCmd.Flags().StringVar(&freshness, "freshness", "", "freshness bucket: active, stale, or all")
	setCmd.Flags().StringVar(&dateFrom, "date-from", "", "detection window start (YYYY-MM-DD, not persisted)")
	setCmd.Flags().StringVar(&dateTo, "date-to", "", "detection window end (YYYY-MM-DD, not persisted)")
	setCmd.Flags().IntVar(&reportID, "report-id", 0, "pin queries to a single scan report (not persisted)")
	return setCmd
}

func newFiltersResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the enterprise default filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := initializeComponents(cmd.Context())
			if err != nil {
				return err
			}
			c.Filters.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), c.Filters.Summary())
			return nil
		},
	}
}
