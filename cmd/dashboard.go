package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// newDashboardCmd creates the `dashboard` command. Without flags it prints
// the overview to stdout; --pdf and --csv generate artifacts instead.
func newDashboardCmd() *cobra.Command {
	var asPDF, asCSV bool

	dashCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the vulnerability overview for the active filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			if asPDF {
				artifact, err := c.Views.DashboardPDF(ctx)
				if err != nil {
					return err
				}
				return writeArtifact(c, artifact)
			}
			if asCSV {
				artifact, err := c.Views.DashboardCSV(ctx)
				if err != nil {
					return err
				}
				return writeArtifact(c, artifact)
			}

			overview, err := c.Views.Overview(ctx)
			if err != nil {
				return err
			}
			printOverview(cmd, c.Filters.Summary(), overview)
			return nil
		},
	}

	dashCmd.Flags().BoolVar(&asPDF, "pdf", false, "generate a PDF report instead of printing")
	dashCmd.Flags().BoolVar(&asCSV, "csv", false, "export the top-host table as CSV instead of printing")
	dashCmd.MarkFlagsMutuallyExclusive("pdf", "csv")
	return dashCmd
}

func printOverview(cmd *cobra.Command, filterLine string, o schemas.DashboardOverview) {
	out := cmd.OutOrStdout()
	if filterLine != "" {
		fmt.Fprintln(out, filterLine)
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Total vulnerabilities: %d\n", o.TotalVulns)
	fmt.Fprintf(out, "Hosts:                 %d\n", o.HostCount)
	fmt.Fprintf(out, "Critical findings:     %d\n", o.CriticalCount)

	if len(o.SeverityDistribution) > 0 {
		fmt.Fprintln(out, "\nSeverity distribution:")
		for _, d := range o.SeverityDistribution {
			fmt.Fprintf(out, "  %-10s %d\n", schemas.Severity(d.Severity).Label(), d.Count)
		}
	}
	if len(o.TopVulns) > 0 {
		fmt.Fprintln(out, "\nTop vulnerabilities:")
		for _, v := range o.TopVulns {
			fmt.Fprintf(out, "  QID %-8d %-10s %4d hosts  %s\n",
				v.QID, schemas.Severity(v.Severity).Label(), v.Count, v.Title)
		}
	}
	if len(o.TopHosts) > 0 {
		fmt.Fprintln(out, "\nTop hosts:")
		for _, h := range o.TopHosts {
			name := h.IP
			if h.DNS != "" {
				name = fmt.Sprintf("%s (%s)", h.IP, h.DNS)
			}
			fmt.Fprintf(out, "  %-40s %4d\n", name, h.HostCount)
		}
	}
	if len(o.CoherenceChecks) > 0 {
		fmt.Fprintln(out, "\nData coherence warnings:")
		for _, chk := range o.CoherenceChecks {
			fmt.Fprintf(out, "  [%s] %s: expected %s, got %s\n",
				chk.Severity, chk.CheckType, chk.ExpectedValue, chk.ActualValue)
		}
	}
}
