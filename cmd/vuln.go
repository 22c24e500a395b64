package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// newVulnCmd creates the `vuln` command showing a single QID.
func newVulnCmd() *cobra.Command {
	var asPDF, asCSV bool

	vulnCmd := &cobra.Command{
		Use:   "vuln <qid>",
		Short: "Show a vulnerability and its affected hosts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid QID %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			if asPDF {
				artifact, err := c.Views.VulnPDF(ctx, qid)
				if err != nil {
					return err
				}
				return writeArtifact(c, artifact)
			}
			if asCSV {
				artifact, err := c.Views.VulnCSV(ctx, qid)
				if err != nil {
					return err
				}
				return writeArtifact(c, artifact)
			}

			rep, err := c.Views.Vuln(ctx, qid)
			if err != nil {
				return err
			}
			printVuln(cmd, rep.Detail, len(rep.Hosts), rep.Total)
			return nil
		},
	}

	vulnCmd.Flags().BoolVar(&asPDF, "pdf", false, "generate a PDF report instead of printing")
	vulnCmd.Flags().BoolVar(&asCSV, "csv", false, "export the affected-host table as CSV instead of printing")
	vulnCmd.MarkFlagsMutuallyExclusive("pdf", "csv")
	return vulnCmd
}

func printVuln(cmd *cobra.Command, d schemas.VulnDetail, collected, total int) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "QID %d: %s\n", d.QID, d.Title)
	fmt.Fprintf(out, "Severity:  %s\n", schemas.Severity(d.Severity).Label())
	if d.Type != "" {
		fmt.Fprintf(out, "Type:      %s\n", d.Type)
	}
	if d.Category != "" {
		fmt.Fprintf(out, "Category:  %s\n", d.Category)
	}
	if d.CVSS3Base != "" {
		fmt.Fprintf(out, "CVSS3:     %s\n", d.CVSS3Base)
	}
	if len(d.CVEIDs) > 0 {
		fmt.Fprintf(out, "CVEs:      %s\n", strings.Join(d.CVEIDs, ", "))
	}
	fmt.Fprintf(out, "Hosts:     %d affected, %d occurrences\n", d.AffectedHostCount, d.TotalOccurrences)
	if collected < total {
		fmt.Fprintf(out, "(showing first %d of %d hosts in exports)\n", collected, total)
	}
	if d.Solution != "" {
		fmt.Fprintf(out, "\nSolution:\n%s\n", d.Solution)
	}
}
