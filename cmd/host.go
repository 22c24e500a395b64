package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
	"github.com/vulndeck/vulndeck-cli/internal/views"
)

// newHostCmd creates the `host` command showing a single asset.
func newHostCmd() *cobra.Command {
	var asPDF, asCSV bool

	hostCmd := &cobra.Command{
		Use:   "host <ip>",
		Short: "Show a host and its vulnerability findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip := args[0]
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			if asPDF {
				artifact, err := c.Views.HostPDF(ctx, ip)
				if err != nil {
					return err
				}
				return writeArtifact(c, artifact)
			}
			if asCSV {
				artifact, err := c.Views.HostCSV(ctx, ip)
				if err != nil {
					return err
				}
				return writeArtifact(c, artifact)
			}

			rep, err := c.Views.Host(ctx, ip)
			if err != nil {
				return err
			}
			printHost(cmd, rep)
			return nil
		},
	}

	hostCmd.Flags().BoolVar(&asPDF, "pdf", false, "generate a PDF report instead of printing")
	hostCmd.Flags().BoolVar(&asCSV, "csv", false, "export the vulnerability table as CSV instead of printing")
	hostCmd.MarkFlagsMutuallyExclusive("pdf", "csv")
	return hostCmd
}

func printHost(cmd *cobra.Command, rep views.HostReport) {
	out := cmd.OutOrStdout()
	d := rep.Detail
	name := d.IP
	if d.DNS != "" {
		name = fmt.Sprintf("%s (%s)", d.IP, d.DNS)
	}
	fmt.Fprintln(out, name)
	if d.OS != "" {
		fmt.Fprintf(out, "OS:         %s\n", d.OS)
	}
	if d.FirstSeen != "" {
		fmt.Fprintf(out, "First seen: %s\n", d.FirstSeen)
	}
	if d.LastSeen != "" {
		fmt.Fprintf(out, "Last seen:  %s\n", d.LastSeen)
	}
	fmt.Fprintf(out, "Findings:   %d\n", d.VulnCount)

	if len(rep.Vulns) > 0 {
		fmt.Fprintln(out, "\nVulnerabilities:")
		for _, v := range rep.Vulns {
			fmt.Fprintf(out, "  QID %-8d %-10s %s\n",
				v.QID, schemas.Severity(v.Severity).Label(), v.Title)
		}
		if len(rep.Vulns) < rep.Total {
			fmt.Fprintf(out, "  (first %d of %d)\n", len(rep.Vulns), rep.Total)
		}
	}
}
