package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newMonitoringCmd creates the `monitoring` command printing the server
// health snapshot.
func newMonitoringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitoring",
		Short: "Show backend service health and resource usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			snap, err := c.Client.Monitoring(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, svc := range snap.Services {
				fmt.Fprintf(out, "%-20s %-10s %s\n", svc.Name, svc.Status, svc.Detail)
			}
			m := snap.Metrics
			fmt.Fprintf(out, "\nCPU %.1f%%  Memory %.1f%%  Disk %.1f%%  Uptime %s\n",
				m.CPUPercent, m.MemoryPercent, m.DiskPercent,
				(time.Duration(m.UptimeSeconds) * time.Second).String())

			for _, a := range snap.Alerts {
				fmt.Fprintf(out, "[%s] %s\n", a.Level, a.Message)
			}
			return nil
		},
	}
}
