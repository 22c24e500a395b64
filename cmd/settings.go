package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// newSettingsCmd creates the `settings` command group.
func newSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change server-side settings",
	}
	settingsCmd.AddCommand(newFreshnessCmd())
	return settingsCmd
}

func newFreshnessCmd() *cobra.Command {
	var staleDays, hideDays int

	freshnessCmd := &cobra.Command{
		Use:   "freshness",
		Short: "Show or set the freshness day thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("stale-days") || cmd.Flags().Changed("hide-days") {
				current, err := c.Client.FreshnessSettings(ctx)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("stale-days") {
					current.StaleDays = staleDays
				}
				if cmd.Flags().Changed("hide-days") {
					current.HideDays = hideDays
				}
				if current.StaleDays <= 0 || current.HideDays <= current.StaleDays {
					return fmt.Errorf("invalid thresholds: hide-days (%d) must exceed stale-days (%d), both positive",
						current.HideDays, current.StaleDays)
				}
				updated, err := c.Client.UpdateFreshnessSettings(ctx, current)
				if err != nil {
					return err
				}
				printFreshness(cmd, updated)
				return nil
			}

			settings, err := c.Client.FreshnessSettings(ctx)
			if err != nil {
				return err
			}
			printFreshness(cmd, settings)
			return nil
		},
	}
	freshnessCmd.Flags().IntVar(&staleDays, "stale-days", 0, "days without detection before a finding is stale")
	freshnessCmd.Flags().IntVar(&hideDays, "hide-days", 0, "days without detection before a finding is hidden")
	return freshnessCmd
}

func printFreshness(cmd *cobra.Command, s schemas.FreshnessSettings) {
	fmt.Fprintf(cmd.OutOrStdout(), "Stale after: %d days\nHidden after: %d days\n", s.StaleDays, s.HideDays)
}
