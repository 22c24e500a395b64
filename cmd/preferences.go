package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// newPreferencesCmd creates the `preferences` command group for personal
// dashboard settings.
func newPreferencesCmd() *cobra.Command {
	preferencesCmd := &cobra.Command{
		Use:   "preferences",
		Short: "Show or change your personal dashboard preferences",
	}
	preferencesCmd.AddCommand(
		newPreferencesShowCmd(),
		newPreferencesSetCmd(),
		newPreferencesResetLayoutCmd(),
	)
	return preferencesCmd
}

func newPreferencesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			prefs, err := c.Client.Preferences(ctx)
			if err != nil {
				return err
			}
			printPreferences(cmd, prefs)
			return nil
		},
	}
}

func newPreferencesSetCmd() *cobra.Command {
	var settings map[string]string
	var seenVersion string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Merge settings into the stored preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("setting") && !cmd.Flags().Changed("seen-version") {
				return fmt.Errorf("nothing to set; pass --setting or --seen-version")
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			var patch schemas.Preferences
			if len(settings) > 0 {
				patch.Settings = make(map[string]any, len(settings))
				for k, v := range settings {
					patch.Settings[k] = v
				}
			}
			patch.LastSeenVersion = seenVersion

			prefs, err := c.Client.UpdatePreferences(ctx, patch)
			if err != nil {
				return err
			}
			printPreferences(cmd, prefs)
			return nil
		},
	}
	setCmd.Flags().StringToStringVar(&settings, "setting", nil, "setting as key=value (repeatable)")
	setCmd.Flags().StringVar(&seenVersion, "seen-version", "", "mark this release's notes as seen")
	return setCmd
}

func newPreferencesResetLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-layout",
		Short: "Restore the default dashboard widget layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.ResetLayout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Dashboard layout reset to default.")
			return nil
		},
	}
}

func printPreferences(cmd *cobra.Command, prefs schemas.Preferences) {
	out := cmd.OutOrStdout()
	if len(prefs.Layout) == 0 {
		fmt.Fprintln(out, "layout:   default")
	} else {
		fmt.Fprintf(out, "layout:   %d widgets\n", len(prefs.Layout))
	}
	for k, v := range prefs.Settings {
		fmt.Fprintf(out, "setting:  %s=%v\n", k, v)
	}
	if prefs.LastSeenVersion != "" {
		fmt.Fprintf(out, "seen-version: %s\n", prefs.LastSeenVersion)
	}
}
