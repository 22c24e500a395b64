package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// newPresetCmd creates the `preset` command group for enterprise and
// personal filter presets.
func newPresetCmd() *cobra.Command {
	presetCmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage the enterprise default preset and personal presets",
	}
	presetCmd.AddCommand(
		newPresetShowCmd(),
		newPresetSaveCmd(),
		newPresetListCmd(),
		newPresetSaveUserCmd(),
		newPresetDeleteUserCmd(),
	)
	return presetCmd
}

func newPresetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the enterprise default preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			preset, err := c.Client.EnterprisePreset(ctx)
			if err != nil {
				return err
			}
			printPreset(cmd, preset.Name, preset.Severities, preset.Types, preset.Layers)
			return nil
		},
	}
}

func newPresetSaveCmd() *cobra.Command {
	var (
		severities []int
		types      []string
		layers     []int
		name       string
	)
	saveCmd := &cobra.Command{
		Use:     "save",
		Aliases: []string{"set"},
		Short:   "Replace the enterprise default preset (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			updated, err := c.Client.UpdateEnterprisePreset(ctx, schemas.EnterprisePreset{
				Name: name, Severities: severities, Types: types, Layers: layers,
			})
			if err != nil {
				return err
			}
			printPreset(cmd, updated.Name, updated.Severities, updated.Types, updated.Layers)
			return nil
		},
	}
	saveCmd.Flags().StringVar(&name, "name", "", "preset display name")
	saveCmd.Flags().IntSliceVar(&severities, "severities", nil, "severity levels")
	saveCmd.Flags().StringSliceVar(&types, "types", nil, "vulnerability types")
	saveCmd.Flags().IntSliceVar(&layers, "layers", nil, "layer IDs")
	return saveCmd
}

func newPresetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List personal presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			presets, err := c.Client.UserPresets(ctx)
			if err != nil {
				return err
			}
			for _, p := range presets {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4d %-24s severities=%s types=%s layers=%s\n",
					p.ID, p.Name, joinIntList(p.Severities), strings.Join(p.Types, ","), joinIntList(p.Layers))
			}
			return nil
		},
	}
}

func newPresetSaveUserCmd() *cobra.Command {
	saveUserCmd := &cobra.Command{
		Use:   "save-user <name>",
		Short: "Save the active filters as a personal preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			severities, types, layers, _, _, _, _, _ := c.Filters.Snapshot()
			created, err := c.Client.CreateUserPreset(ctx, schemas.UserPreset{
				Name: args[0], Severities: severities, Types: types, Layers: layers,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %q (id %d)\n", created.Name, created.ID)
			return nil
		},
	}
	return saveUserCmd
}

func newPresetDeleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a personal preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid preset id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.DeleteUserPreset(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %d\n", id)
			return nil
		},
	}
}

func printPreset(cmd *cobra.Command, name string, severities []int, types []string, layers []int) {
	out := cmd.OutOrStdout()
	if name != "" {
		fmt.Fprintf(out, "Name:       %s\n", name)
	}
	fmt.Fprintf(out, "Severities: %s\n", joinIntList(severities))
	fmt.Fprintf(out, "Types:      %s\n", strings.Join(types, ", "))
	fmt.Fprintf(out, "Layers:     %s\n", joinIntList(layers))
}

func joinIntList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
