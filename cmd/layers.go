package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
	"github.com/vulndeck/vulndeck-cli/internal/observability"
)

// newLayersCmd creates the `layers` command group: layer CRUD, rule CRUD,
// and the asynchronous reclassification job.
func newLayersCmd() *cobra.Command {
	layersCmd := &cobra.Command{
		Use:   "layers",
		Short: "Manage classification layers and their matching rules",
	}
	layersCmd.AddCommand(
		newLayersListCmd(),
		newLayersCreateCmd(),
		newLayersUpdateCmd(),
		newLayersDeleteCmd(),
		newLayersRulesCmd(),
		newLayersReclassifyCmd(),
	)
	return layersCmd
}

func newLayersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List layers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			layers, err := c.Client.Layers(ctx)
			if err != nil {
				return err
			}
			for _, l := range layers {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4d %-24s %-8s position %d\n", l.ID, l.Name, l.Color, l.Position)
			}
			return nil
		},
	}
}

func newLayersCreateCmd() *cobra.Command {
	var color string
	var position int
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			l, err := c.Client.CreateLayer(ctx, schemas.Layer{Name: args[0], Color: color, Position: position})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created layer %s (id %d)\n", l.Name, l.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&color, "color", "#808080", "display color as hex")
	createCmd.Flags().IntVar(&position, "position", 0, "ordering position")
	return createCmd
}

func newLayersUpdateCmd() *cobra.Command {
	var name, color string
	var position int
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a layer's name, color, or position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid layer id %q: %w", args[0], err)
			}
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("color") && !cmd.Flags().Changed("position") {
				return fmt.Errorf("nothing to update: pass --name, --color, or --position")
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			// The update endpoint replaces the record, so start from the
			// current one and apply only the flags that were set.
			layers, err := c.Client.Layers(ctx)
			if err != nil {
				return err
			}
			var current *schemas.Layer
			for i := range layers {
				if layers[i].ID == id {
					current = &layers[i]
					break
				}
			}
			if current == nil {
				return fmt.Errorf("layer %d not found", id)
			}
			if cmd.Flags().Changed("name") {
				current.Name = name
			}
			if cmd.Flags().Changed("color") {
				current.Color = color
			}
			if cmd.Flags().Changed("position") {
				current.Position = position
			}

			l, err := c.Client.UpdateLayer(ctx, id, *current)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated layer %s (id %d)\n", l.Name, l.ID)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&name, "name", "", "new layer name")
	updateCmd.Flags().StringVar(&color, "color", "", "display color as hex")
	updateCmd.Flags().IntVar(&position, "position", 0, "ordering position")
	return updateCmd
}

func newLayersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a layer and its rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid layer id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.DeleteLayer(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted layer %d\n", id)
			return nil
		},
	}
}

func newLayersRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the pattern rules of a layer",
	}

	var listLayerID int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the rules of a layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			rules, err := c.Client.LayerRules(ctx, listLayerID)
			if err != nil {
				return err
			}
			for _, r := range rules {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4d %-16s %-32s priority %d\n",
					r.ID, r.MatchField, r.Pattern, r.Priority)
			}
			return nil
		},
	}
	listCmd.Flags().IntVar(&listLayerID, "layer", 0, "layer ID")
	_ = listCmd.MarkFlagRequired("layer")

	var addLayerID, priority int
	var matchField string
	addCmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Add a matching rule to a layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			r, err := c.Client.CreateLayerRule(ctx, addLayerID, schemas.LayerRule{
				LayerID: addLayerID, MatchField: matchField, Pattern: args[0], Priority: priority,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created rule %d on layer %d\n", r.ID, addLayerID)
			return nil
		},
	}
	addCmd.Flags().IntVar(&addLayerID, "layer", 0, "layer ID")
	addCmd.Flags().StringVar(&matchField, "field", "title", "field the pattern matches against")
	addCmd.Flags().IntVar(&priority, "priority", 0, "rule priority (lower wins)")
	_ = addCmd.MarkFlagRequired("layer")

	var delLayerID int
	deleteCmd := &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.DeleteLayerRule(ctx, delLayerID, ruleID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %d\n", ruleID)
			return nil
		},
	}
	deleteCmd.Flags().IntVar(&delLayerID, "layer", 0, "layer ID")
	_ = deleteCmd.MarkFlagRequired("layer")

	rulesCmd.AddCommand(listCmd, addCmd, deleteCmd)
	return rulesCmd
}

func newLayersReclassifyCmd() *cobra.Command {
	var wait bool
	reclassifyCmd := &cobra.Command{
		Use:   "reclassify",
		Short: "Re-apply all layer rules across the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			start, err := c.Client.StartReclassify(ctx)
			if err != nil {
				return err
			}
			if !start.Started {
				fmt.Fprintf(cmd.OutOrStdout(), "Reclassification not started: %s\n", start.Message)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reclassification started.")
			if !wait {
				return nil
			}

			// Poll at most once per second so a long job does not hammer
			// the status endpoint.
			limiter := rate.NewLimiter(rate.Limit(1), 1)
			for {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
				status, err := c.Client.ReclassifyStatus(ctx)
				if err != nil {
					return err
				}
				if status.Error != "" {
					return fmt.Errorf("reclassification failed: %s", status.Error)
				}
				if !status.Running {
					fmt.Fprintf(cmd.OutOrStdout(), "Done: %d rules applied, %d vulnerabilities classified\n",
						status.RulesApplied, status.Classified)
					return nil
				}
				logger.Debug("Reclassification in progress",
					zap.Int("progress", status.Progress),
					zap.Int("rules_applied", status.RulesApplied),
					zap.Int("total_rules", status.TotalRules))
				fmt.Fprintf(cmd.OutOrStdout(), "  %d%% (%d/%d rules)\n",
					status.Progress, status.RulesApplied, status.TotalRules)
			}
		},
	}
	reclassifyCmd.Flags().BoolVar(&wait, "wait", true, "poll until the job completes")
	return reclassifyCmd
}
