package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// newWatcherCmd creates the `watcher` command group: administration of the
// directories the server polls for dropped scan exports.
func newWatcherCmd() *cobra.Command {
	watcherCmd := &cobra.Command{
		Use:   "watcher",
		Short: "Manage the server-side import watcher",
	}
	watcherCmd.AddCommand(
		newWatcherStatusCmd(),
		newWatcherListCmd(),
		newWatcherAddCmd(),
		newWatcherUpdateCmd(),
		newWatcherDeleteCmd(),
	)
	return watcherCmd
}

func newWatcherStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the watcher is running and what it tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			status, err := c.Client.WatcherStatus(ctx)
			if err != nil {
				return err
			}
			state := "stopped"
			if status.Running {
				state = "running"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watcher %s: %d active paths, %d known files\n",
				state, status.ActivePaths, status.KnownFiles)
			return nil
		},
	}
}

func newWatcherListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watched directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			paths, err := c.Client.WatchPaths(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, wp := range paths {
				state := "enabled"
				if !wp.Enabled {
					state = "disabled"
				}
				recursive := ""
				if wp.Recursive {
					recursive = " recursive"
				}
				fmt.Fprintf(out, "%-4d %-40s %-12s %s%s\n", wp.ID, wp.Path, wp.Pattern, state, recursive)
			}
			return nil
		},
	}
}

func newWatcherAddCmd() *cobra.Command {
	var (
		pattern      string
		recursive    bool
		disabled     bool
		ignoreBefore string
	)
	addCmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Watch a directory for scan-export drops",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			wp, err := c.Client.CreateWatchPath(ctx, schemas.WatchPath{
				Path:         args[0],
				Pattern:      pattern,
				Recursive:    recursive,
				Enabled:      !disabled,
				IgnoreBefore: ignoreBefore,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (id %d)\n", wp.Path, wp.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&pattern, "pattern", "*.csv", "filename glob to pick up")
	addCmd.Flags().BoolVar(&recursive, "recursive", false, "descend into subdirectories")
	addCmd.Flags().BoolVar(&disabled, "disabled", false, "register the path without enabling it")
	addCmd.Flags().StringVar(&ignoreBefore, "ignore-before", "", "skip files older than this ISO-8601 timestamp")
	return addCmd
}

func newWatcherUpdateCmd() *cobra.Command {
	var (
		path         string
		pattern      string
		recursive    bool
		enabled      bool
		ignoreBefore string
	)
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a watched directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid watch path id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			// Only flags the caller actually set become part of the patch.
			var patch schemas.WatchPathUpdate
			if cmd.Flags().Changed("path") {
				patch.Path = &path
			}
			if cmd.Flags().Changed("pattern") {
				patch.Pattern = &pattern
			}
			if cmd.Flags().Changed("recursive") {
				patch.Recursive = &recursive
			}
			if cmd.Flags().Changed("enabled") {
				patch.Enabled = &enabled
			}
			if cmd.Flags().Changed("ignore-before") {
				patch.IgnoreBefore = &ignoreBefore
			}
			if patch == (schemas.WatchPathUpdate{}) {
				return fmt.Errorf("nothing to update; set --path, --pattern, --recursive, --enabled, or --ignore-before")
			}

			wp, err := c.Client.UpdateWatchPath(ctx, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated watch path %s (id %d)\n", wp.Path, wp.ID)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&path, "path", "", "new directory")
	updateCmd.Flags().StringVar(&pattern, "pattern", "", "new filename glob")
	updateCmd.Flags().BoolVar(&recursive, "recursive", false, "descend into subdirectories")
	updateCmd.Flags().BoolVar(&enabled, "enabled", true, "enable or disable the path")
	updateCmd.Flags().StringVar(&ignoreBefore, "ignore-before", "", "skip files older than this ISO-8601 timestamp")
	return updateCmd
}

func newWatcherDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Stop watching a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid watch path id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.DeleteWatchPath(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted watch path %d\n", id)
			return nil
		},
	}
}
