package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vulndeck/vulndeck-cli/internal/observability"
)

// newImportsCmd creates the `imports` command group for scan-export
// ingestion jobs.
func newImportsCmd() *cobra.Command {
	importsCmd := &cobra.Command{
		Use:   "imports",
		Short: "Manage scan-export import jobs",
	}
	importsCmd.AddCommand(newImportsListCmd(), newImportsUploadCmd(), newImportsDeleteCmd())
	return importsCmd
}

func newImportsListCmd() *cobra.Command {
	var page, pageSize int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List import jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			list, err := c.Client.Imports(ctx, page, pageSize)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, job := range list.Items {
				fmt.Fprintf(out, "%-5d %-30s %-10s %3d%%  %d/%d rows\n",
					job.ID, job.Filename, job.Status, job.Progress, job.RowsProcessed, job.RowsTotal)
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "      error: %s\n", job.ErrorMessage)
				}
			}
			fmt.Fprintf(out, "%d jobs total\n", list.Total)
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")
	listCmd.Flags().IntVar(&pageSize, "page-size", 20, "rows per page")
	return listCmd
}

func newImportsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a scanner export for ingestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			name := filepath.Base(args[0])
			logger.Info("Uploading scan export",
				zap.String("file", name), zap.Int("bytes", len(content)))

			result, err := c.Client.UploadImport(ctx, name, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Import job %d started (report %d, status %s)\n",
				result.JobID, result.ReportID, result.Status)
			return nil
		},
	}
}

func newImportsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an import and its ingested data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid import id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.DeleteImport(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted import %d\n", id)
			return nil
		},
	}
}
