package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/internal/export"
)

// newBrandingCmd creates the `branding` command group for report branding.
func newBrandingCmd() *cobra.Command {
	brandingCmd := &cobra.Command{
		Use:   "branding",
		Short: "Manage the logo used on generated reports",
	}

	logoCmd := &cobra.Command{
		Use:   "logo",
		Short: "Show, upload, or remove the report logo",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Download the current logo into the export directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			data := c.Client.Logo(ctx)
			if len(data) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No logo is configured.")
				return nil
			}
			return writeArtifact(c, export.Artifact{
				Filename: "logo" + logoExtension(data),
				Data:     data,
			})
		},
	}

	uploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a custom report logo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.UploadLogo(ctx, filepath.Base(args[0]), content); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logo updated.")
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the custom logo and restore the default",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.DeleteLogo(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logo removed.")
			return nil
		},
	}

	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Download the SVG logo template into the export directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			data, err := c.Client.LogoTemplate(ctx)
			if err != nil {
				return err
			}
			return writeArtifact(c, export.Artifact{Filename: "logo-template.svg", Data: data})
		},
	}

	logoCmd.AddCommand(showCmd, uploadCmd, deleteCmd)
	brandingCmd.AddCommand(logoCmd, templateCmd)
	return brandingCmd
}

// logoExtension picks a filename extension from the image signature.
func logoExtension(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return ".png"
	case bytes.HasPrefix(data, []byte("\xff\xd8")):
		return ".jpg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return ".gif"
	case bytes.Contains(data, []byte("<svg")):
		return ".svg"
	default:
		return ""
	}
}
