package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vulndeck/vulndeck-cli/internal/observability"
	"github.com/vulndeck/vulndeck-cli/internal/session"
)

// newLoginCmd creates the `login` command.
func newLoginCmd() *cobra.Command {
	var username, password, domain string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the dashboard API and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Username: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read username: %w", err)
				}
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			tokens, err := c.Client.Login(ctx, username, password, domain)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			logger.Info("Login succeeded",
				zap.String("username", username),
				zap.String("profile", tokens.Profile))
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", username, tokens.Profile)
			if exp, expErr := session.TokenExpiry(tokens.AccessToken); expErr == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Session valid until %s\n", exp.Local().Format(time.RFC1123))
			}
			if tokens.MustChangePassword {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: the server requires a password change for this account.")
			}
			return nil
		},
	}

	loginCmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	loginCmd.Flags().StringVarP(&domain, "domain", "d", "", "authentication domain for directory accounts")
	return loginCmd
}

// newLogoutCmd creates the `logout` command.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := initializeComponents(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
