package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// newUsersCmd creates the `users` command group for account administration.
func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Administer dashboard accounts",
	}
	usersCmd.AddCommand(
		newUsersListCmd(),
		newUsersCreateCmd(),
		newUsersUpdateCmd(),
		newUsersDeleteCmd(),
		newProfilesCmd(),
	)
	return usersCmd
}

func newUsersListCmd() *cobra.Command {
	var page, pageSize int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			list, err := c.Client.Users(ctx, page, pageSize)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, u := range list.Items {
				state := "active"
				if !u.IsActive {
					state = "disabled"
				}
				fmt.Fprintf(out, "%-5d %-24s %-16s %-8s last login %s\n",
					u.ID, u.Username, u.ProfileName, state, u.LastLogin)
			}
			fmt.Fprintf(out, "%d accounts total\n", list.Total)
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")
	listCmd.Flags().IntVar(&pageSize, "page-size", 50, "rows per page")
	return listCmd
}

func newUsersCreateCmd() *cobra.Command {
	var password, authType string
	var profileID int
	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			u, err := c.Client.CreateUser(ctx, schemas.UserCreate{
				Username:  args[0],
				Password:  password,
				ProfileID: profileID,
				AuthType:  authType,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&password, "password", "", "initial password (local accounts)")
	createCmd.Flags().IntVar(&profileID, "profile", 0, "authorization profile ID")
	createCmd.Flags().StringVar(&authType, "auth-type", "", "authentication backend (local, ldap)")
	_ = createCmd.MarkFlagRequired("profile")
	return createCmd
}

func newUsersUpdateCmd() *cobra.Command {
	var password string
	var profileID int
	var active bool
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}

			// Only flags the caller actually set become part of the patch.
			var patch schemas.UserUpdate
			if cmd.Flags().Changed("password") {
				patch.Password = &password
			}
			if cmd.Flags().Changed("profile") {
				patch.ProfileID = &profileID
			}
			if cmd.Flags().Changed("active") {
				patch.IsActive = &active
			}
			if patch.Password == nil && patch.ProfileID == nil && patch.IsActive == nil {
				return fmt.Errorf("nothing to update; set --password, --profile, or --active")
			}

			u, err := c.Client.UpdateUser(ctx, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated user %s (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&password, "password", "", "new password")
	updateCmd.Flags().IntVar(&profileID, "profile", 0, "new authorization profile ID")
	updateCmd.Flags().BoolVar(&active, "active", true, "enable or disable the account")
	return updateCmd
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			if err := c.Client.DeleteUser(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
			return nil
		},
	}
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List authorization profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := initializeComponents(ctx)
			if err != nil {
				return err
			}
			profiles, err := c.Client.Profiles(ctx)
			if err != nil {
				return err
			}
			for _, p := range profiles {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4d %-20s %s\n", p.ID, p.Name, p.Description)
			}
			return nil
		},
	}
}
