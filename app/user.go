package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/daemon"
	"github.com/GoSlider/GoSlider/internal/db/models"
)

var (
	userEmail    string
	userPassword string
	userRole     string
	groupSource  string

	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage local accounts",
	}

	userCreateCmd = &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create a local account with a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			if err = daemon.Seed(&cfg, db); err != nil {
				return err
			}

			user, err := auth.NewLocalProvider(db).CreateUser(args[0], userEmail, userPassword, "", "", 0)
			if err != nil {
				return err
			}

			if err = auth.NewService(db).AssignRole(user.ID, userRole); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %d %q with role %s\n", user.ID, user.Username, userRole)

			return err
		},
	}

	groupCmd = &cobra.Command{
		Use:   "group",
		Short: "Map directory and identity provider groups to roles",
	}

	groupMapCmd = &cobra.Command{
		Use:   "map GROUP ROLE",
		Short: "Grant ROLE to all members of an ldap or oidc GROUP",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			source := models.GroupSource(groupSource)
			if source != models.GroupSourceLDAP && source != models.GroupSourceOIDC {
				return fmt.Errorf("unknown group source %q", groupSource)
			}

			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			if err = daemon.Seed(&cfg, db); err != nil {
				return err
			}

			if err = auth.NewService(db).MapGroup(source, args[0], args[1]); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "mapped %s group %q to role %s\n", source, args[0], args[1])

			return err
		},
	}
)

func init() { //nolint: gochecknoinits
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password")
	userCreateCmd.Flags().StringVar(&userRole, "role", daemon.RoleViewer, "role name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	groupMapCmd.Flags().StringVar(&groupSource, "source", string(models.GroupSourceLDAP), "ldap or oidc")

	userCmd.AddCommand(userCreateCmd)
	groupCmd.AddCommand(groupMapCmd)
	rootCmd.AddCommand(userCmd, groupCmd)
}
