package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	adminEmail    string
	adminPassword string
)

// adminCmd is the parent command for admin account management.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

// adminCreateCmd creates an admin or resets its password.
var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account, or reset the password of an existing one",
	Example: `  admin create --email me@example.com --password 'a long secret'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmail == "" || adminPassword == "" {
			return errors.New("--email and --password are required")
		}

		ctx := cmd.Context()
		d, err := loadDeps(ctx, false)
		if err != nil {
			return err
		}
		defer d.logger.Sync()

		if err := d.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
			return err
		}

		authSvc, err := newAuth(d)
		if err != nil {
			return err
		}
		user, err := authSvc.CreateUser(ctx, adminEmail, adminPassword)
		if err != nil {
			return err
		}

		d.logger.Info("Admin account ready", zap.Uint("id", user.ID), zap.String("email", user.Email))
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password (at least 8 characters)")
	adminCmd.AddCommand(adminCreateCmd)
	RootCmd.AddCommand(adminCmd)
}
