package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Creates missing tables and columns for every feature and seeds the default chatbot config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := loadDeps(ctx, false)
		if err != nil {
			return err
		}
		defer d.logger.Sync()

		if err := migrate(ctx, d); err != nil {
			return err
		}

		authSvc, err := newAuth(d)
		if err == nil {
			if n, err := authSvc.PurgeRevoked(ctx); err != nil {
				d.logger.Warn("Failed to purge revoked tokens", zap.Error(err))
			} else if n > 0 {
				d.logger.Info("Purged expired token revocations", zap.Int64("count", n))
			}
		}

		d.logger.Info("Database migrated", zap.Int("models", len(allModels())))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
