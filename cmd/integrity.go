package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"portfolio-api/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag    bool
	purgeFlag  bool
	yesConfirm bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check that storage and database agree",
	Long:  `Runs the structure, orphan and schema checks. Nothing is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			if err := runStructure(ctx, svc, l, false); err != nil {
				return err
			}
			if err := runOrphans(ctx, svc, l, false); err != nil {
				return err
			}
			return runSchema(ctx, svc, l)
		})
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the bucket folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			return runStructure(ctx, svc, l, fixFlag)
		})
	},
}

// orphansCmd represents the integrity orphans command
var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Find, and optionally purge, images nothing references",
	Example: `  # Report only
  integrity orphans

  # Purge with auto-confirm (non-interactive)
  integrity orphans --purge --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			return runOrphans(ctx, svc, l, purgeFlag)
		})
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the database schema against the models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			return runSchema(ctx, svc, l)
		})
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, orphansCmd, schemaCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	orphansCmd.Flags().BoolVar(&purgeFlag, "purge", false, "Delete orphaned images")
	orphansCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
}

func withIntegrity(ctx context.Context, run func(context.Context, *integrity.Service, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := loadDeps(ctx, true)
	if err != nil {
		return err
	}
	defer d.logger.Sync()
	return run(ctx, integrity.NewService(d.store, d.db, allModels(), d.logger), d.logger)
}

func runStructure(ctx context.Context, svc *integrity.Service, l *zap.Logger, fix bool) error {
	l.Info("Checking folder structure...")
	missing, err := svc.CheckStructure(ctx)
	if err != nil {
		return fmt.Errorf("structure check failed: %w", err)
	}
	if len(missing) == 0 {
		l.Info("Structure is intact.")
		return nil
	}

	l.Warn("Missing folders detected", zap.Strings("missing", missing))
	if !fix {
		l.Info("Run with --fix to create missing folders.")
		return nil
	}
	if err := svc.FixStructure(ctx, missing); err != nil {
		return fmt.Errorf("failed to fix structure: %w", err)
	}
	l.Info("Structure fixed successfully.")
	return nil
}

func runOrphans(ctx context.Context, svc *integrity.Service, l *zap.Logger, purge bool) error {
	l.Info("Scanning for orphaned images...")
	report, err := svc.FindOrphans(ctx)
	if err != nil {
		return fmt.Errorf("orphan scan failed: %w", err)
	}

	l.Info("Orphan report",
		zap.Int("scanned", report.Scanned),
		zap.Int("orphans", len(report.Orphans)),
		zap.Int("malformed_rows", report.Malformed),
	)
	maxShow := min(5, len(report.Orphans))
	for _, key := range report.Orphans[:maxShow] {
		l.Info("Sample orphan", zap.String("key", key))
	}
	if len(report.Orphans) > maxShow {
		l.Info("Additional orphans not shown", zap.Int("count", len(report.Orphans)-maxShow))
	}

	if !purge || len(report.Orphans) == 0 {
		return nil
	}
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	result, err := svc.PurgeOrphans(ctx)
	if err != nil {
		return err
	}
	l.Info("Purge completed", zap.Int("removed", len(result.Removed)), zap.Int("failed", len(result.Failed)))
	return nil
}

func runSchema(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
	l.Info("Checking database schema...")
	report, err := svc.CheckSchema(ctx)
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	if report.Matched {
		l.Info("Database schema matches the models.")
		return nil
	}

	for table, tr := range report.Tables {
		if tr.Status != "ok" {
			l.Warn("Missing columns", zap.String("table", table), zap.Strings("columns", tr.MissingColumns))
		}
	}
	for _, e := range report.Errors {
		l.Error("Inspection error", zap.String("error", e))
	}
	l.Info("Run the migrate command to create missing tables and columns.")
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nType 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
