package cmd

import (
	"context"
	"fmt"

	"portfolio-api/core/auth"
	"portfolio-api/core/config"
	"portfolio-api/core/database"
	"portfolio-api/core/logger"
	"portfolio-api/core/storage"
	"portfolio-api/feature/admin"
	"portfolio-api/feature/chatbot"
	"portfolio-api/feature/contact"
	"portfolio-api/feature/flipbooks"
	"portfolio-api/feature/projects"
	"portfolio-api/feature/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps holds what every command needs.
type deps struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	store  *storage.ImageStore
}

// loadDeps loads configuration and opens the database. Storage is only
// connected when withStorage is set.
func loadDeps(ctx context.Context, withStorage bool) (*deps, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	d := &deps{cfg: cfg, logger: logg, db: db}
	if !withStorage {
		return d, nil
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	d.store, err = storage.NewImageStore(client, cfg.Storage, logg)
	if err != nil {
		return nil, err
	}
	if err := d.store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// allModels lists every table owned by a feature.
func allModels() []any {
	var models []any
	for _, m := range [][]any{
		admin.Models(),
		projects.Models(),
		services.Models(),
		flipbooks.Models(),
		chatbot.Models(),
		contact.Models(),
	} {
		models = append(models, m...)
	}
	return models
}

// migrate creates missing tables and columns, then seeds the chatbot config.
func migrate(ctx context.Context, d *deps) error {
	if err := d.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	bot := chatbot.NewService(d.db, d.cfg.Cache, d.logger)
	if err := bot.EnsureDefaultConfig(ctx); err != nil {
		return fmt.Errorf("failed to seed chatbot config: %w", err)
	}
	return nil
}

func newAuth(d *deps) (*auth.Service, error) {
	return auth.NewService(d.db, d.cfg.Auth, d.logger)
}
