package chatbot

import (
	"portfolio-api/core/cache"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	admin   fiber.Handler
}

// NewFeature creates a new Chatbot feature.
func NewFeature(db *gorm.DB, cacheCfg cache.Config, admin fiber.Handler, logger *zap.Logger) *Feature {
	s := NewService(db, cacheCfg, logger)
	return &Feature{service: s, handler: NewHandler(s), admin: admin}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "chatbot"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.db != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app, f.admin)
	return nil
}

// Models lists the tables owned by this feature.
func Models() []any {
	return []any{&Message{}, &BotConfig{}}
}
