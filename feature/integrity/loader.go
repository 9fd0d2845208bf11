package integrity

import (
	"portfolio-api/core/storage"

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

// NewFeature creates a new Integrity feature.
func NewFeature(store *storage.ImageStore, db *gorm.DB, models []any, admin fiber.Handler, logger *zap.Logger) *Feature {
	s := NewService(store, db, models, logger)
	return &Feature{service: s, handler: NewHandler(s), admin: admin}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "integrity"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.store != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app, f.admin)
	return nil
}
