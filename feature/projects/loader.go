package projects

import (
	"portfolio-api/core/reconcile"

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

// NewFeature creates a new Projects feature.
func NewFeature(db *gorm.DB, images *reconcile.Reconciler, admin fiber.Handler, logger *zap.Logger) *Feature {
	svc := NewService(db, images, logger)
	return &Feature{service: svc, handler: NewHandler(svc), admin: admin}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "projects"
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
	return []any{&Project{}}
}
