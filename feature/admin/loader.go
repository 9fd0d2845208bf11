package admin

import (
	coreauth "portfolio-api/core/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	auth    *coreauth.Service
	handler *Handler
	admin   fiber.Handler
}

// NewFeature creates a new Admin feature.
func NewFeature(auth *coreauth.Service, admin fiber.Handler, logger *zap.Logger) *Feature {
	return &Feature{auth: auth, handler: NewHandler(auth, logger), admin: admin}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "admin"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.auth != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app, f.admin)
	return nil
}

// Models lists the tables owned by this feature.
func Models() []any {
	return coreauth.Models()
}
