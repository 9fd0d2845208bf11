package integrity

import (
	"errors"

	"portfolio-api/core/logger"
	"portfolio-api/core/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes. Every route goes through admin.
func (h *Handler) RegisterRoutes(app fiber.Router, admin fiber.Handler) {
	group := app.Group("/integrity", admin)
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Post("/structure/fix", h.HandleStructureFix)
	group.Get("/orphans", h.HandleOrphans)
	group.Post("/orphans/purge", h.HandlePurgeOrphans)
	group.Get("/schema", h.HandleSchemaCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Runs the structure, orphan and schema checks. Nothing is modified.
// @Tags integrity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope "Combined Report"
// @Router /api/integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.UserContext()
	report := fiber.Map{}

	if missing, err := h.service.CheckStructure(ctx); err != nil {
		report["structure"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["structure"] = fiber.Map{"status": "ok", "missing": missing}
	}

	if orphans, err := h.service.FindOrphans(ctx); err != nil {
		report["orphans"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["orphans"] = orphans
	}

	if schema, err := h.service.CheckSchema(ctx); err != nil {
		report["schema"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	return response.OK(c, "", report)
}

// HandleStructureCheck lists the missing bucket folders.
// @Summary Check Structure
// @Description Checks that the image folders exist in the storage bucket.
// @Tags integrity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]string}
// @Failure 500 {object} response.Envelope
// @Router /api/integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	missing, err := h.service.CheckStructure(c.UserContext())
	if err != nil {
		return h.fail(c, "Structure check failed", err)
	}
	if len(missing) > 0 {
		logger.WithRayID(h.service.logger, c).Warn("Missing folders detected", zap.Strings("missing", missing))
	}
	return response.OK(c, "", missing)
}

// HandleStructureFix creates the missing bucket folders.
// @Summary Fix Structure
// @Tags integrity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]string} "Created folders"
// @Failure 500 {object} response.Envelope
// @Router /api/integrity/structure/fix [post]
func (h *Handler) HandleStructureFix(c *fiber.Ctx) error {
	ctx := c.UserContext()
	missing, err := h.service.CheckStructure(ctx)
	if err != nil {
		return h.fail(c, "Structure check failed", err)
	}
	if err := h.service.FixStructure(ctx, missing); err != nil {
		return h.fail(c, "Failed to fix structure", err)
	}
	return response.OK(c, "Structure fixed", missing)
}

// HandleOrphans lists stored images that nothing references.
// @Summary Find Orphaned Images
// @Tags integrity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=OrphanReport}
// @Failure 500 {object} response.Envelope
// @Router /api/integrity/orphans [get]
func (h *Handler) HandleOrphans(c *fiber.Ctx) error {
	report, err := h.service.FindOrphans(c.UserContext())
	if err != nil {
		return h.fail(c, "Orphan scan failed", err)
	}
	return response.OK(c, "", report)
}

// HandlePurgeOrphans deletes stored images that nothing references.
// @Summary Purge Orphaned Images
// @Tags integrity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=PurgeReport}
// @Failure 409 {object} response.Envelope "Malformed image lists present"
// @Failure 500 {object} response.Envelope
// @Router /api/integrity/orphans/purge [post]
func (h *Handler) HandlePurgeOrphans(c *fiber.Ctx) error {
	report, err := h.service.PurgeOrphans(c.UserContext())
	if errors.Is(err, ErrUnsafePurge) {
		return response.Error(c, fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return h.fail(c, "Orphan purge failed", err)
	}
	return response.OK(c, "Orphans purged", report)
}

// HandleSchemaCheck reports missing tables and columns.
// @Summary Check Database Schema
// @Tags integrity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=checks.SchemaReport}
// @Failure 500 {object} response.Envelope
// @Router /api/integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckSchema(c.UserContext())
	if err != nil {
		return h.fail(c, "Schema check failed", err)
	}
	return response.OK(c, "", report)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return response.Error(c, fiber.StatusInternalServerError, msg)
}
