package contact

import (
	"errors"

	"portfolio-api/core/logger"
	"portfolio-api/core/response"
	"portfolio-api/core/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the contact form.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the contact routes.
func (h *Handler) RegisterRoutes(app fiber.Router, admin fiber.Handler) {
	group := app.Group("/contact")
	group.Post("/", h.HandleSubmit)
	group.Get("/", admin, h.HandleList)
}

// HandleSubmit stores a contact form submission.
// @Summary Submit Contact Form
// @Tags contact
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body Request true "Contact message"
// @Success 201 {object} response.Envelope{data=Message}
// @Failure 400 {object} response.Envelope
// @Router /api/contact [post]
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	msg, err := h.service.Submit(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, "Message received", msg)
}

// HandleList lists contact submissions.
// @Summary List Contact Messages
// @Tags contact
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of messages" default(100)
// @Success 200 {object} response.Envelope{data=[]Message}
// @Router /api/contact [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", list)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return response.ErrorWithData(c, fiber.StatusBadRequest, "Validation failed", verrs)
	}
	logger.WithRayID(h.service.logger, c).Error("Contact request failed", zap.Error(err))
	return response.Error(c, fiber.StatusInternalServerError, "Internal server error")
}
