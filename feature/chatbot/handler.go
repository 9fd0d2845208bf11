package chatbot

import (
	"errors"
	"fmt"
	"strconv"

	"portfolio-api/core/logger"
	"portfolio-api/core/repository"
	"portfolio-api/core/response"
	"portfolio-api/core/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the chatbot.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the chatbot routes.
func (h *Handler) RegisterRoutes(app fiber.Router, admin fiber.Handler) {
	group := app.Group("/chatbot")
	group.Post("/message", h.HandleMessage)
	group.Get("/history/:session_id", h.HandleHistory)
	group.Get("/config", h.HandleConfig)
	group.Put("/config/:id", admin, h.HandleUpdateConfig)
}

// HandleMessage answers a visitor message.
// @Summary Send Chat Message
// @Description Stores the message and returns the bot reply. A session id is generated when absent.
// @Tags chatbot
// @Accept json
// @Produce json
// @Param request body MessageRequest true "Message"
// @Success 200 {object} response.Envelope{data=Reply}
// @Failure 400 {object} response.Envelope
// @Router /api/chatbot/message [post]
func (h *Handler) HandleMessage(c *fiber.Ctx) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	reply, err := h.service.Process(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", reply)
}

// HandleHistory returns the messages of a session, newest first.
// @Summary Chat History
// @Tags chatbot
// @Produce json
// @Param session_id path string true "Session ID"
// @Param limit query int false "Maximum number of messages" default(50)
// @Success 200 {object} response.Envelope{data=[]Message}
// @Router /api/chatbot/history/{session_id} [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", DefaultHistoryLimit)
	list, err := h.service.History(c.UserContext(), c.Params("session_id"), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", list)
}

// HandleConfig returns the active chatbot config.
// @Summary Get Chatbot Config
// @Tags chatbot
// @Produce json
// @Success 200 {object} response.Envelope{data=BotConfig}
// @Failure 404 {object} response.Envelope
// @Router /api/chatbot/config [get]
func (h *Handler) HandleConfig(c *fiber.Ctx) error {
	cfg, err := h.service.ActiveConfig(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", cfg)
}

// HandleUpdateConfig updates a chatbot config.
// @Summary Update Chatbot Config
// @Tags chatbot
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Config ID"
// @Param request body ConfigInput true "Fields to change"
// @Success 200 {object} response.Envelope{data=BotConfig}
// @Failure 404 {object} response.Envelope
// @Router /api/chatbot/config/{id} [put]
func (h *Handler) HandleUpdateConfig(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return response.Error(c, fiber.StatusBadRequest, fmt.Sprintf("invalid id %q", c.Params("id")))
	}
	var in ConfigInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	cfg, err := h.service.UpdateConfig(c.UserContext(), uint(id), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "Chatbot config updated", cfg)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var verrs validate.Errors
	switch {
	case errors.As(err, &verrs):
		return response.ErrorWithData(c, fiber.StatusBadRequest, "Validation failed", verrs)
	case errors.Is(err, ErrNoConfig):
		return response.Error(c, fiber.StatusNotFound, "Chatbot config not found")
	case errors.Is(err, repository.ErrNotFound):
		return response.Error(c, fiber.StatusNotFound, "Not found")
	}
	logger.WithRayID(h.service.logger, c).Error("Chatbot request failed", zap.Error(err))
	return response.Error(c, fiber.StatusInternalServerError, "Internal server error")
}
