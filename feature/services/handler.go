package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"portfolio-api/core/gallery"
	"portfolio-api/core/logger"
	"portfolio-api/core/response"
	"portfolio-api/core/utils"
	"portfolio-api/core/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for services.
type Handler struct {
	manager *Manager
}

// NewHandler creates a new HTTP handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes registers the service routes. Writes go through admin.
func (h *Handler) RegisterRoutes(app fiber.Router, admin fiber.Handler) {
	group := app.Group("/services")
	group.Get("/", h.HandleList)
	group.Get("/category/:category", h.HandleByCategory)
	group.Get("/:id", h.HandleGet)
	group.Post("/", admin, h.HandleCreate)
	group.Put("/:id", admin, h.HandleUpdate)
	group.Delete("/:id", admin, h.HandleDelete)
}

// HandleList lists services.
// @Summary List Services
// @Tags services
// @Produce json
// @Param active query boolean false "Filter by active flag"
// @Success 200 {object} response.Envelope{data=[]Service}
// @Router /api/services [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.manager.List(c.UserContext(), utils.ToOptionalBool(c.Query("active")))
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", list)
}

// HandleByCategory lists the services of a category.
// @Summary List Services By Category
// @Tags services
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} response.Envelope{data=[]Service}
// @Router /api/services/category/{category} [get]
func (h *Handler) HandleByCategory(c *fiber.Ctx) error {
	list, err := h.manager.ByCategory(c.UserContext(), c.Params("category"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", list)
}

// HandleGet returns one service.
// @Summary Get Service
// @Tags services
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} response.Envelope{data=Service}
// @Failure 404 {object} response.Envelope
// @Router /api/services/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	svc, err := h.manager.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", svc)
}

// HandleCreate creates a service.
// @Summary Create Service
// @Tags services
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=Service}
// @Failure 400 {object} response.Envelope
// @Router /api/services [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	svc, err := h.manager.Create(c.UserContext(), req.Input, req.Uploads)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, "Service created", svc)
}

// HandleUpdate updates a service and reconciles its images.
// @Summary Update Service
// @Description "remove_images" lists refs to drop, "images" adds files, "principal_index" picks the cover in the resulting list.
// @Tags services
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service ID"
// @Success 200 {object} response.Envelope{data=Service}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/services/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	req, err := parseRequest(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}

	svc, res, err := h.manager.Update(c.UserContext(), id, req)
	if err != nil {
		return h.fail(c, err)
	}

	message := "Service updated"
	if n := len(res.FailedDeletes); n > 0 {
		message = fmt.Sprintf("Service updated; %d image(s) could not be deleted from storage", n)
	}
	return response.OK(c, message, svc)
}

// HandleDelete deletes a service and its images.
// @Summary Delete Service
// @Tags services
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/services/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.manager.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "Service deleted", nil)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return response.ErrorWithData(c, fiber.StatusBadRequest, "Validation failed", verrs)
	}
	status := gallery.Status(err)
	if status >= fiber.StatusInternalServerError {
		logger.WithRayID(h.manager.logger, c).Error("Service request failed", zap.Error(err))
	}
	return response.Error(c, status, gallery.Message(err))
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", c.Params("id"))
	}
	return uint(id), nil
}

func parseRequest(c *fiber.Ctx) (UpdateRequest, error) {
	var req UpdateRequest
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if len(c.Body()) == 0 {
			return req, nil
		}
		if err := c.BodyParser(&req); err != nil {
			return req, fmt.Errorf("invalid request body: %w", err)
		}
		return req, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, fmt.Errorf("invalid multipart form: %w", err)
	}

	req.Name = first(form, "name")
	req.Description = first(form, "description")
	req.Category = first(form, "category")
	req.Icon = first(form, "icon")
	req.Duration = first(form, "duration")
	if v := first(form, "active"); v != nil {
		req.Active = utils.ToOptionalBool(*v)
	}
	if v := first(form, "price"); v != nil && *v != "" {
		if p, err := strconv.ParseFloat(*v, 64); err == nil {
			req.Price = &p
		}
	}
	if vals, ok := form.Value["features"]; ok {
		req.Features = utils.ToStringSlice(vals)
	}
	if vals, ok := form.Value["remove_images"]; ok {
		req.RemoveImages = utils.ToStringSlice(vals)
	}
	if v := first(form, "principal_index"); v != nil {
		req.PrincipalIndex = utils.ToOptionalInt(*v)
	}

	req.Uploads, err = gallery.ReadUploads(form, "images")
	return req, err
}

func first(form *multipart.Form, key string) *string {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}
