package flipbooks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"portfolio-api/core/gallery"
	"portfolio-api/core/logger"
	"portfolio-api/core/reconcile"
	"portfolio-api/core/response"
	"portfolio-api/core/utils"
	"portfolio-api/core/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for flipbooks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the flipbook routes. Writes go through admin.
func (h *Handler) RegisterRoutes(app fiber.Router, admin fiber.Handler) {
	group := app.Group("/flipbooks")
	group.Get("/", h.HandleList)
	group.Get("/category/:category", h.HandleByCategory)
	group.Get("/:id", h.HandleGet)
	group.Post("/", admin, h.HandleCreate)
	group.Put("/:id", admin, h.HandleUpdate)
	group.Delete("/:id", admin, h.HandleDelete)
	group.Post("/:id/pages", admin, h.HandleAddPage)
	group.Delete("/:id/pages/:number", admin, h.HandleRemovePage)
}

// HandleList lists flipbooks.
// @Summary List Flipbooks
// @Tags flipbooks
// @Produce json
// @Param active query boolean false "Filter by active flag"
// @Success 200 {object} response.Envelope{data=[]Flipbook}
// @Router /api/flipbooks [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), utils.ToOptionalBool(c.Query("active")))
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", list)
}

// HandleByCategory lists the flipbooks of a category.
// @Summary List Flipbooks By Category
// @Tags flipbooks
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} response.Envelope{data=[]Flipbook}
// @Router /api/flipbooks/category/{category} [get]
func (h *Handler) HandleByCategory(c *fiber.Ctx) error {
	list, err := h.service.ByCategory(c.UserContext(), c.Params("category"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", list)
}

// HandleGet returns one flipbook.
// @Summary Get Flipbook
// @Tags flipbooks
// @Produce json
// @Param id path int true "Flipbook ID"
// @Success 200 {object} response.Envelope{data=Flipbook}
// @Failure 404 {object} response.Envelope
// @Router /api/flipbooks/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := parseUint(c, "id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	fb, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", fb)
}

// HandleCreate creates a flipbook.
// @Summary Create Flipbook
// @Tags flipbooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param flipbook body Input true "Flipbook"
// @Success 201 {object} response.Envelope{data=Flipbook}
// @Failure 400 {object} response.Envelope
// @Router /api/flipbooks [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	fb, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, "Flipbook created", fb)
}

// HandleUpdate updates a flipbook.
// @Summary Update Flipbook
// @Tags flipbooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flipbook ID"
// @Param flipbook body Input true "Fields to change"
// @Success 200 {object} response.Envelope{data=Flipbook}
// @Failure 404 {object} response.Envelope
// @Router /api/flipbooks/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseUint(c, "id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	fb, err := h.service.Update(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "Flipbook updated", fb)
}

// HandleDelete deletes a flipbook.
// @Summary Delete Flipbook
// @Tags flipbooks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flipbook ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/flipbooks/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseUint(c, "id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "Flipbook deleted", nil)
}

// HandleAddPage appends a page.
// @Summary Add Flipbook Page
// @Description JSON page, or multipart with an "image" file plus optional "thumbnail_url" and "description".
// @Tags flipbooks
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flipbook ID"
// @Success 200 {object} response.Envelope{data=Flipbook}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/flipbooks/{id}/pages [post]
func (h *Handler) HandleAddPage(c *fiber.Ctx) error {
	id, err := parseUint(c, "id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var page Page
	var upload *reconcile.Upload
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return response.Error(c, fiber.StatusBadRequest, "Invalid multipart form")
		}
		page.ImageURL = c.FormValue("image_url")
		page.ThumbnailURL = c.FormValue("thumbnail_url")
		page.Description = c.FormValue("description")

		uploads, err := gallery.ReadUploads(form, "image")
		if err != nil {
			return response.Error(c, fiber.StatusBadRequest, err.Error())
		}
		if len(uploads) > 0 {
			upload = &uploads[0]
		}
	} else if err := c.BodyParser(&page); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	fb, err := h.service.AddPage(c.UserContext(), id, page, upload)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "Page added", fb)
}

// HandleRemovePage removes a page and renumbers the rest.
// @Summary Remove Flipbook Page
// @Tags flipbooks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flipbook ID"
// @Param number path int true "Page number"
// @Success 200 {object} response.Envelope{data=Flipbook}
// @Failure 404 {object} response.Envelope
// @Router /api/flipbooks/{id}/pages/{number} [delete]
func (h *Handler) HandleRemovePage(c *fiber.Ctx) error {
	id, err := parseUint(c, "id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	number, err := parseUint(c, "number")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}

	fb, err := h.service.RemovePage(c.UserContext(), id, int(number))
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "Page removed", fb)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var verrs validate.Errors
	switch {
	case errors.As(err, &verrs):
		return response.ErrorWithData(c, fiber.StatusBadRequest, "Validation failed", verrs)
	case errors.Is(err, ErrPageNotFound):
		return response.Error(c, fiber.StatusNotFound, "Page not found")
	}

	status := gallery.Status(err)
	if status >= fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error("Flipbook request failed", zap.Error(err))
	}
	return response.Error(c, status, gallery.Message(err))
}

func parseUint(c *fiber.Ctx, param string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid %s %q", param, c.Params(param))
	}
	return uint(v), nil
}
