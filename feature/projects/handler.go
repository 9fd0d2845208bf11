package projects

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

// Handler handles HTTP requests for projects.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the project routes. Writes go through admin.
func (h *Handler) RegisterRoutes(app fiber.Router, admin fiber.Handler) {
	group := app.Group("/projects")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
	group.Post("/", admin, h.HandleCreate)
	group.Put("/:id", admin, h.HandleUpdate)
	group.Delete("/:id", admin, h.HandleDelete)
}

// HandleList lists projects.
// @Summary List Projects
// @Tags projects
// @Produce json
// @Success 200 {object} response.Envelope{data=[]Project}
// @Router /api/projects [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	projects, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", projects)
}

// HandleGet returns one project.
// @Summary Get Project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} response.Envelope{data=Project}
// @Failure 404 {object} response.Envelope
// @Router /api/projects/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	project, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", project)
}

// HandleCreate creates a project.
// @Summary Create Project
// @Description Accepts JSON or multipart/form-data. Multipart requests may attach files under "images"; the first one becomes the cover.
// @Tags projects
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=Project}
// @Failure 400 {object} response.Envelope
// @Router /api/projects [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}

	project, err := h.service.Create(c.UserContext(), req.Input, req.Uploads)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, "Project created", project)
}

// HandleUpdate updates a project and reconciles its images.
// @Summary Update Project
// @Description Accepts JSON or multipart/form-data. "remove_images" lists refs to drop, "images" adds files, "principal_index" picks the cover in the resulting list.
// @Tags projects
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} response.Envelope{data=Project}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /api/projects/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	req, err := parseRequest(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}

	project, res, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return h.fail(c, err)
	}

	message := "Project updated"
	if n := len(res.FailedDeletes); n > 0 {
		message = fmt.Sprintf("Project updated; %d image(s) could not be deleted from storage", n)
	}
	return response.OK(c, message, project)
}

// HandleDelete deletes a project and its images.
// @Summary Delete Project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/projects/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "Project deleted", nil)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return response.ErrorWithData(c, fiber.StatusBadRequest, "Validation failed", verrs)
	}

	status := gallery.Status(err)
	if status >= fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error("Project request failed", zap.Error(err))
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

// parseRequest reads a JSON or multipart body.
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
	req.Input = inputFromForm(form)
	if vals, ok := form.Value["remove_images"]; ok {
		req.RemoveImages = utils.ToStringSlice(vals)
	}
	req.PrincipalIndex = utils.ToOptionalInt(formValue(form, "principal_index"))

	uploads, err := gallery.ReadUploads(form, "images")
	if err != nil {
		return req, err
	}
	req.Uploads = uploads
	return req, nil
}

func inputFromForm(form *multipart.Form) Input {
	var in Input
	in.Name = formPtr(form, "name")
	in.Description = formPtr(form, "description")
	in.Status = formPtr(form, "status")
	in.StartDate = formPtr(form, "start_date")
	in.EndDate = formPtr(form, "end_date")
	in.Client = formPtr(form, "client")
	if v := formPtr(form, "budget"); v != nil && *v != "" {
		if b, err := strconv.ParseFloat(*v, 64); err == nil {
			in.Budget = &b
		}
	}
	if vals, ok := form.Value["technologies"]; ok {
		in.Technologies = utils.ToStringSlice(vals)
	}
	return in
}

func formPtr(form *multipart.Form, key string) *string {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

func formValue(form *multipart.Form, key string) string {
	if v := formPtr(form, key); v != nil {
		return *v
	}
	return ""
}

