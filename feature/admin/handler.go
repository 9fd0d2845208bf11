package admin

import (
	"errors"

	coreauth "portfolio-api/core/auth"
	"portfolio-api/core/logger"
	authmw "portfolio-api/core/middleware/auth"
	"portfolio-api/core/repository"
	"portfolio-api/core/response"
	"portfolio-api/core/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LoginRequest is the body of POST /admin/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body of POST /admin/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Handler handles HTTP requests for admin authentication.
type Handler struct {
	auth   *coreauth.Service
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(auth *coreauth.Service, logger *zap.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// RegisterRoutes registers the admin routes. Token-bound routes go through admin.
func (h *Handler) RegisterRoutes(app fiber.Router, admin fiber.Handler) {
	group := app.Group("/admin")
	group.Post("/login", h.HandleLogin)
	group.Post("/refresh", h.HandleRefresh)
	group.Post("/logout", admin, h.HandleLogout)
	group.Post("/verify", admin, h.HandleVerify)
	group.Get("/me", admin, h.HandleMe)
}

// HandleLogin exchanges credentials for a token pair.
// @Summary Admin Login
// @Tags admin
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope{data=auth.Session}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/admin/login [post]
func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return h.fail(c, err)
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	logger.WithRayID(h.logger, c).Info("Admin logged in", zap.Uint("user_id", session.User.ID))
	return response.OK(c, "Logged in", session)
}

// HandleRefresh rotates a refresh token into a new token pair.
// @Summary Refresh Admin Session
// @Tags admin
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} response.Envelope{data=auth.Session}
// @Failure 401 {object} response.Envelope
// @Router /api/admin/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return h.fail(c, err)
	}

	session, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "Session refreshed", session)
}

// HandleLogout revokes the bearer token.
// @Summary Admin Logout
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/admin/logout [post]
func (h *Handler) HandleLogout(c *fiber.Ctx) error {
	token, _ := c.Locals(authmw.TokenKey).(string)
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "Logged out", nil)
}

// HandleVerify reports whether the bearer token is valid.
// @Summary Verify Admin Token
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=auth.Claims}
// @Failure 401 {object} response.Envelope
// @Router /api/admin/verify [post]
func (h *Handler) HandleVerify(c *fiber.Ctx) error {
	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}
	return response.OK(c, "Token is valid", claims)
}

// HandleMe returns the authenticated admin.
// @Summary Current Admin
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=auth.AdminUser}
// @Failure 401 {object} response.Envelope
// @Router /api/admin/me [get]
func (h *Handler) HandleMe(c *fiber.Ctx) error {
	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}
	user, err := h.auth.User(c.UserContext(), claims.UserID())
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, "", user)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var verrs validate.Errors
	switch {
	case errors.As(err, &verrs):
		return response.ErrorWithData(c, fiber.StatusBadRequest, "Validation failed", verrs)
	case errors.Is(err, coreauth.ErrUnauthorized), errors.Is(err, repository.ErrNotFound):
		return response.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	logger.WithRayID(h.logger, c).Error("Admin request failed", zap.Error(err))
	return response.Error(c, fiber.StatusInternalServerError, "Internal server error")
}
