package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"quantumvision/internal/service"
)

// UserHandler serves the caller's profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Profile godoc
// @Summary Current user profile with voting eligibility
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}

	profile, err := h.svc.GetProfile(c.Request().Context(), session.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, profile)
}
