package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"quantumvision/internal/model"
	"quantumvision/internal/service"
)

// AdminHandler handles moderation endpoints.
type AdminHandler struct {
	videoService service.VideoService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(videoService service.VideoService) *AdminHandler {
	return &AdminHandler{videoService: videoService}
}

// StatusRequest sets the moderation status of a video.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// SetVideoStatus godoc
// @Summary Moderate a submission
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} VideoResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/videos/{id}/status [patch]
func (h *AdminHandler) SetVideoStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req StatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	video, err := h.videoService.SetStatus(c.Request().Context(), id, model.VideoStatus(req.Status))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, VideoResponse{Message: "Video status updated", Video: video})
}
