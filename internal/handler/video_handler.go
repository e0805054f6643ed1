package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"quantumvision/internal/model"
	"quantumvision/internal/service"
)

// VideoHandler handles the festival catalogue endpoints.
type VideoHandler struct {
	videoService service.VideoService
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(videoService service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// VideoResponse wraps a single video.
type VideoResponse struct {
	Message string       `json:"message,omitempty"`
	Video   *model.Video `json:"video"`
}

// VideoListResponse wraps a list of videos.
type VideoListResponse struct {
	Videos []model.Video `json:"videos"`
}

type openedFiles []multipart.File

func (o openedFiles) Close() {
	for _, f := range o {
		_ = f.Close()
	}
}

// formFile opens the first file under name. A missing file yields nil.
func formFile(form *multipart.Form, name string, opened *openedFiles) (*service.FileUpload, error) {
	headers := form.File[name]
	if len(headers) == 0 {
		return nil, nil
	}
	fh := headers[0]
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	*opened = append(*opened, f)
	return &service.FileUpload{Filename: fh.Filename, Size: fh.Size, Reader: f}, nil
}

func formValue(form *multipart.Form, name string) *string {
	values, ok := form.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type submissionFiles struct {
	video, script, thumbnail *service.FileUpload
}

func readSubmissionFiles(form *multipart.Form, opened *openedFiles) (submissionFiles, error) {
	var files submissionFiles
	var err error
	if files.video, err = formFile(form, "video", opened); err != nil {
		return files, err
	}
	if files.script, err = formFile(form, "script", opened); err != nil {
		return files, err
	}
	files.thumbnail, err = formFile(form, "thumbnail", opened)
	return files, err
}

// Upload godoc
// @Summary Upload a film submission
// @Description Agents only. The submission starts in pending status.
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param category formData string true "Category"
// @Param duration formData string true "Duration (HH:MM:SS or MM:SS)"
// @Param video formData file true "Video (.mp4)"
// @Param script formData file true "Script (.pdf)"
// @Param thumbnail formData file false "Thumbnail (.jpg, .jpeg, .png)"
// @Success 201 {object} VideoResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /videos/upload [post]
func (h *VideoHandler) Upload(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest("expected multipart form data", "INVALID_REQUEST")
	}

	var opened openedFiles
	defer opened.Close()
	files, err := readSubmissionFiles(form, &opened)
	if err != nil {
		return badRequest("unreadable file upload", "INVALID_REQUEST")
	}

	video, err := h.videoService.Upload(c.Request().Context(), session, service.UploadInput{
		Title:       deref(formValue(form, "title")),
		Description: deref(formValue(form, "description")),
		Category:    deref(formValue(form, "category")),
		Duration:    deref(formValue(form, "duration")),
		Video:       files.video,
		Script:      files.script,
		Thumbnail:   files.thumbnail,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, VideoResponse{
		Message: "Video uploaded successfully and pending approval",
		Video:   video,
	})
}

// Update godoc
// @Summary Update a submission
// @Description Owner only. Omitted fields and files are left unchanged.
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param category formData string false "Category"
// @Param duration formData string false "Duration"
// @Param video formData file false "Video (.mp4)"
// @Param script formData file false "Script (.pdf)"
// @Param thumbnail formData file false "Thumbnail"
// @Success 200 {object} VideoResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /videos/{id} [put]
func (h *VideoHandler) Update(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest("expected multipart form data", "INVALID_REQUEST")
	}

	var opened openedFiles
	defer opened.Close()
	files, err := readSubmissionFiles(form, &opened)
	if err != nil {
		return badRequest("unreadable file upload", "INVALID_REQUEST")
	}

	video, err := h.videoService.Update(c.Request().Context(), session, id, service.UpdateInput{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		Category:    formValue(form, "category"),
		Duration:    formValue(form, "duration"),
		Video:       files.video,
		Script:      files.script,
		Thumbnail:   files.thumbnail,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, VideoResponse{Message: "Video updated successfully", Video: video})
}

// List godoc
// @Summary List approved videos
// @Tags videos
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} service.VideoPage
// @Failure 400 {object} errors.ErrorResponse
// @Router /videos [get]
func (h *VideoHandler) List(c echo.Context) error {
	page, limit, err := pagination(c)
	if err != nil {
		return err
	}

	result, err := h.videoService.List(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListByCategory godoc
// @Summary List approved videos of one category
// @Tags videos
// @Produce json
// @Param category path string true "Category"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} service.VideoPage
// @Failure 400 {object} errors.ErrorResponse
// @Router /videos/category/{category} [get]
func (h *VideoHandler) ListByCategory(c echo.Context) error {
	page, limit, err := pagination(c)
	if err != nil {
		return err
	}

	result, err := h.videoService.ListByCategory(c.Request().Context(), c.Param("category"), page, limit)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func pagination(c echo.Context) (page, limit int, err error) {
	if bindErr := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		BindError(); bindErr != nil {
		return 0, 0, badRequest("page and limit must be integers", "INVALID_PAGINATION")
	}
	return page, limit, nil
}

// Featured godoc
// @Summary Featured videos, one per category
// @Tags videos
// @Produce json
// @Success 200 {object} VideoListResponse
// @Router /videos/featured [get]
func (h *VideoHandler) Featured(c echo.Context) error {
	videos, err := h.videoService.Featured(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, VideoListResponse{Videos: videos})
}

// Get godoc
// @Summary Get a video
// @Tags videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} VideoResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /videos/{id} [get]
func (h *VideoHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	video, err := h.videoService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, VideoResponse{Video: video})
}

// Mine godoc
// @Summary The caller's own submissions in every status
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} VideoListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /videos/my-videos [get]
func (h *VideoHandler) Mine(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}

	videos, err := h.videoService.Mine(c.Request().Context(), session.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, VideoListResponse{Videos: videos})
}

// Delete godoc
// @Summary Delete a submission
// @Description Owner only. Removes the stored files and the votes cast on it.
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /videos/{id} [delete]
func (h *VideoHandler) Delete(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.videoService.Delete(c.Request().Context(), session, id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Video deleted successfully"})
}
