package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quantumvision/internal/auth"
	"quantumvision/internal/errors"
	"quantumvision/internal/model"
	"quantumvision/internal/service"
)

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, name := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = io.WriteString(part, "content of "+name)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func videoEcho(h *VideoHandler, session *auth.Session) *echo.Echo {
	e := newEcho()
	secured := withSession(session)
	e.GET("/api/videos", h.List)
	e.GET("/api/videos/featured", h.Featured)
	e.GET("/api/videos/category/:category", h.ListByCategory)
	e.GET("/api/videos/my-videos", h.Mine, secured)
	e.GET("/api/videos/:id", h.Get)
	e.POST("/api/videos/upload", h.Upload, secured)
	e.PUT("/api/videos/:id", h.Update, secured)
	e.DELETE("/api/videos/:id", h.Delete, secured)
	return e
}

func TestVideoHandler_Upload(t *testing.T) {
	session := &auth.Session{UserID: uuid.New(), Role: string(model.RoleAgent)}
	videos := new(MockVideoService)
	videos.On("Upload", mock.Anything, session, mock.MatchedBy(func(in service.UploadInput) bool {
		if in.Title != "Signal Lost" || in.Category != "dystopian" || in.Duration != "12:30" {
			return false
		}
		return in.Video != nil && in.Video.Filename == "film.mp4" &&
			in.Video.Size == int64(len("content of film.mp4")) &&
			in.Script != nil && in.Thumbnail == nil
	})).Return(&model.Video{ID: uuid.New(), Title: "Signal Lost", Status: model.VideoStatusPending}, nil)

	body, contentType := multipartBody(t,
		map[string]string{"title": "Signal Lost", "category": "dystopian", "duration": "12:30"},
		map[string]string{"video": "film.mp4", "script": "script.pdf"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/videos/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	videoEcho(NewVideoHandler(videos), session).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
	videos.AssertExpectations(t)
}

func TestVideoHandler_UploadErrors(t *testing.T) {
	session := &auth.Session{UserID: uuid.New(), Role: string(model.RoleUser)}
	videos := new(MockVideoService)
	videos.On("Upload", mock.Anything, session, mock.Anything).Return(nil, errors.ErrForbidden)
	e := videoEcho(NewVideoHandler(videos), session)

	req := httptest.NewRequest(http.MethodPost, "/api/videos/upload", strings.NewReader(`{"title":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType := multipartBody(t, map[string]string{"title": "Signal"}, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/videos/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
}

func TestVideoHandler_UpdateOnlySendsPresentFields(t *testing.T) {
	session := &auth.Session{UserID: uuid.New(), Role: string(model.RoleAgent)}
	id := uuid.New()
	videos := new(MockVideoService)
	videos.On("Update", mock.Anything, session, id, mock.MatchedBy(func(in service.UpdateInput) bool {
		return in.Title != nil && *in.Title == "New title" &&
			in.Description == nil && in.Category == nil &&
			in.Thumbnail != nil && in.Thumbnail.Filename == "poster.png" && in.Video == nil
	})).Return(&model.Video{ID: id, Title: "New title"}, nil)

	body, contentType := multipartBody(t,
		map[string]string{"title": "New title"},
		map[string]string{"thumbnail": "poster.png"},
	)
	req := httptest.NewRequest(http.MethodPut, "/api/videos/"+id.String(), body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	videoEcho(NewVideoHandler(videos), session).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	videos.AssertExpectations(t)
}

func TestVideoHandler_ListPagination(t *testing.T) {
	videos := new(MockVideoService)
	videos.On("List", mock.Anything, 2, 5).Return(&service.VideoPage{CurrentPage: 2, TotalPages: 3, TotalVideos: 12}, nil)
	videos.On("List", mock.Anything, 0, 0).Return(&service.VideoPage{CurrentPage: 1}, nil)
	videos.On("ListByCategory", mock.Anything, "horror", 0, 0).Return(nil, errors.ErrInvalidCategory)
	e := videoEcho(NewVideoHandler(videos), nil)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/api/videos?page=2&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_videos":12`)

	assert.Equal(t, http.StatusOK, get("/api/videos").Code)

	rec = get("/api/videos?page=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PAGINATION", decodeError(t, rec).Code)

	rec = get("/api/videos/category/horror")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_CATEGORY", decodeError(t, rec).Code)
}

func TestVideoHandler_GetMineDelete(t *testing.T) {
	session := &auth.Session{UserID: uuid.New(), Role: string(model.RoleAgent)}
	id := uuid.New()
	missing := uuid.New()
	videos := new(MockVideoService)
	videos.On("Get", mock.Anything, id).Return(&model.Video{ID: id, Title: "Found"}, nil)
	videos.On("Get", mock.Anything, missing).Return(nil, errors.ErrVideoNotFound)
	videos.On("Mine", mock.Anything, session.UserID).Return([]model.Video{{ID: id}}, nil)
	videos.On("Delete", mock.Anything, session, id).Return(nil)
	videos.On("Delete", mock.Anything, session, missing).Return(errors.ErrForbidden)
	videos.On("Featured", mock.Anything).Return([]model.Video{{ID: id}}, nil)
	e := videoEcho(NewVideoHandler(videos), session)

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/videos/"+id.String()).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/videos/"+missing.String()).Code)

	rec := do(http.MethodGet, "/api/videos/my-videos")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id.String())

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/videos/featured").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodDelete, "/api/videos/"+id.String()).Code)
	assert.Equal(t, http.StatusForbidden, do(http.MethodDelete, "/api/videos/"+missing.String()).Code)
	videos.AssertExpectations(t)
}
