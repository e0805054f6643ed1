package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quantumvision/internal/auth"
	"quantumvision/internal/cache"
	apperrors "quantumvision/internal/errors"
	"quantumvision/internal/logger"
	"quantumvision/internal/model"
	"quantumvision/internal/repository"
	"quantumvision/internal/storage"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
	featuredSize = 6
)

// FileUpload is an uploaded file handed over by the transport layer.
type FileUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// UploadInput carries a new submission.
type UploadInput struct {
	Title       string
	Description string
	Category    string
	Duration    string
	Video       *FileUpload
	Script      *FileUpload
	Thumbnail   *FileUpload
}

// UpdateInput carries optional changes to a submission. Nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Duration    *string
	Video       *FileUpload
	Script      *FileUpload
	Thumbnail   *FileUpload
}

// VideoPage is one page of approved videos.
type VideoPage struct {
	Videos      []model.Video `json:"videos"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
	TotalVideos int64         `json:"total_videos"`
}

// VideoService handles the festival catalogue.
type VideoService interface {
	Upload(ctx context.Context, session *auth.Session, in UploadInput) (*model.Video, error)
	List(ctx context.Context, page, limit int) (*VideoPage, error)
	ListByCategory(ctx context.Context, category string, page, limit int) (*VideoPage, error)
	Featured(ctx context.Context) ([]model.Video, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Video, error)
	Mine(ctx context.Context, uploaderID uuid.UUID) ([]model.Video, error)
	Update(ctx context.Context, session *auth.Session, id uuid.UUID, in UpdateInput) (*model.Video, error)
	Delete(ctx context.Context, session *auth.Session, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.VideoStatus) (*model.Video, error)
}

type videoService struct {
	store     repository.Store
	storage   storage.Storage
	cache     *cache.Client
	validator *SubmissionValidator
}

// NewVideoService creates a new video service.
func NewVideoService(store repository.Store, files storage.Storage, cache *cache.Client, validator *SubmissionValidator) VideoService {
	return &videoService{
		store:     store,
		storage:   files,
		cache:     cache,
		validator: validator,
	}
}

// Upload validates and stores a submission. Files are written first and removed
// again if the database insert fails.
func (s *videoService) Upload(ctx context.Context, session *auth.Session, in UploadInput) (*model.Video, error) {
	if session == nil || model.Role(session.Role) != model.RoleAgent {
		return nil, apperrors.ErrForbidden
	}

	category, err := s.validateMetadata(in.Title, in.Description, in.Category, in.Duration)
	if err != nil {
		return nil, err
	}
	if in.Video == nil || in.Script == nil {
		return nil, fmt.Errorf("%w: video and script files are required", apperrors.ErrInvalidSubmission)
	}

	var saved []string
	rollback := func() {
		for _, p := range saved {
			_ = s.storage.Remove(p)
		}
	}

	video := &model.Video{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Duration:    strings.TrimSpace(in.Duration),
		UploaderID:  session.UserID,
		Status:      model.VideoStatusPending,
	}

	for _, f := range []struct {
		kind FileKind
		file *FileUpload
		dst  *string
	}{
		{FileKindVideo, in.Video, &video.VideoPath},
		{FileKindScript, in.Script, &video.ScriptPath},
		{FileKindThumbnail, in.Thumbnail, &video.ThumbnailPath},
	} {
		if f.file == nil {
			continue
		}
		path, err := s.saveFile(f.kind, f.file)
		if err != nil {
			rollback()
			return nil, err
		}
		saved = append(saved, path)
		*f.dst = path
	}

	if err := s.store.Videos().Create(ctx, video); err != nil {
		rollback()
		return nil, fmt.Errorf("create video: %w", err)
	}

	logger.Log.Info().
		Str("video_id", video.ID.String()).
		Str("uploader_id", session.UserID.String()).
		Str("category", string(category)).
		Msg("video uploaded")

	return s.decorate(video), nil
}

func (s *videoService) validateMetadata(title, description, category, duration string) (model.Category, error) {
	if err := s.validator.ValidateTitle(title); err != nil {
		return "", err
	}
	if err := s.validator.ValidateDescription(description); err != nil {
		return "", err
	}
	if err := s.validator.ValidateDuration(duration); err != nil {
		return "", err
	}
	return s.validator.ValidateCategory(category)
}

func (s *videoService) saveFile(kind FileKind, f *FileUpload) (string, error) {
	ext, err := s.validator.ValidateFile(kind, f.Filename, f.Size)
	if err != nil {
		return "", err
	}
	path, err := s.storage.Save(string(kind)+"s", ext, f.Reader)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", kind, err)
	}
	return path, nil
}

// List pages approved videos newest first.
func (s *videoService) List(ctx context.Context, page, limit int) (*VideoPage, error) {
	return s.page(ctx, "", page, limit)
}

// ListByCategory pages approved videos of one category newest first.
func (s *videoService) ListByCategory(ctx context.Context, category string, page, limit int) (*VideoPage, error) {
	c, err := s.validator.ValidateCategory(category)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, c, page, limit)
}

func (s *videoService) page(ctx context.Context, category model.Category, page, limit int) (*VideoPage, error) {
	page, limit = normalizePage(page, limit)

	videos, total, err := s.store.Videos().ListApproved(ctx, category, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	return &VideoPage{
		Videos:      s.decorateAll(videos),
		CurrentPage: page,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		TotalVideos: total,
	}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// Featured returns the top approved video of every category in category order,
// backfilled with the next most voted approved videos up to six entries.
func (s *videoService) Featured(ctx context.Context) ([]model.Video, error) {
	var cached []model.Video
	if s.cache.GetJSON(ctx, featuredCacheKey, &cached) {
		return cached, nil
	}

	featured := make([]model.Video, 0, featuredSize)
	selected := make([]uuid.UUID, 0, featuredSize)
	for _, category := range model.Categories {
		top, err := s.store.Videos().TopApproved(ctx, category)
		if err != nil {
			return nil, err
		}
		if top == nil {
			continue
		}
		featured = append(featured, *top)
		selected = append(selected, top.ID)
	}

	if len(featured) < featuredSize {
		rest, err := s.store.Videos().TopApprovedExcluding(ctx, selected, featuredSize-len(featured))
		if err != nil {
			return nil, err
		}
		featured = append(featured, rest...)
	}

	featured = s.decorateAll(featured)
	s.cache.SetJSON(ctx, featuredCacheKey, featured, featuredCacheTTL)
	return featured, nil
}

// Get returns a video by id.
func (s *videoService) Get(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	var cached model.Video
	if s.cache.GetJSON(ctx, videoCacheKey(id), &cached) {
		return &cached, nil
	}

	video, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	video = s.decorate(video)
	s.cache.SetJSON(ctx, videoCacheKey(id), video, videoCacheTTL)
	return video, nil
}

// Mine lists every video of an uploader regardless of status.
func (s *videoService) Mine(ctx context.Context, uploaderID uuid.UUID) ([]model.Video, error) {
	videos, err := s.store.Videos().ListByUploader(ctx, uploaderID)
	if err != nil {
		return nil, err
	}
	return s.decorateAll(videos), nil
}

// Update applies owner edits to the editable columns. Replaced files are removed
// only after the row is written.
func (s *videoService) Update(ctx context.Context, session *auth.Session, id uuid.UUID, in UpdateInput) (*model.Video, error) {
	video, err := s.owned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := s.validator.ValidateTitle(*in.Title); err != nil {
			return nil, err
		}
		video.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		if err := s.validator.ValidateDescription(*in.Description); err != nil {
			return nil, err
		}
		video.Description = strings.TrimSpace(*in.Description)
	}
	if in.Duration != nil {
		if err := s.validator.ValidateDuration(*in.Duration); err != nil {
			return nil, err
		}
		video.Duration = strings.TrimSpace(*in.Duration)
	}
	if in.Category != nil {
		c, err := s.validator.ValidateCategory(*in.Category)
		if err != nil {
			return nil, err
		}
		video.Category = c
	}

	var saved, replaced []string
	for _, f := range []struct {
		kind FileKind
		file *FileUpload
		dst  *string
	}{
		{FileKindVideo, in.Video, &video.VideoPath},
		{FileKindScript, in.Script, &video.ScriptPath},
		{FileKindThumbnail, in.Thumbnail, &video.ThumbnailPath},
	} {
		if f.file == nil {
			continue
		}
		path, err := s.saveFile(f.kind, f.file)
		if err != nil {
			for _, p := range saved {
				_ = s.storage.Remove(p)
			}
			return nil, err
		}
		saved = append(saved, path)
		replaced = append(replaced, *f.dst)
		*f.dst = path
	}

	if err := s.store.Videos().UpdateDetails(ctx, video); err != nil {
		for _, p := range saved {
			_ = s.storage.Remove(p)
		}
		if errors.Is(err, apperrors.ErrVideoNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update video: %w", err)
	}
	for _, p := range replaced {
		if err := s.storage.Remove(p); err != nil {
			logger.Log.Warn().Err(err).Str("path", p).Msg("remove replaced file")
		}
	}

	s.invalidate(ctx, id)

	// Votes and status may have moved since the read above.
	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(updated), nil
}

// Delete removes the video, its ledger rows and its files.
func (s *videoService) Delete(ctx context.Context, session *auth.Session, id uuid.UUID) error {
	video, err := s.owned(ctx, session, id)
	if err != nil {
		return err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Votes().DeleteByVideo(ctx, id); err != nil {
			return err
		}
		return tx.Videos().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	for _, p := range []string{video.VideoPath, video.ScriptPath, video.ThumbnailPath} {
		if err := s.storage.Remove(p); err != nil {
			logger.Log.Warn().Err(err).Str("path", p).Msg("remove deleted video file")
		}
	}

	s.invalidate(ctx, id)
	logger.Log.Info().Str("video_id", id.String()).Msg("video deleted")
	return nil
}

// SetStatus moves a video through moderation.
func (s *videoService) SetStatus(ctx context.Context, id uuid.UUID, status model.VideoStatus) (*model.Video, error) {
	switch status {
	case model.VideoStatusApproved, model.VideoStatusRejected, model.VideoStatusPending:
	default:
		return nil, apperrors.ErrInvalidStatus
	}

	if err := s.store.Videos().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	video, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.Log.Info().Str("video_id", id.String()).Str("status", string(status)).Msg("video moderated")
	return s.decorate(video), nil
}

func (s *videoService) owned(ctx context.Context, session *auth.Session, id uuid.UUID) (*model.Video, error) {
	if session == nil {
		return nil, apperrors.ErrForbidden
	}
	video, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.UploaderID != session.UserID {
		return nil, apperrors.ErrForbidden
	}
	return video, nil
}

func (s *videoService) find(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	video, err := s.store.Videos().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVideoNotFound
		}
		return nil, err
	}
	return video, nil
}

func (s *videoService) invalidate(ctx context.Context, id uuid.UUID) {
	_ = s.cache.Delete(ctx, videoCacheKey(id), featuredCacheKey)
}

func (s *videoService) decorate(v *model.Video) *model.Video {
	v.VideoURL = s.storage.URL(v.VideoPath)
	v.ScriptURL = s.storage.URL(v.ScriptPath)
	v.ThumbnailURL = s.storage.URL(v.ThumbnailPath)
	return v
}

func (s *videoService) decorateAll(videos []model.Video) []model.Video {
	for i := range videos {
		s.decorate(&videos[i])
	}
	return videos
}
