package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quantumvision/internal/db"
	"quantumvision/internal/errors"
	"quantumvision/internal/model"
)

// VideoRepository defines video persistence operations. Reads other than
// FindByIDForUpdate attach the public Uploader.
type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	Save(ctx context.Context, video *model.Video) error
	// UpdateDetails writes the owner-editable columns of video. Votes and status
	// only change through IncrementVotes and UpdateStatus.
	UpdateDetails(ctx context.Context, video *model.Video) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Video, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Video, error)
	// ListApproved pages approved videos newest first. An empty category means all.
	ListApproved(ctx context.Context, category model.Category, offset, limit int) ([]model.Video, int64, error)
	ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]model.Video, error)
	// TopApproved returns the most voted approved video of a category, or nil.
	TopApproved(ctx context.Context, category model.Category) (*model.Video, error)
	TopApprovedExcluding(ctx context.Context, exclude []uuid.UUID, limit int) ([]model.Video, error)
	// IncrementVotes adds one vote to an approved video.
	// It returns errors.ErrVideoNotApproved when no approved row matched.
	IncrementVotes(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.VideoStatus) error
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository builds a GORM-backed repository.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

const rankOrder = "votes DESC, created_at DESC"

func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepository) Save(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Save(video).Error
}

func (r *videoRepository) UpdateDetails(ctx context.Context, video *model.Video) error {
	res := r.db.WithContext(ctx).Model(&model.Video{}).
		Where("id = ?", video.ID).
		Updates(map[string]interface{}{
			"title":          video.Title,
			"description":    video.Description,
			"category":       video.Category,
			"duration":       video.Duration,
			"video_path":     video.VideoPath,
			"script_path":    video.ScriptPath,
			"thumbnail_path": video.ThumbnailPath,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrVideoNotFound
	}
	return nil
}

func (r *videoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Video{}).Error
}

func (r *videoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	var video model.Video
	if err := r.db.WithContext(ctx).Preload("Uploader").Where("id = ?", id).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// FindByIDForUpdate finds a video by ID with a row-level lock.
func (r *videoRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	var video model.Video
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) ListApproved(ctx context.Context, category model.Category, offset, limit int) ([]model.Video, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Video{}).Where("status = ?", model.VideoStatusApproved)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []model.Video
	if err := query.Preload("Uploader").Order("created_at DESC").Offset(offset).Limit(limit).Find(&videos).Error; err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (r *videoRepository) ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]model.Video, error) {
	var videos []model.Video
	if err := r.db.WithContext(ctx).Preload("Uploader").Where("uploader_id = ?", uploaderID).
		Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepository) TopApproved(ctx context.Context, category model.Category) (*model.Video, error) {
	var videos []model.Video
	if err := r.db.WithContext(ctx).Preload("Uploader").
		Where("status = ? AND category = ?", model.VideoStatusApproved, category).
		Order(rankOrder).Limit(1).Find(&videos).Error; err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, nil
	}
	return &videos[0], nil
}

func (r *videoRepository) TopApprovedExcluding(ctx context.Context, exclude []uuid.UUID, limit int) ([]model.Video, error) {
	query := r.db.WithContext(ctx).Where("status = ?", model.VideoStatusApproved)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	var videos []model.Video
	if err := query.Preload("Uploader").Order(rankOrder).Limit(limit).Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepository) IncrementVotes(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Video{}).
		Where("id = ? AND status = ?", id, model.VideoStatusApproved).
		Update("votes", gorm.Expr("votes + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrVideoNotApproved
	}
	return nil
}

func (r *videoRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.VideoStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrVideoNotFound
	}
	return nil
}
