package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quantumvision/internal/model"
)

// VoteRepository defines vote ledger persistence operations.
type VoteRepository interface {
	Create(ctx context.Context, vote *model.Vote) error
	Exists(ctx context.Context, userID, videoID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Vote, error)
	DeleteByVideo(ctx context.Context, videoID uuid.UUID) error
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository builds a GORM-backed repository.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Create(ctx context.Context, vote *model.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *voteRepository) Exists(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Vote{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns the user's ledger newest first with the voted video attached.
func (r *voteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Vote, error) {
	var votes []model.Vote
	if err := r.db.WithContext(ctx).Preload("Video").
		Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *voteRepository) DeleteByVideo(ctx context.Context, videoID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("video_id = ?", videoID).Delete(&model.Vote{}).Error
}
