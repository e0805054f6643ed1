package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quantumvision/internal/model"
)

// VoteAttemptRepository defines vote attempt audit persistence operations.
type VoteAttemptRepository interface {
	CreateBatch(ctx context.Context, attempts []model.VoteAttempt) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.VoteAttempt, error)
}

type voteAttemptRepository struct {
	db *gorm.DB
}

// NewVoteAttemptRepository creates a new vote attempt repository.
func NewVoteAttemptRepository(db *gorm.DB) VoteAttemptRepository {
	return &voteAttemptRepository{db: db}
}

// CreateBatch creates multiple attempt records in a batch.
func (r *voteAttemptRepository) CreateBatch(ctx context.Context, attempts []model.VoteAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(attempts, 100).Error
}

// ListByUser lists audit entries for a user in insertion order.
func (r *voteAttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.VoteAttempt, error) {
	var attempts []model.VoteAttempt
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at ASC").Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
