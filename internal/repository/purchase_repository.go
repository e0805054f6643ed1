package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quantumvision/internal/model"
)

// PurchaseRepository defines vote pack purchase persistence operations.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.VotePurchase) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.VotePurchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create creates a new purchase record.
func (r *purchaseRepository) Create(ctx context.Context, purchase *model.VotePurchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

// ListByUser lists purchases for a user, newest first.
func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.VotePurchase, error) {
	var purchases []model.VotePurchase
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}
