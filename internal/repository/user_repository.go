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

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	// DebitVote spends one vote and awards points in a single guarded UPDATE.
	// It returns errors.ErrNoVotesAvailable when the balance is already zero.
	DebitVote(ctx context.Context, id uuid.UUID, points int, at time.Time) error
	CreditVotes(ctx context.Context, id uuid.UUID, votes int) error
	UpdateProgress(ctx context.Context, id uuid.UUID, level int, badges []model.Badge) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate finds a user by ID with a row-level lock.
func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) DebitVote(ctx context.Context, id uuid.UUID, points int, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND votes > 0", id).
		Updates(map[string]interface{}{
			"votes":         gorm.Expr("votes - ?", 1),
			"votes_used":    gorm.Expr("votes_used + ?", 1),
			"points":        gorm.Expr("points + ?", points),
			"last_voted_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrNoVotesAvailable
	}
	return nil
}

func (r *userRepository) CreditVotes(ctx context.Context, id uuid.UUID, votes int) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("votes", gorm.Expr("votes + ?", votes))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateProgress(ctx context.Context, id uuid.UUID, level int, badges []model.Badge) error {
	return r.db.WithContext(ctx).Model(&model.User{ID: id}).
		Select("level", "badges").
		Updates(&model.User{Level: level, Badges: badges}).Error
}
