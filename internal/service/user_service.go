package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quantumvision/internal/cache"
	apperrors "quantumvision/internal/errors"
	"quantumvision/internal/model"
	"quantumvision/internal/repository"
)

// Profile is a user together with their current voting eligibility.
type Profile struct {
	User        *model.User `json:"user"`
	Eligibility Eligibility `json:"eligibility"`
}

// UserService exposes user profile operations.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
}

type userService struct {
	repo           repository.UserRepository
	cache          *cache.Client
	weeklyEnforced bool
	now            func() time.Time
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client, weeklyEnforced bool) UserService {
	return &userService{repo: repo, cache: cache, weeklyEnforced: weeklyEnforced, now: time.Now}
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	s.cache.SetJSON(ctx, userCacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:        user,
		Eligibility: CheckEligibility(user, s.now(), s.weeklyEnforced),
	}, nil
}
