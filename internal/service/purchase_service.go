package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quantumvision/internal/cache"
	apperrors "quantumvision/internal/errors"
	"quantumvision/internal/logger"
	"quantumvision/internal/metrics"
	"quantumvision/internal/model"
	"quantumvision/internal/repository"
)

// VotePack is a purchasable bundle of votes.
type VotePack struct {
	Name     string          `json:"name"`
	Votes    int             `json:"votes"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// VotePacks is the purchasable catalogue.
var VotePacks = []VotePack{
	{Name: "starter", Votes: 5, Price: decimal.RequireFromString("4.99"), Currency: "USD"},
	{Name: "fan", Votes: 15, Price: decimal.RequireFromString("9.99"), Currency: "USD"},
	{Name: "jury", Votes: 50, Price: decimal.RequireFromString("24.99"), Currency: "USD"},
}

// PurchaseResult is a completed purchase with the voter's new balance.
type PurchaseResult struct {
	Purchase *model.VotePurchase `json:"purchase"`
	Votes    int                 `json:"votes"`
}

// PurchaseService sells vote packs.
type PurchaseService interface {
	Packs() []VotePack
	Purchase(ctx context.Context, userID uuid.UUID, pack string) (*PurchaseResult, error)
	History(ctx context.Context, userID uuid.UUID) ([]model.VotePurchase, error)
}

type purchaseService struct {
	store repository.Store
	cache *cache.Client
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(store repository.Store, cache *cache.Client) PurchaseService {
	return &purchaseService{store: store, cache: cache}
}

func (s *purchaseService) Packs() []VotePack {
	return VotePacks
}

func findPack(name string) (VotePack, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range VotePacks {
		if p.Name == name {
			return p, true
		}
	}
	return VotePack{}, false
}

// Purchase records a completed purchase and credits the votes atomically.
func (s *purchaseService) Purchase(ctx context.Context, userID uuid.UUID, packName string) (*PurchaseResult, error) {
	pack, ok := findPack(packName)
	if !ok {
		return nil, apperrors.ErrUnknownPack
	}

	purchase := &model.VotePurchase{
		UserID:   userID,
		Pack:     pack.Name,
		Votes:    pack.Votes,
		Amount:   pack.Price,
		Currency: pack.Currency,
		Status:   model.PurchaseStatusCompleted,
	}

	var balance int
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Users().CreditVotes(ctx, userID, pack.Votes); err != nil {
			return err
		}
		if err := tx.Purchases().Create(ctx, purchase); err != nil {
			return err
		}
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		balance = user.Votes
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("purchase votes: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(userID))
	metrics.VotePurchasesTotal.WithLabelValues(pack.Name).Inc()
	logger.Log.Info().
		Str("user_id", userID.String()).
		Str("pack", pack.Name).
		Str("amount", pack.Price.StringFixed(2)).
		Msg("vote pack purchased")

	return &PurchaseResult{Purchase: purchase, Votes: balance}, nil
}

func (s *purchaseService) History(ctx context.Context, userID uuid.UUID) ([]model.VotePurchase, error) {
	return s.store.Purchases().ListByUser(ctx, userID)
}
