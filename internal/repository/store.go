package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle, so a unit of work
// can run them all inside the same transaction.
type Store interface {
	Users() UserRepository
	Videos() VideoRepository
	Votes() VoteRepository
	Purchases() PurchaseRepository
	VoteAttempts() VoteAttemptRepository
	// WithTransaction executes fn with a Store bound to a single database transaction.
	// Returning an error from fn rolls back every write made through tx.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *store) Videos() VideoRepository {
	return &videoRepository{db: s.db}
}

func (s *store) Votes() VoteRepository {
	return &voteRepository{db: s.db}
}

func (s *store) Purchases() PurchaseRepository {
	return &purchaseRepository{db: s.db}
}

func (s *store) VoteAttempts() VoteAttemptRepository {
	return &voteAttemptRepository{db: s.db}
}

func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &store{db: tx})
	})
}
