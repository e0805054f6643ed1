package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quantumvision/internal/errors"
	"quantumvision/internal/model"
)

func TestPurchaseService_Purchase(t *testing.T) {
	store, gdb := newTestStore(t)
	svc := NewPurchaseService(store, nil)
	voter := createUser(t, gdb, func(u *model.User) { u.Votes = 1 })

	result, err := svc.Purchase(context.Background(), voter.ID, " Fan ")
	require.NoError(t, err)

	assert.Equal(t, 16, result.Votes)
	assert.Equal(t, "fan", result.Purchase.Pack)
	assert.Equal(t, "9.99", result.Purchase.Amount.StringFixed(2))
	assert.Equal(t, model.PurchaseStatusCompleted, result.Purchase.Status)
	assert.Equal(t, 16, reloadUser(t, gdb, voter.ID).Votes)

	history, err := svc.History(context.Background(), voter.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 15, history[0].Votes)
	assert.Equal(t, "9.99", history[0].Amount.StringFixed(2))
}

func TestPurchaseService_Rejections(t *testing.T) {
	store, gdb := newTestStore(t)
	svc := NewPurchaseService(store, nil)
	voter := createUser(t, gdb, nil)

	_, err := svc.Purchase(context.Background(), voter.ID, "platinum")
	assert.ErrorIs(t, err, apperrors.ErrUnknownPack)

	_, err = svc.Purchase(context.Background(), uuid.New(), "starter")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	var count int64
	require.NoError(t, gdb.Model(&model.VotePurchase{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Len(t, svc.Packs(), 3)
}
