package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quantumvision/internal/errors"
	"quantumvision/internal/model"
)

func TestCheckEligibility(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name          string
		votes         int
		lastVotedAt   *time.Time
		enforced      bool
		wantCanVote   bool
		wantDaysUntil int
		wantErr       error
	}{
		{"never voted", 3, nil, true, true, 0, nil},
		{"no votes left", 0, nil, false, false, 0, apperrors.ErrNoVotesAvailable},
		{"voted yesterday, not enforced", 3, at(20 * time.Hour), false, true, 6, nil},
		{"voted yesterday, enforced", 3, at(20 * time.Hour), true, false, 6, apperrors.ErrVoteWeeklyLimit},
		{"six and a half days, enforced", 3, at(156 * time.Hour), true, true, 0, nil},
		{"exactly seven days, enforced", 3, at(7 * 24 * time.Hour), true, true, 0, nil},
		{"weekly checked before balance", 0, at(time.Hour), true, false, 6, apperrors.ErrVoteWeeklyLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &model.User{Votes: tt.votes, LastVotedAt: tt.lastVotedAt}

			e := CheckEligibility(u, now, tt.enforced)

			assert.Equal(t, tt.wantCanVote, e.CanVote)
			assert.Equal(t, tt.wantDaysUntil, e.DaysUntilNextVote)
			assert.Equal(t, tt.votes, e.VotesRemaining)
			if tt.wantErr == nil {
				assert.NoError(t, e.Err())
				assert.Empty(t, e.Reason)
			} else {
				assert.ErrorIs(t, e.Err(), tt.wantErr)
				assert.NotEmpty(t, e.Reason)
			}
		})
	}
}

func TestCheckEligibility_ReportsWindow(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	last := now.Add(-50 * time.Hour)

	e := CheckEligibility(&model.User{Votes: 1, LastVotedAt: &last}, now, true)

	require.NotNil(t, e.DaysSinceLastVote)
	assert.Equal(t, 3, *e.DaysSinceLastVote)
	assert.Equal(t, 4, e.DaysUntilNextVote)
	require.NotNil(t, e.NextVoteAt)
	assert.Equal(t, last.Add(7*24*time.Hour), *e.NextVoteAt)

	var weekly *apperrors.WeeklyLimitError
	require.ErrorAs(t, e.Err(), &weekly)
	assert.Equal(t, 4, weekly.DaysUntilNextVote)
}
