package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"video not found", ErrVideoNotFound, http.StatusNotFound, "VIDEO_NOT_FOUND"},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"not approved", ErrVideoNotApproved, http.StatusBadRequest, "VIDEO_NOT_APPROVED"},
		{"no votes", ErrNoVotesAvailable, http.StatusBadRequest, "NO_VOTES_AVAILABLE"},
		{"already voted", ErrAlreadyVoted, http.StatusConflict, "ALREADY_VOTED"},
		{"key reused", ErrIdempotencyKeyReused, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"wrapped", fmt.Errorf("cast vote: %w", ErrNoVotesAvailable), http.StatusBadRequest, "NO_VOTES_AVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_WeeklyLimitCarriesDays(t *testing.T) {
	err := fmt.Errorf("cast vote: %w", &WeeklyLimitError{DaysUntilNextVote: 3})

	assert.True(t, errors.Is(err, ErrVoteWeeklyLimit))

	httpErr := MapErrorToHTTP(err)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "VOTE_WEEKLY_LIMIT", httpErr.Code)
	assert.Equal(t, 3, httpErr.ToErrorResponse().Details["days_until_next_vote"])
}
