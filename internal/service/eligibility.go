package service

import (
	"math"
	"time"

	"quantumvision/internal/errors"
	"quantumvision/internal/model"
)

const (
	weeklyWindowDays = 7
	day              = 24 * time.Hour
)

// Eligibility reports whether a user may vote right now.
type Eligibility struct {
	CanVote             bool       `json:"can_vote"`
	VotesRemaining      int        `json:"votes_remaining"`
	WeeklyLimitEnforced bool       `json:"weekly_limit_enforced"`
	DaysSinceLastVote   *int       `json:"days_since_last_vote"`
	DaysUntilNextVote   int        `json:"days_until_next_vote"`
	NextVoteAt          *time.Time `json:"next_vote_at"`
	Reason              string     `json:"reason,omitempty"`

	weeklyClosed bool
}

// CheckEligibility computes the weekly window and balance state for u at now.
// The weekly window is always reported; it only blocks voting when weeklyEnforced.
func CheckEligibility(u *model.User, now time.Time, weeklyEnforced bool) Eligibility {
	e := Eligibility{
		VotesRemaining:      u.Votes,
		WeeklyLimitEnforced: weeklyEnforced,
	}

	if u.LastVotedAt != nil {
		diff := int(math.Ceil(math.Abs(float64(now.Sub(*u.LastVotedAt))) / float64(day)))
		e.DaysSinceLastVote = &diff
		if diff < weeklyWindowDays {
			e.weeklyClosed = true
			e.DaysUntilNextVote = weeklyWindowDays - diff
			next := u.LastVotedAt.Add(weeklyWindowDays * day)
			e.NextVoteAt = &next
		}
	}

	switch {
	case weeklyEnforced && e.weeklyClosed:
		e.Reason = errors.ErrVoteWeeklyLimit.Error()
	case u.Votes <= 0:
		e.Reason = errors.ErrNoVotesAvailable.Error()
	default:
		e.CanVote = true
	}
	return e
}

// Err returns the error that blocks voting, or nil.
func (e Eligibility) Err() error {
	if e.CanVote {
		return nil
	}
	if e.WeeklyLimitEnforced && e.weeklyClosed {
		return &errors.WeeklyLimitError{DaysUntilNextVote: e.DaysUntilNextVote}
	}
	return errors.ErrNoVotesAvailable
}
