package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quantumvision/internal/cache"
	"quantumvision/internal/config"
	apperrors "quantumvision/internal/errors"
	"quantumvision/internal/gamification"
	"quantumvision/internal/logger"
	"quantumvision/internal/metrics"
	"quantumvision/internal/model"
	"quantumvision/internal/realtime"
	"quantumvision/internal/repository"
)

const (
	voteRecordedMessage = "Vote recorded successfully"
	historyLimit        = 100
	attemptBatchSize    = 10
)

// VoteVideo is the video part of a vote result.
type VoteVideo struct {
	ID    uuid.UUID `json:"id"`
	Votes int       `json:"votes"`
}

// VoteUser is the voter part of a vote result.
type VoteUser struct {
	Votes     int           `json:"votes"`
	VotesUsed int           `json:"votes_used"`
	Points    int           `json:"points"`
	Level     int           `json:"level"`
	Badges    []model.Badge `json:"badges"`
}

// VoteResult is returned for a committed vote.
type VoteResult struct {
	Message   string        `json:"message"`
	Video     VoteVideo     `json:"video"`
	User      VoteUser      `json:"user"`
	LeveledUp bool          `json:"leveled_up"`
	NewBadges []model.Badge `json:"new_badges"`
}

// VoteService handles voting.
type VoteService interface {
	// CastVote spends one of the user's votes on an approved video. A non-empty
	// idempotencyKey replays the stored result of an earlier identical request;
	// reusing it for another video fails with ErrIdempotencyKeyReused.
	CastVote(ctx context.Context, userID, videoID uuid.UUID, idempotencyKey string) (*VoteResult, error)
	Eligibility(ctx context.Context, userID uuid.UUID) (*Eligibility, error)
	History(ctx context.Context, userID uuid.UUID) ([]model.Vote, error)
	// Close flushes pending vote attempt audit entries.
	Close()
}

type voteService struct {
	store  repository.Store
	cache  *cache.Client
	hub    *realtime.Hub
	policy config.VotingConfig
	now    func() time.Time

	// Mutex map for per-user locking
	userMutexes sync.Map
	// Channel for async attempt logging
	attempts chan model.VoteAttempt
	done     chan struct{}
	closed   sync.Once
}

// NewVoteService creates a new vote service and starts its audit log worker.
func NewVoteService(store repository.Store, cache *cache.Client, hub *realtime.Hub, policy config.VotingConfig) VoteService {
	s := &voteService{
		store:    store,
		cache:    cache,
		hub:      hub,
		policy:   policy,
		now:      time.Now,
		attempts: make(chan model.VoteAttempt, 100),
		done:     make(chan struct{}),
	}

	go s.attemptWorker(context.Background())

	return s
}

// getMutex returns a mutex for a specific user ID.
func (s *voteService) getMutex(userID uuid.UUID) *sync.Mutex {
	value, _ := s.userMutexes.LoadOrStore(userID.String(), &sync.Mutex{})
	return value.(*sync.Mutex)
}

// attemptWorker persists vote attempts in batches.
func (s *voteService) attemptWorker(ctx context.Context) {
	defer close(s.done)

	batch := make([]model.VoteAttempt, 0, attemptBatchSize)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.store.VoteAttempts().CreateBatch(ctx, batch); err != nil {
			logger.Log.Error().Err(err).Int("count", len(batch)).Msg("persist vote attempts")
		}
		batch = batch[:0]
	}

	for {
		select {
		case attempt, ok := <-s.attempts:
			if !ok {
				flush()
				return
			}
			batch = append(batch, attempt)
			if len(batch) >= attemptBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *voteService) recordAttempt(userID, videoID uuid.UUID, err error) {
	attempt := model.VoteAttempt{
		UserID:    userID,
		VideoID:   videoID,
		Status:    model.VoteAttemptAccepted,
		CreatedAt: s.now(),
	}
	if err != nil {
		attempt.Status = model.VoteAttemptRejected
		attempt.ErrorMessage = err.Error()
	}
	select {
	case s.attempts <- attempt:
	default:
		logger.Log.Warn().Str("user_id", userID.String()).Msg("vote attempt log full, entry dropped")
	}
}

func (s *voteService) Close() {
	s.closed.Do(func() {
		close(s.attempts)
		<-s.done
	})
}

// CastVote validates and applies a vote in one transaction.
func (s *voteService) CastVote(ctx context.Context, userID, videoID uuid.UUID, idempotencyKey string) (*VoteResult, error) {
	mutex := s.getMutex(userID)
	mutex.Lock()
	defer mutex.Unlock()

	if idempotencyKey != "" {
		var replay VoteResult
		if s.cache.GetJSON(ctx, idempotencyCacheKey(userID, idempotencyKey), &replay) {
			if replay.Video.ID != videoID {
				return nil, fmt.Errorf("cast vote: %w", apperrors.ErrIdempotencyKeyReused)
			}
			return &replay, nil
		}
	}

	now := s.now()
	var (
		result   *VoteResult
		category model.Category
	)

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		video, err := tx.Videos().FindByIDForUpdate(ctx, videoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrVideoNotFound
			}
			return err
		}
		if video.Status != model.VideoStatusApproved {
			return apperrors.ErrVideoNotApproved
		}
		category = video.Category

		user, err := tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return err
		}

		if err := CheckEligibility(user, now, s.policy.WeeklyLimit).Err(); err != nil {
			return err
		}

		if s.policy.OneVotePerVideo {
			voted, err := tx.Votes().Exists(ctx, userID, videoID)
			if err != nil {
				return err
			}
			if voted {
				return apperrors.ErrAlreadyVoted
			}
		}

		if err := tx.Videos().IncrementVotes(ctx, videoID); err != nil {
			return err
		}
		if err := tx.Users().DebitVote(ctx, userID, gamification.PointsPerVote, now); err != nil {
			return err
		}

		user, err = tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		outcome := gamification.Settle(user)
		if outcome.Changed() {
			if err := tx.Users().UpdateProgress(ctx, userID, user.Level, user.Badges); err != nil {
				return err
			}
		}

		if err := tx.Votes().Create(ctx, &model.Vote{
			UserID:        userID,
			VideoID:       videoID,
			PointsAwarded: gamification.PointsPerVote,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		video, err = tx.Videos().FindByID(ctx, videoID)
		if err != nil {
			return err
		}

		result = &VoteResult{
			Message: voteRecordedMessage,
			Video:   VoteVideo{ID: video.ID, Votes: video.Votes},
			User: VoteUser{
				Votes:     user.Votes,
				VotesUsed: user.VotesUsed,
				Points:    user.Points,
				Level:     user.Level,
				Badges:    user.Badges,
			},
			LeveledUp: outcome.LeveledUp,
			NewBadges: outcome.NewBadges,
		}
		if result.NewBadges == nil {
			result.NewBadges = []model.Badge{}
		}
		return nil
	})

	s.recordAttempt(userID, videoID, err)
	if err != nil {
		return nil, fmt.Errorf("cast vote: %w", err)
	}

	_ = s.cache.Delete(ctx, featuredCacheKey, videoCacheKey(videoID), userCacheKey(userID))
	if idempotencyKey != "" {
		s.cache.SetJSON(ctx, idempotencyCacheKey(userID, idempotencyKey), result, idempotencyTTL)
	}
	metrics.VotesTotal.WithLabelValues(string(category)).Inc()
	s.hub.Publish(realtime.Event{
		Type:     realtime.EventTypeVote,
		VideoID:  videoID,
		Category: category,
		Votes:    result.Video.Votes,
		At:       now,
	})

	logger.Log.Info().
		Str("user_id", userID.String()).
		Str("video_id", videoID.String()).
		Int("video_votes", result.Video.Votes).
		Int("votes_remaining", result.User.Votes).
		Bool("leveled_up", result.LeveledUp).
		Msg("vote cast")

	return result, nil
}

// Eligibility reports whether the user may vote now.
func (s *voteService) Eligibility(ctx context.Context, userID uuid.UUID) (*Eligibility, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	e := CheckEligibility(user, s.now(), s.policy.WeeklyLimit)
	return &e, nil
}

// History lists the user's most recent votes.
func (s *voteService) History(ctx context.Context, userID uuid.UUID) ([]model.Vote, error) {
	return s.store.Votes().ListByUser(ctx, userID, historyLimit)
}
