package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrVideoNotFound is returned when a video does not exist.
	ErrVideoNotFound = errors.New("video not found")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrVideoNotApproved is returned when voting on a video that is not approved.
	ErrVideoNotApproved = errors.New("video is not approved for voting")
	// ErrNoVotesAvailable is returned when the user has no votes left.
	ErrNoVotesAvailable = errors.New("no votes available")
	// ErrVoteWeeklyLimit is returned when the weekly voting window is closed.
	ErrVoteWeeklyLimit = errors.New("you can only vote once per week")
	// ErrAlreadyVoted is returned when the user already voted for the video.
	ErrAlreadyVoted = errors.New("you have already voted for this video")
	// ErrForbidden is returned when the caller lacks the required role or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCategory is returned for a category outside the festival list.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidSubmission is returned when upload metadata or files are rejected.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrInvalidStatus is returned for an unsupported moderation transition.
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrUnknownPack is returned when a vote pack name is not in the catalogue.
	ErrUnknownPack = errors.New("unknown vote pack")
	// ErrIdempotencyKeyReused is returned when an idempotency key is replayed for a different video.
	ErrIdempotencyKeyReused = errors.New("idempotency key already used for another video")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    map[string]interface{}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// WeeklyLimitError carries the remaining wait when the weekly gate is closed.
type WeeklyLimitError struct {
	DaysUntilNextVote int
}

func (e *WeeklyLimitError) Error() string {
	return ErrVoteWeeklyLimit.Error()
}

// Is lets errors.Is match the ErrVoteWeeklyLimit sentinel.
func (e *WeeklyLimitError) Is(target error) bool {
	return target == ErrVoteWeeklyLimit
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var weekly *WeeklyLimitError
	switch {
	case errors.As(err, &weekly):
		httpErr := NewHTTPError(http.StatusBadRequest, err.Error(), "VOTE_WEEKLY_LIMIT")
		httpErr.Details = map[string]interface{}{"days_until_next_vote": weekly.DaysUntilNextVote}
		return httpErr
	case errors.Is(err, ErrVoteWeeklyLimit):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VOTE_WEEKLY_LIMIT")
	case errors.Is(err, ErrVideoNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "VIDEO_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrVideoNotApproved):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VIDEO_NOT_APPROVED")
	case errors.Is(err, ErrNoVotesAvailable):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NO_VOTES_AVAILABLE")
	case errors.Is(err, ErrAlreadyVoted):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_VOTED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidCategory):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CATEGORY")
	case errors.Is(err, ErrInvalidSubmission):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_SUBMISSION")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrIdempotencyKeyReused):
		return NewHTTPError(http.StatusConflict, err.Error(), "IDEMPOTENCY_KEY_REUSED")
	case errors.Is(err, ErrUnknownPack):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "UNKNOWN_PACK")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
