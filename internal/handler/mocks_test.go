package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"quantumvision/internal/auth"
	"quantumvision/internal/model"
	"quantumvision/internal/service"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// withSession stands in for the JWT middleware.
func withSession(s *auth.Session) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(auth.WithSession(c.Request().Context(), s)))
			return next(c)
		}
	}
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string, role model.Role) (*model.User, error) {
	args := m.Called(ctx, username, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, string, *model.User, error) {
	args := m.Called(ctx, email, password)
	var user *model.User
	if args.Get(2) != nil {
		user = args.Get(2).(*model.User)
	}
	return args.String(0), args.String(1), user, args.Error(3)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string, session *auth.Session) error {
	args := m.Called(ctx, refreshToken, session)
	return args.Error(0)
}

func (m *MockAuthService) Verify(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockVoteService struct {
	mock.Mock
}

func (m *MockVoteService) CastVote(ctx context.Context, userID, videoID uuid.UUID, idempotencyKey string) (*service.VoteResult, error) {
	args := m.Called(ctx, userID, videoID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VoteResult), args.Error(1)
}

func (m *MockVoteService) Eligibility(ctx context.Context, userID uuid.UUID) (*service.Eligibility, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Eligibility), args.Error(1)
}

func (m *MockVoteService) History(ctx context.Context, userID uuid.UUID) ([]model.Vote, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Vote), args.Error(1)
}

func (m *MockVoteService) Close() {
	m.Called()
}

type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Packs() []service.VotePack {
	args := m.Called()
	return args.Get(0).([]service.VotePack)
}

func (m *MockPurchaseService) Purchase(ctx context.Context, userID uuid.UUID, pack string) (*service.PurchaseResult, error) {
	args := m.Called(ctx, userID, pack)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PurchaseResult), args.Error(1)
}

func (m *MockPurchaseService) History(ctx context.Context, userID uuid.UUID) ([]model.VotePurchase, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VotePurchase), args.Error(1)
}

type MockVideoService struct {
	mock.Mock
}

func (m *MockVideoService) Upload(ctx context.Context, session *auth.Session, in service.UploadInput) (*model.Video, error) {
	args := m.Called(ctx, session, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

func (m *MockVideoService) List(ctx context.Context, page, limit int) (*service.VideoPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VideoPage), args.Error(1)
}

func (m *MockVideoService) ListByCategory(ctx context.Context, category string, page, limit int) (*service.VideoPage, error) {
	args := m.Called(ctx, category, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VideoPage), args.Error(1)
}

func (m *MockVideoService) Featured(ctx context.Context) ([]model.Video, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Video), args.Error(1)
}

func (m *MockVideoService) Get(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

func (m *MockVideoService) Mine(ctx context.Context, uploaderID uuid.UUID) ([]model.Video, error) {
	args := m.Called(ctx, uploaderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Video), args.Error(1)
}

func (m *MockVideoService) Update(ctx context.Context, session *auth.Session, id uuid.UUID, in service.UpdateInput) (*model.Video, error) {
	args := m.Called(ctx, session, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

func (m *MockVideoService) Delete(ctx context.Context, session *auth.Session, id uuid.UUID) error {
	args := m.Called(ctx, session, id)
	return args.Error(0)
}

func (m *MockVideoService) SetStatus(ctx context.Context, id uuid.UUID, status model.VideoStatus) (*model.Video, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, id uuid.UUID) (*service.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Profile), args.Error(1)
}
