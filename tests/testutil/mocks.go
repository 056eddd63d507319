package testutil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mveljko/codeclash-api/internal/models"
	"github.com/mveljko/codeclash-api/internal/oauth"
	"github.com/mveljko/codeclash-api/internal/services"
	"github.com/mveljko/codeclash-api/internal/sse"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) Create(ctx context.Context, contestID, ownerID uuid.UUID, name string) (*models.Team, error) {
	args := m.Called(ctx, contestID, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*models.Team, bool, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Team), args.Bool(1), args.Error(2)
}

func (m *MockTeamService) SetReady(ctx context.Context, code string, userID uuid.UUID, ready bool) (*models.Team, error) {
	args := m.Called(ctx, code, userID, ready)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Start(ctx context.Context, code string, userID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetByCode(ctx context.Context, code string) (*models.Team, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, userID, contestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

// MockContestService mocks the ContestService
type MockContestService struct {
	mock.Mock
}

func (m *MockContestService) Create(ctx context.Context, title string, description *string, contestType string, startsAt, endsAt time.Time, createdBy uuid.UUID) (*models.Contest, error) {
	args := m.Called(ctx, title, description, contestType, startsAt, endsAt, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contest), args.Error(1)
}

func (m *MockContestService) Update(ctx context.Context, id uuid.UUID, title string, description *string, startsAt, endsAt time.Time) (*models.Contest, error) {
	args := m.Called(ctx, id, title, description, startsAt, endsAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contest), args.Error(1)
}

func (m *MockContestService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContestService) Get(ctx context.Context, id uuid.UUID) (*models.Contest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contest), args.Error(1)
}

func (m *MockContestService) List(ctx context.Context) ([]models.Contest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Contest), args.Error(1)
}

func (m *MockContestService) AddProblem(ctx context.Context, contestID, problemID uuid.UUID, position int) error {
	args := m.Called(ctx, contestID, problemID, position)
	return args.Error(0)
}

func (m *MockContestService) RemoveProblem(ctx context.Context, contestID, problemID uuid.UUID) error {
	args := m.Called(ctx, contestID, problemID)
	return args.Error(0)
}

func (m *MockContestService) ResolveAdmission(ctx context.Context, contestID, userID uuid.UUID) (*services.Admission, error) {
	args := m.Called(ctx, contestID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Admission), args.Error(1)
}

func (m *MockContestService) RegisterParticipant(ctx context.Context, contestID, userID uuid.UUID) error {
	args := m.Called(ctx, contestID, userID)
	return args.Error(0)
}

func (m *MockContestService) ListParticipants(ctx context.Context, contestID uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, contestID)
	return args.Get(0).([]models.User), args.Error(1)
}

// MockProblemService mocks the ProblemService
type MockProblemService struct {
	mock.Mock
}

func (m *MockProblemService) Create(ctx context.Context, title, statement, difficulty string, testCases json.RawMessage, createdBy uuid.UUID) (*models.Problem, error) {
	args := m.Called(ctx, title, statement, difficulty, testCases, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Problem), args.Error(1)
}

func (m *MockProblemService) Update(ctx context.Context, id uuid.UUID, title, statement, difficulty string, testCases json.RawMessage) (*models.Problem, error) {
	args := m.Called(ctx, id, title, statement, difficulty, testCases)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Problem), args.Error(1)
}

func (m *MockProblemService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProblemService) Get(ctx context.Context, id uuid.UUID) (*models.Problem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Problem), args.Error(1)
}

func (m *MockProblemService) List(ctx context.Context) ([]models.Problem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Problem), args.Error(1)
}

// MockSubmissionService mocks the SubmissionService
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Create(ctx context.Context, userID, problemID uuid.UUID, contestID *uuid.UUID, language, code string) (*models.Submission, error) {
	args := m.Called(ctx, userID, problemID, contestID, language, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) RecordResult(ctx context.Context, submissionID uuid.UUID, status string, score int, verdict json.RawMessage) (*models.Submission, error) {
	args := m.Called(ctx, submissionID, status, score, verdict)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) Get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Submission, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *MockSubmissionService) ListByContest(ctx context.Context, contestID uuid.UUID) ([]models.Submission, error) {
	args := m.Called(ctx, contestID)
	return args.Get(0).([]models.Submission), args.Error(1)
}

// MockLeaderboardService mocks the LeaderboardService
type MockLeaderboardService struct {
	mock.Mock
}

func (m *MockLeaderboardService) Record(ctx context.Context, contestID, userID uuid.UUID) error {
	args := m.Called(ctx, contestID, userID)
	return args.Error(0)
}

func (m *MockLeaderboardService) Top(ctx context.Context, contestID uuid.UUID, limit int) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, contestID, limit)
	return args.Get(0).([]models.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardService) Rebuild(ctx context.Context, contestID uuid.UUID) error {
	args := m.Called(ctx, contestID)
	return args.Error(0)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendTeamInvite(to, teamName, inviterName, joinURL string) error {
	args := m.Called(to, teamName, inviterName, joinURL)
	return args.Error(0)
}

// MockAPIKeyService mocks the APIKeyService
type MockAPIKeyService struct {
	mock.Mock
}

func (m *MockAPIKeyService) Create(ctx context.Context, name string, createdBy uuid.UUID, expiresAt *time.Time) (*models.JudgeAPIKey, string, error) {
	args := m.Called(ctx, name, createdBy, expiresAt)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.JudgeAPIKey), args.String(1), args.Error(2)
}

func (m *MockAPIKeyService) Validate(ctx context.Context, key string) (uuid.UUID, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAPIKeyService) List(ctx context.Context) ([]models.JudgeAPIKey, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.JudgeAPIKey), args.Error(1)
}

func (m *MockAPIKeyService) Revoke(ctx context.Context, keyID uuid.UUID) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}

// MockHub mocks the sse Hub for handlers that broadcast lobby events.
type MockHub struct {
	mock.Mock
}

func (m *MockHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockHub) Unregister(client *sse.Client) {
	m.Called(client)
}

func (m *MockHub) SubscribeToTeam(clientID string, teamID uuid.UUID) {
	m.Called(clientID, teamID)
}

func (m *MockHub) UnsubscribeFromTeam(clientID string, teamID uuid.UUID) {
	m.Called(clientID, teamID)
}

func (m *MockHub) BroadcastMemberJoined(teamID, userID uuid.UUID, name string) {
	m.Called(teamID, userID, name)
}

func (m *MockHub) BroadcastMemberReady(teamID, userID uuid.UUID, ready bool) {
	m.Called(teamID, userID, ready)
}

func (m *MockHub) BroadcastTeamStarted(teamID uuid.UUID, startedAt time.Time) {
	m.Called(teamID, startedAt)
}

func (m *MockHub) BroadcastSubmissionJudged(teamID, submissionID, userID uuid.UUID, status string, score int) {
	m.Called(teamID, submissionID, userID, status, score)
}

// MockJWTService mocks the JWTService for handlers that mint or refresh tokens.
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(userID uuid.UUID, email, globalRole string) (*services.TokenPair, error) {
	args := m.Called(userID, email, globalRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockOAuthProvider mocks an OAuth provider
type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) GetConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}

func (m *MockOAuthProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
