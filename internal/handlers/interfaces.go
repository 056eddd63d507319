package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mveljko/codeclash-api/internal/models"
	"github.com/mveljko/codeclash-api/internal/oauth"
	"github.com/mveljko/codeclash-api/internal/services"
	"github.com/mveljko/codeclash-api/internal/sse"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, contestID, ownerID uuid.UUID, name string) (*models.Team, error)
	JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*models.Team, bool, error)
	SetReady(ctx context.Context, code string, userID uuid.UUID, ready bool) (*models.Team, error)
	Start(ctx context.Context, code string, userID uuid.UUID) (*models.Team, error)
	GetByCode(ctx context.Context, code string) (*models.Team, error)
	GetByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (*models.Team, error)
}

// ContestServiceInterface defines the methods used by handlers from ContestService
type ContestServiceInterface interface {
	Create(ctx context.Context, title string, description *string, contestType string, startsAt, endsAt time.Time, createdBy uuid.UUID) (*models.Contest, error)
	Update(ctx context.Context, id uuid.UUID, title string, description *string, startsAt, endsAt time.Time) (*models.Contest, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Contest, error)
	List(ctx context.Context) ([]models.Contest, error)
	AddProblem(ctx context.Context, contestID, problemID uuid.UUID, position int) error
	RemoveProblem(ctx context.Context, contestID, problemID uuid.UUID) error
	ResolveAdmission(ctx context.Context, contestID, userID uuid.UUID) (*services.Admission, error)
	RegisterParticipant(ctx context.Context, contestID, userID uuid.UUID) error
	ListParticipants(ctx context.Context, contestID uuid.UUID) ([]models.User, error)
}

// ProblemServiceInterface defines the methods used by handlers from ProblemService
type ProblemServiceInterface interface {
	Create(ctx context.Context, title, statement, difficulty string, testCases json.RawMessage, createdBy uuid.UUID) (*models.Problem, error)
	Update(ctx context.Context, id uuid.UUID, title, statement, difficulty string, testCases json.RawMessage) (*models.Problem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Problem, error)
	List(ctx context.Context) ([]models.Problem, error)
}

// SubmissionServiceInterface defines the methods used by handlers from SubmissionService
type SubmissionServiceInterface interface {
	Create(ctx context.Context, userID, problemID uuid.UUID, contestID *uuid.UUID, language, code string) (*models.Submission, error)
	RecordResult(ctx context.Context, submissionID uuid.UUID, status string, score int, verdict json.RawMessage) (*models.Submission, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Submission, error)
	ListByContest(ctx context.Context, contestID uuid.UUID) ([]models.Submission, error)
}

// LeaderboardServiceInterface defines the methods used by handlers from LeaderboardService
type LeaderboardServiceInterface interface {
	Record(ctx context.Context, contestID, userID uuid.UUID) error
	Top(ctx context.Context, contestID uuid.UUID, limit int) ([]models.LeaderboardEntry, error)
	Rebuild(ctx context.Context, contestID uuid.UUID) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email, globalRole string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// HubInterface defines the methods used by handlers from the Hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	SubscribeToTeam(clientID string, teamID uuid.UUID)
	UnsubscribeFromTeam(clientID string, teamID uuid.UUID)
	BroadcastMemberJoined(teamID, userID uuid.UUID, name string)
	BroadcastMemberReady(teamID, userID uuid.UUID, ready bool)
	BroadcastTeamStarted(teamID uuid.UUID, startedAt time.Time)
	BroadcastSubmissionJudged(teamID, submissionID, userID uuid.UUID, status string, score int)
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendTeamInvite(to, teamName, inviterName, joinURL string) error
}

// APIKeyServiceInterface defines the methods used by handlers from APIKeyService
type APIKeyServiceInterface interface {
	Create(ctx context.Context, name string, createdBy uuid.UUID, expiresAt *time.Time) (*models.JudgeAPIKey, string, error)
	Validate(ctx context.Context, key string) (uuid.UUID, error)
	List(ctx context.Context) ([]models.JudgeAPIKey, error)
	Revoke(ctx context.Context, keyID uuid.UUID) error
}
