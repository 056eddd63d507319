package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mveljko/codeclash-api/internal/database"
	"github.com/mveljko/codeclash-api/internal/models"
	"github.com/mveljko/codeclash-api/internal/oauth"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "github",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, name, avatar_url, provider, provider_id, global_role, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Provider, &user.ProviderID, &user.GlobalRole, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithProvider sets the user's OAuth provider
func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = providerID
	}
}

// CreateContest creates a test contest, open for the next hour by default
func (f *Fixtures) CreateContest(t *testing.T, createdBy *models.User, opts ...ContestOption) *models.Contest {
	t.Helper()
	f.counter++

	contest := &models.Contest{
		Title:    fmt.Sprintf("Test Contest %d", f.counter),
		Type:     models.ContestTypeTeam,
		StartsAt: time.Now().Add(-time.Minute),
		EndsAt:   time.Now().Add(time.Hour),
	}
	if createdBy != nil {
		contest.CreatedBy = &createdBy.ID
	}

	for _, opt := range opts {
		opt(contest)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO contests (title, description, type, starts_at, ends_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, type, starts_at, ends_at, created_by, created_at, updated_at
	`, contest.Title, contest.Description, contest.Type, contest.StartsAt, contest.EndsAt, contest.CreatedBy).Scan(
		&contest.ID, &contest.Title, &contest.Description, &contest.Type,
		&contest.StartsAt, &contest.EndsAt, &contest.CreatedBy, &contest.CreatedAt, &contest.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create contest: %v", err)
	}

	return contest
}

// ContestOption configures a test contest
type ContestOption func(*models.Contest)

// WithContestType sets the contest type
func WithContestType(contestType string) ContestOption {
	return func(c *models.Contest) {
		c.Type = contestType
	}
}

// WithWindow sets the contest window
func WithWindow(startsAt, endsAt time.Time) ContestOption {
	return func(c *models.Contest) {
		c.StartsAt = startsAt
		c.EndsAt = endsAt
	}
}

// CreateTeam creates a test team lobby in a contest with the given leader
func (f *Fixtures) CreateTeam(t *testing.T, contest *models.Contest, leader *models.User, opts ...TeamOption) *models.Team {
	t.Helper()
	f.counter++

	team := &models.Team{
		Code:      fmt.Sprintf("TST%03d", f.counter),
		ContestID: contest.ID,
		Name:      fmt.Sprintf("Test Team %d", f.counter),
		OwnerID:   leader.ID,
	}

	for _, opt := range opts {
		opt(team)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO teams (code, contest_id, name, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, code, contest_id, name, owner_id, status, started_at, created_at, updated_at
	`, team.Code, team.ContestID, team.Name, team.OwnerID).Scan(
		&team.ID, &team.Code, &team.ContestID, &team.Name, &team.OwnerID,
		&team.Status, &team.StartedAt, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, contest_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`, team.ID, team.ContestID, leader.ID, models.RoleLeader)
	if err != nil {
		t.Fatalf("failed to add leader as member: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return team
}

// TeamOption configures a test team
type TeamOption func(*models.Team)

// WithTeamName sets the team's name
func WithTeamName(name string) TeamOption {
	return func(t *models.Team) {
		t.Name = name
	}
}

// WithJoinCode sets the team's join code
func WithJoinCode(code string) TeamOption {
	return func(t *models.Team) {
		t.Code = code
	}
}

// AddTeamMember adds a member to a team lobby
func (f *Fixtures) AddTeamMember(t *testing.T, team *models.Team, user *models.User) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO team_members (team_id, contest_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, team.ID, team.ContestID, user.ID, models.RoleMember)
	if err != nil {
		t.Fatalf("failed to add team member: %v", err)
	}
}

// SetMemberReady flips a member's ready flag directly
func (f *Fixtures) SetMemberReady(t *testing.T, team *models.Team, user *models.User, ready bool) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		UPDATE team_members SET ready = $1 WHERE team_id = $2 AND user_id = $3
	`, ready, team.ID, user.ID)
	if err != nil {
		t.Fatalf("failed to set member ready: %v", err)
	}
}

// CreateProblem creates a test problem
func (f *Fixtures) CreateProblem(t *testing.T, createdBy *models.User, opts ...ProblemOption) *models.Problem {
	t.Helper()
	f.counter++

	problem := &models.Problem{
		Title:      fmt.Sprintf("Test Problem %d", f.counter),
		Statement:  "Do the thing.",
		Difficulty: models.DifficultyEasy,
		TestCases:  json.RawMessage(`[{"input":"1","expected":"1"}]`),
	}
	if createdBy != nil {
		problem.CreatedBy = &createdBy.ID
	}

	for _, opt := range opts {
		opt(problem)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO problems (title, statement, difficulty, test_cases, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, statement, difficulty, test_cases, created_by, created_at, updated_at
	`, problem.Title, problem.Statement, problem.Difficulty, problem.TestCases, problem.CreatedBy).Scan(
		&problem.ID, &problem.Title, &problem.Statement, &problem.Difficulty,
		&problem.TestCases, &problem.CreatedBy, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create problem: %v", err)
	}

	return problem
}

// ProblemOption configures a test problem
type ProblemOption func(*models.Problem)

// WithDifficulty sets the problem difficulty
func WithDifficulty(difficulty string) ProblemOption {
	return func(p *models.Problem) {
		p.Difficulty = difficulty
	}
}

// CreateSubmission creates a test submission in the given state
func (f *Fixtures) CreateSubmission(t *testing.T, user *models.User, problem *models.Problem, contestID, teamID *uuid.UUID, status string, score int) *models.Submission {
	t.Helper()

	sub := &models.Submission{
		ContestID: contestID,
		ProblemID: problem.ID,
		UserID:    user.ID,
		TeamID:    teamID,
		Language:  "go",
		Code:      "package main",
		Status:    status,
		Score:     score,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO submissions (contest_id, problem_id, user_id, team_id, language, code, status, score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, sub.ContestID, sub.ProblemID, sub.UserID, sub.TeamID, sub.Language, sub.Code, sub.Status, sub.Score).Scan(
		&sub.ID, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create submission: %v", err)
	}

	return sub
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

// OAuthUserInfo creates test OAuth user info
func OAuthUserInfo(email, name, provider, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: "https://example.com/avatar.png",
		ID:        id,
		Provider:  provider,
	}
}
