package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mveljko/codeclash-api/internal/database"
	"github.com/mveljko/codeclash-api/internal/models"
)

var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrNotAMember           = errors.New("user is not a member of this team")
	ErrAlreadyOnAnotherTeam = errors.New("user already belongs to another team in this contest")
	ErrTeamLocked           = errors.New("team is no longer accepting changes")
	ErrTeamNameRequired     = errors.New("team name is required")
)

// CannotStartError reports which start precondition failed so the leader's
// client can say why.
type CannotStartError struct {
	Reason string
}

const (
	StartReasonNotLeader     = "only the team leader can start"
	StartReasonTooFewMembers = "a team needs at least two members to start"
	StartReasonNotAllReady   = "every member must be ready to start"
)

func (e *CannotStartError) Error() string {
	return "cannot start: " + e.Reason
}

const (
	joinCodeCharset  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	joinCodeLength   = 6
	joinCodeAttempts = 5
)

// querier is satisfied by both the pool and pgx.Tx, so member loading can run
// inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// isUniqueViolation reports whether err is a postgres unique-index violation.
// Two racing joins into different teams of one contest lock different team
// rows, so both pass the membership check and the loser lands on the
// unique(contest_id, user_id) index instead.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type TeamService struct {
	db *database.DB
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db}
}

// Create makes a new lobby for a team contest with the creator as its leader.
// The join code is picked at random and retried on collision; the insert's
// unique constraint is what actually decides.
func (s *TeamService) Create(ctx context.Context, contestID, ownerID uuid.UUID, name string) (*models.Team, error) {
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var onTeam bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE contest_id = $1 AND user_id = $2)
	`, contestID, ownerID).Scan(&onTeam)
	if err != nil {
		return nil, err
	}
	if onTeam {
		return nil, ErrAlreadyOnAnotherTeam
	}

	var team models.Team
	for attempt := 0; ; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO teams (code, contest_id, name, owner_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO NOTHING
			RETURNING id, code, contest_id, name, owner_id, status, started_at, created_at, updated_at
		`, code, contestID, name, ownerID).Scan(
			&team.ID, &team.Code, &team.ContestID, &team.Name, &team.OwnerID,
			&team.Status, &team.StartedAt, &team.CreatedAt, &team.UpdatedAt,
		)
		if err == nil {
			break
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to create team: %w", err)
		}
		if attempt+1 >= joinCodeAttempts {
			return nil, fmt.Errorf("failed to find a free join code")
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, contest_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`, team.ID, contestID, ownerID, models.RoleLeader)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyOnAnotherTeam
		}
		return nil, fmt.Errorf("failed to add leader as member: %w", err)
	}

	team.Members, err = s.loadMembers(ctx, tx, team.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &team, nil
}

// JoinByCode redeems a join code. The second return value reports whether a
// new membership was created: a user re-joining their own team gets the team
// back with joined=false, never an error and never a second member row.
func (s *TeamService) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*models.Team, bool, error) {
	if code == "" {
		return nil, false, ErrTeamNotFound
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	team, err := lockTeam(ctx, tx, `SELECT id, code, contest_id, name, owner_id, status, started_at, created_at, updated_at
		FROM teams WHERE code = $1 FOR UPDATE`, code)
	if err != nil {
		return nil, false, err
	}

	team.Members, err = s.loadMembers(ctx, tx, team.ID)
	if err != nil {
		return nil, false, err
	}

	if team.HasMember(userID) {
		if err := tx.Commit(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return team, false, nil
	}

	if team.IsLocked() {
		return nil, false, ErrTeamLocked
	}

	var onTeam bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE contest_id = $1 AND user_id = $2)
	`, team.ContestID, userID).Scan(&onTeam)
	if err != nil {
		return nil, false, err
	}
	if onTeam {
		return nil, false, ErrAlreadyOnAnotherTeam
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, contest_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`, team.ID, team.ContestID, userID, models.RoleMember)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, ErrAlreadyOnAnotherTeam
		}
		return nil, false, fmt.Errorf("failed to add member: %w", err)
	}

	team.Members, err = s.loadMembers(ctx, tx, team.ID)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return team, true, nil
}

// SetReady flips the calling member's ready flag. After the lobby has
// started the flag no longer matters, so the call degrades to a read.
// Non-members are rejected either way, a locked team is not theirs to see.
func (s *TeamService) SetReady(ctx context.Context, code string, userID uuid.UUID, ready bool) (*models.Team, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	team, err := lockTeam(ctx, tx, `SELECT id, code, contest_id, name, owner_id, status, started_at, created_at, updated_at
		FROM teams WHERE code = $1 FOR UPDATE`, code)
	if err != nil {
		return nil, err
	}

	if !team.IsLocked() {
		tag, err := tx.Exec(ctx, `
			UPDATE team_members SET ready = $1 WHERE team_id = $2 AND user_id = $3
		`, ready, team.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to update ready flag: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrNotAMember
		}

		if _, err := tx.Exec(ctx, `UPDATE teams SET updated_at = NOW() WHERE id = $1`, team.ID); err != nil {
			return nil, err
		}
	}

	team.Members, err = s.loadMembers(ctx, tx, team.ID)
	if err != nil {
		return nil, err
	}

	if !team.HasMember(userID) {
		return nil, ErrNotAMember
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return team, nil
}

// Start moves the lobby to started. Callable only by the leader, only once
// every member is ready and the team is big enough. A retry after a
// successful start returns the started team unchanged. The membership
// check runs on the locked row, so a join racing a start cannot slip in
// between the check and the write.
func (s *TeamService) Start(ctx context.Context, code string, userID uuid.UUID) (*models.Team, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	team, err := lockTeam(ctx, tx, `SELECT id, code, contest_id, name, owner_id, status, started_at, created_at, updated_at
		FROM teams WHERE code = $1 FOR UPDATE`, code)
	if err != nil {
		return nil, err
	}

	team.Members, err = s.loadMembers(ctx, tx, team.ID)
	if err != nil {
		return nil, err
	}

	if team.Status == models.TeamStatusStarted {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return team, nil
	}
	if team.Status == models.TeamStatusCompleted {
		return nil, ErrTeamLocked
	}

	if team.OwnerID != userID {
		return nil, &CannotStartError{Reason: StartReasonNotLeader}
	}
	if len(team.Members) < models.MinTeamSize {
		return nil, &CannotStartError{Reason: StartReasonTooFewMembers}
	}
	if !team.AllReady() {
		return nil, &CannotStartError{Reason: StartReasonNotAllReady}
	}

	err = tx.QueryRow(ctx, `
		UPDATE teams SET status = $1, started_at = NOW(), updated_at = NOW()
		WHERE id = $2
		RETURNING status, started_at, updated_at
	`, models.TeamStatusStarted, team.ID).Scan(&team.Status, &team.StartedAt, &team.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to start team: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return team, nil
}

func (s *TeamService) GetByCode(ctx context.Context, code string) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, code, contest_id, name, owner_id, status, started_at, created_at, updated_at
		FROM teams WHERE code = $1
	`, code).Scan(
		&team.ID, &team.Code, &team.ContestID, &team.Name, &team.OwnerID,
		&team.Status, &team.StartedAt, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	team.Members, err = s.loadMembers(ctx, s.db.Pool, team.ID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetByUserAndContest is how a returning member rediscovers their lobby
// without the code.
func (s *TeamService) GetByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT t.id, t.code, t.contest_id, t.name, t.owner_id, t.status, t.started_at, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members tm ON t.id = tm.team_id
		WHERE tm.user_id = $1 AND t.contest_id = $2
	`, userID, contestID).Scan(
		&team.ID, &team.Code, &team.ContestID, &team.Name, &team.OwnerID,
		&team.Status, &team.StartedAt, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	team.Members, err = s.loadMembers(ctx, s.db.Pool, team.ID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Complete marks a started team's lobby as done after the contest window
// closes. Housekeeping only; it never un-starts anything.
func (s *TeamService) Complete(ctx context.Context, teamID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE teams SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.TeamStatusCompleted, teamID, models.TeamStatusStarted)
	return err
}

func (s *TeamService) loadMembers(ctx context.Context, q querier, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := q.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.contest_id, tm.user_id, tm.role, tm.ready, tm.created_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.global_role, u.created_at, u.updated_at
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.created_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.TeamID, &member.ContestID, &member.UserID, &member.Role, &member.Ready, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Provider, &user.GlobalRole, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

func lockTeam(ctx context.Context, tx pgx.Tx, query, code string) (*models.Team, error) {
	var team models.Team
	err := tx.QueryRow(ctx, query, code).Scan(
		&team.ID, &team.Code, &team.ContestID, &team.Name, &team.OwnerID,
		&team.Status, &team.StartedAt, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func generateJoinCode() (string, error) {
	code := make([]byte, joinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(joinCodeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = joinCodeCharset[n.Int64()]
	}
	return string(code), nil
}
