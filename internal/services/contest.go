package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mveljko/codeclash-api/internal/database"
	"github.com/mveljko/codeclash-api/internal/models"
)

var (
	ErrContestNotFound      = errors.New("contest not found")
	ErrContestEnded         = errors.New("contest has ended")
	ErrContestTitleRequired = errors.New("contest title is required")
	ErrInvalidContestWindow = errors.New("contest must end after it starts")
	ErrInvalidContestType   = errors.New("contest type must be individual or team")
)

// Admission is what entering a contest resolved to. For individual contests
// the caller was registered (or already was). For team contests Team is the
// user's existing lobby, or nil when they still have to create or join one.
type Admission struct {
	Contest    *models.Contest `json:"contest"`
	Registered bool            `json:"registered"`
	Team       *models.Team    `json:"team,omitempty"`
}

type ContestService struct {
	db    *database.DB
	teams *TeamService
}

func NewContestService(db *database.DB, teams *TeamService) *ContestService {
	return &ContestService{db: db, teams: teams}
}

func (s *ContestService) Create(ctx context.Context, title string, description *string, contestType string, startsAt, endsAt time.Time, createdBy uuid.UUID) (*models.Contest, error) {
	if title == "" {
		return nil, ErrContestTitleRequired
	}
	if contestType != models.ContestTypeIndividual && contestType != models.ContestTypeTeam {
		return nil, ErrInvalidContestType
	}
	if !endsAt.After(startsAt) {
		return nil, ErrInvalidContestWindow
	}

	var contest models.Contest
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO contests (title, description, type, starts_at, ends_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, type, starts_at, ends_at, created_by, created_at, updated_at
	`, title, description, contestType, startsAt, endsAt, createdBy).Scan(
		&contest.ID, &contest.Title, &contest.Description, &contest.Type,
		&contest.StartsAt, &contest.EndsAt, &contest.CreatedBy, &contest.CreatedAt, &contest.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}
	return &contest, nil
}

func (s *ContestService) Update(ctx context.Context, id uuid.UUID, title string, description *string, startsAt, endsAt time.Time) (*models.Contest, error) {
	if title == "" {
		return nil, ErrContestTitleRequired
	}
	if !endsAt.After(startsAt) {
		return nil, ErrInvalidContestWindow
	}

	var contest models.Contest
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE contests SET title = $1, description = $2, starts_at = $3, ends_at = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, title, description, type, starts_at, ends_at, created_by, created_at, updated_at
	`, title, description, startsAt, endsAt, id).Scan(
		&contest.ID, &contest.Title, &contest.Description, &contest.Type,
		&contest.StartsAt, &contest.EndsAt, &contest.CreatedBy, &contest.CreatedAt, &contest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}
	return &contest, nil
}

func (s *ContestService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM contests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContestNotFound
	}
	return nil
}

func (s *ContestService) Get(ctx context.Context, id uuid.UUID) (*models.Contest, error) {
	var contest models.Contest
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, title, description, type, starts_at, ends_at, created_by, created_at, updated_at
		FROM contests WHERE id = $1
	`, id).Scan(
		&contest.ID, &contest.Title, &contest.Description, &contest.Type,
		&contest.StartsAt, &contest.EndsAt, &contest.CreatedBy, &contest.CreatedAt, &contest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContestNotFound
		}
		return nil, err
	}

	contest.Problems, err = s.loadProblems(ctx, contest.ID)
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

func (s *ContestService) List(ctx context.Context) ([]models.Contest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, title, description, type, starts_at, ends_at, created_by, created_at, updated_at
		FROM contests ORDER BY starts_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contests []models.Contest
	for rows.Next() {
		var contest models.Contest
		if err := rows.Scan(
			&contest.ID, &contest.Title, &contest.Description, &contest.Type,
			&contest.StartsAt, &contest.EndsAt, &contest.CreatedBy, &contest.CreatedAt, &contest.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contests = append(contests, contest)
	}
	return contests, rows.Err()
}

// AddProblem attaches a problem at the given position. Re-attaching an
// already attached problem just moves it.
func (s *ContestService) AddProblem(ctx context.Context, contestID, problemID uuid.UUID, position int) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO contest_problems (contest_id, problem_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (contest_id, problem_id) DO UPDATE SET position = EXCLUDED.position
	`, contestID, problemID, position)
	if err != nil {
		return fmt.Errorf("failed to add problem to contest: %w", err)
	}
	return nil
}

func (s *ContestService) RemoveProblem(ctx context.Context, contestID, problemID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM contest_problems WHERE contest_id = $1 AND problem_id = $2
	`, contestID, problemID)
	if err != nil {
		return fmt.Errorf("failed to remove problem from contest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProblemNotFound
	}
	return nil
}

// ResolveAdmission decides what entering a contest means for this user.
// Individual contests register the caller on the spot; registering twice is
// absorbed. Team contests hand back the caller's existing lobby when there
// is one, and otherwise leave Team nil so the client offers create-or-join.
func (s *ContestService) ResolveAdmission(ctx context.Context, contestID, userID uuid.UUID) (*Admission, error) {
	contest, err := s.Get(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if contest.HasEnded(time.Now()) {
		return nil, ErrContestEnded
	}

	admission := &Admission{Contest: contest}

	if !contest.IsTeam() {
		if err := s.RegisterParticipant(ctx, contestID, userID); err != nil {
			return nil, err
		}
		admission.Registered = true
		return admission, nil
	}

	team, err := s.teams.GetByUserAndContest(ctx, userID, contestID)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return admission, nil
		}
		return nil, err
	}
	admission.Team = team
	return admission, nil
}

func (s *ContestService) RegisterParticipant(ctx context.Context, contestID, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO contest_participants (contest_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (contest_id, user_id) DO NOTHING
	`, contestID, userID)
	if err != nil {
		return fmt.Errorf("failed to register participant: %w", err)
	}
	return nil
}

func (s *ContestService) ListParticipants(ctx context.Context, contestID uuid.UUID) ([]models.User, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT u.id, u.email, u.name, u.avatar_url, u.provider, u.global_role, u.created_at, u.updated_at
		FROM contest_participants cp
		JOIN users u ON cp.user_id = u.id
		WHERE cp.contest_id = $1
		ORDER BY cp.created_at
	`, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &user.AvatarURL,
			&user.Provider, &user.GlobalRole, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *ContestService) loadProblems(ctx context.Context, contestID uuid.UUID) ([]models.ContestProblem, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT cp.problem_id, cp.position, p.id, p.title, p.statement, p.difficulty, p.created_by, p.created_at, p.updated_at
		FROM contest_problems cp
		JOIN problems p ON cp.problem_id = p.id
		WHERE cp.contest_id = $1
		ORDER BY cp.position
	`, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var problems []models.ContestProblem
	for rows.Next() {
		var cp models.ContestProblem
		var p models.Problem
		if err := rows.Scan(
			&cp.ProblemID, &cp.Position,
			&p.ID, &p.Title, &p.Statement, &p.Difficulty, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		cp.Problem = &p
		problems = append(problems, cp)
	}
	return problems, rows.Err()
}
