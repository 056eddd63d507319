package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mveljko/codeclash-api/internal/database"
	"github.com/mveljko/codeclash-api/internal/models"
)

var (
	ErrProblemNotFound      = errors.New("problem not found")
	ErrProblemTitleRequired = errors.New("problem title is required")
	ErrInvalidDifficulty    = errors.New("difficulty must be easy, medium or hard")
	ErrInvalidTestCases     = errors.New("test cases must be a JSON array of {input, expected}")
)

type ProblemService struct {
	db *database.DB
}

func NewProblemService(db *database.DB) *ProblemService {
	return &ProblemService{db: db}
}

func validDifficulty(d string) bool {
	switch d {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return true
	}
	return false
}

func validateTestCases(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var cases []models.TestCase
	if err := json.Unmarshal(raw, &cases); err != nil {
		return ErrInvalidTestCases
	}
	return nil
}

func (s *ProblemService) Create(ctx context.Context, title, statement, difficulty string, testCases json.RawMessage, createdBy uuid.UUID) (*models.Problem, error) {
	if title == "" {
		return nil, ErrProblemTitleRequired
	}
	if !validDifficulty(difficulty) {
		return nil, ErrInvalidDifficulty
	}
	if err := validateTestCases(testCases); err != nil {
		return nil, err
	}
	if len(testCases) == 0 {
		testCases = json.RawMessage("[]")
	}

	var problem models.Problem
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO problems (title, statement, difficulty, test_cases, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, statement, difficulty, test_cases, created_by, created_at, updated_at
	`, title, statement, difficulty, testCases, createdBy).Scan(
		&problem.ID, &problem.Title, &problem.Statement, &problem.Difficulty,
		&problem.TestCases, &problem.CreatedBy, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create problem: %w", err)
	}
	return &problem, nil
}

func (s *ProblemService) Update(ctx context.Context, id uuid.UUID, title, statement, difficulty string, testCases json.RawMessage) (*models.Problem, error) {
	if title == "" {
		return nil, ErrProblemTitleRequired
	}
	if !validDifficulty(difficulty) {
		return nil, ErrInvalidDifficulty
	}
	if err := validateTestCases(testCases); err != nil {
		return nil, err
	}
	if len(testCases) == 0 {
		testCases = json.RawMessage("[]")
	}

	var problem models.Problem
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE problems SET title = $1, statement = $2, difficulty = $3, test_cases = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, title, statement, difficulty, test_cases, created_by, created_at, updated_at
	`, title, statement, difficulty, testCases, id).Scan(
		&problem.ID, &problem.Title, &problem.Statement, &problem.Difficulty,
		&problem.TestCases, &problem.CreatedBy, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProblemNotFound
		}
		return nil, fmt.Errorf("failed to update problem: %w", err)
	}
	return &problem, nil
}

func (s *ProblemService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete problem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProblemNotFound
	}
	return nil
}

func (s *ProblemService) Get(ctx context.Context, id uuid.UUID) (*models.Problem, error) {
	var problem models.Problem
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, title, statement, difficulty, test_cases, created_by, created_at, updated_at
		FROM problems WHERE id = $1
	`, id).Scan(
		&problem.ID, &problem.Title, &problem.Statement, &problem.Difficulty,
		&problem.TestCases, &problem.CreatedBy, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProblemNotFound
		}
		return nil, err
	}
	return &problem, nil
}

func (s *ProblemService) List(ctx context.Context) ([]models.Problem, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, title, statement, difficulty, created_by, created_at, updated_at
		FROM problems ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var problems []models.Problem
	for rows.Next() {
		var problem models.Problem
		if err := rows.Scan(
			&problem.ID, &problem.Title, &problem.Statement, &problem.Difficulty,
			&problem.CreatedBy, &problem.CreatedAt, &problem.UpdatedAt,
		); err != nil {
			return nil, err
		}
		problems = append(problems, problem)
	}
	return problems, rows.Err()
}

// VisibleTestCases strips hidden cases for non-admin callers.
func VisibleTestCases(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return json.RawMessage("[]"), nil
	}
	var cases []models.TestCase
	if err := json.Unmarshal(raw, &cases); err != nil {
		return nil, ErrInvalidTestCases
	}
	visible := make([]models.TestCase, 0, len(cases))
	for _, tc := range cases {
		if !tc.Hidden {
			visible = append(visible, tc)
		}
	}
	return json.Marshal(visible)
}
