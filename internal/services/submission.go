package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mveljko/codeclash-api/internal/database"
	"github.com/mveljko/codeclash-api/internal/judge"
	"github.com/mveljko/codeclash-api/internal/models"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrCodeRequired       = errors.New("code is required")
	ErrLanguageRequired   = errors.New("language is required")
	ErrInvalidStatus      = errors.New("invalid submission status")
)

type SubmissionService struct {
	db       *database.DB
	problems *ProblemService
	contests *ContestService
	teams    *TeamService
	judge    *judge.Client
}

func NewSubmissionService(db *database.DB, problems *ProblemService, contests *ContestService, teams *TeamService, judgeClient *judge.Client) *SubmissionService {
	return &SubmissionService{
		db:       db,
		problems: problems,
		contests: contests,
		teams:    teams,
		judge:    judgeClient,
	}
}

// Create records a submission and hands it to the judge. Contest submissions
// must land before the window closes; for team contests the submitter's team
// is attached so scoring can credit the whole lobby.
func (s *SubmissionService) Create(ctx context.Context, userID, problemID uuid.UUID, contestID *uuid.UUID, language, code string) (*models.Submission, error) {
	if language == "" {
		return nil, ErrLanguageRequired
	}
	if code == "" {
		return nil, ErrCodeRequired
	}

	problem, err := s.problems.Get(ctx, problemID)
	if err != nil {
		return nil, err
	}

	var teamID *uuid.UUID
	if contestID != nil {
		contest, err := s.contests.Get(ctx, *contestID)
		if err != nil {
			return nil, err
		}
		if contest.HasEnded(time.Now()) {
			return nil, ErrContestEnded
		}
		if contest.IsTeam() {
			team, err := s.teams.GetByUserAndContest(ctx, userID, *contestID)
			if err != nil {
				if errors.Is(err, ErrTeamNotFound) {
					return nil, ErrNotAMember
				}
				return nil, err
			}
			teamID = &team.ID
		}
	}

	var submission models.Submission
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO submissions (contest_id, problem_id, user_id, team_id, language, code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, contest_id, problem_id, user_id, team_id, language, code, status, score, verdict, created_at, updated_at
	`, contestID, problemID, userID, teamID, language, code, models.SubmissionQueued).Scan(
		&submission.ID, &submission.ContestID, &submission.ProblemID, &submission.UserID,
		&submission.TeamID, &submission.Language, &submission.Code, &submission.Status,
		&submission.Score, &submission.Verdict, &submission.CreatedAt, &submission.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	if s.judge != nil && s.judge.IsConfigured() {
		go s.dispatch(submission.ID, language, code, problem.TestCases)
	}

	return &submission, nil
}

func (s *SubmissionService) dispatch(submissionID uuid.UUID, language, code string, testCases json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := s.judge.Execute(ctx, judge.ExecuteRequest{
		SubmissionID: submissionID,
		Language:     language,
		Code:         code,
		TestCases:    testCases,
	})
	if err != nil {
		log.Printf("judge dispatch failed for submission %s: %v", submissionID, err)
		_, _ = s.db.Pool.Exec(ctx, `
			UPDATE submissions SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, models.SubmissionError, submissionID, models.SubmissionQueued)
	}
}

// RecordResult applies a judge verdict. Finished submissions are never
// overwritten, so a judge retrying its callback is harmless.
func (s *SubmissionService) RecordResult(ctx context.Context, submissionID uuid.UUID, status string, score int, verdict json.RawMessage) (*models.Submission, error) {
	switch status {
	case models.SubmissionRunning, models.SubmissionAccepted, models.SubmissionRejected, models.SubmissionError:
	default:
		return nil, ErrInvalidStatus
	}

	var submission models.Submission
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE submissions SET status = $1, score = $2, verdict = $3, updated_at = NOW()
		WHERE id = $4 AND status IN ($5, $6)
		RETURNING id, contest_id, problem_id, user_id, team_id, language, code, status, score, verdict, created_at, updated_at
	`, status, score, verdict, submissionID, models.SubmissionQueued, models.SubmissionRunning).Scan(
		&submission.ID, &submission.ContestID, &submission.ProblemID, &submission.UserID,
		&submission.TeamID, &submission.Language, &submission.Code, &submission.Status,
		&submission.Score, &submission.Verdict, &submission.CreatedAt, &submission.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.Get(ctx, submissionID)
		}
		return nil, fmt.Errorf("failed to record result: %w", err)
	}
	return &submission, nil
}

func (s *SubmissionService) Get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, contest_id, problem_id, user_id, team_id, language, code, status, score, verdict, created_at, updated_at
		FROM submissions WHERE id = $1
	`, id).Scan(
		&submission.ID, &submission.ContestID, &submission.ProblemID, &submission.UserID,
		&submission.TeamID, &submission.Language, &submission.Code, &submission.Status,
		&submission.Score, &submission.Verdict, &submission.CreatedAt, &submission.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Submission, error) {
	return s.list(ctx, `
		SELECT id, contest_id, problem_id, user_id, team_id, language, code, status, score, verdict, created_at, updated_at
		FROM submissions WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
}

func (s *SubmissionService) ListByContest(ctx context.Context, contestID uuid.UUID) ([]models.Submission, error) {
	return s.list(ctx, `
		SELECT id, contest_id, problem_id, user_id, team_id, language, code, status, score, verdict, created_at, updated_at
		FROM submissions WHERE contest_id = $1 ORDER BY created_at DESC
	`, contestID)
}

func (s *SubmissionService) list(ctx context.Context, query string, args ...any) ([]models.Submission, error) {
	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(
			&sub.ID, &sub.ContestID, &sub.ProblemID, &sub.UserID,
			&sub.TeamID, &sub.Language, &sub.Code, &sub.Status,
			&sub.Score, &sub.Verdict, &sub.CreatedAt, &sub.UpdatedAt,
		); err != nil {
			return nil, err
		}
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}
