package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateSubmissionRequest struct {
	ProblemID uuid.UUID  `json:"problem_id"`
	ContestID *uuid.UUID `json:"contest_id,omitempty"`
	Language  string     `json:"language"`
	Code      string     `json:"code"`
}

type SubmissionResponse struct {
	ID        uuid.UUID       `json:"id"`
	ContestID *uuid.UUID      `json:"contest_id,omitempty"`
	ProblemID uuid.UUID       `json:"problem_id"`
	UserID    uuid.UUID       `json:"user_id"`
	TeamID    *uuid.UUID      `json:"team_id,omitempty"`
	Language  string          `json:"language"`
	Status    string          `json:"status"`
	Score     int             `json:"score"`
	Verdict   json.RawMessage `json:"verdict,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// JudgeResultRequest is what the judge posts back when a run finishes.
type JudgeResultRequest struct {
	SubmissionID uuid.UUID       `json:"submission_id"`
	Status       string          `json:"status"`
	Score        int             `json:"score"`
	Verdict      json.RawMessage `json:"verdict,omitempty"`
}
