package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	SubmissionQueued   = "queued"
	SubmissionRunning  = "running"
	SubmissionAccepted = "accepted"
	SubmissionRejected = "rejected"
	SubmissionError    = "error"
)

type Submission struct {
	ID        uuid.UUID       `json:"id"`
	ContestID *uuid.UUID      `json:"contest_id,omitempty"`
	ProblemID uuid.UUID       `json:"problem_id"`
	UserID    uuid.UUID       `json:"user_id"`
	TeamID    *uuid.UUID      `json:"team_id,omitempty"`
	Language  string          `json:"language"`
	Code      string          `json:"code"`
	Status    string          `json:"status"`
	Score     int             `json:"score"`
	Verdict   json.RawMessage `json:"verdict,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (s *Submission) IsFinal() bool {
	switch s.Status {
	case SubmissionAccepted, SubmissionRejected, SubmissionError:
		return true
	}
	return false
}
