package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateContestRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Type        string    `json:"type"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

type UpdateContestRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

type AddContestProblemRequest struct {
	ProblemID uuid.UUID `json:"problem_id"`
	Position  int       `json:"position"`
}

type ContestResponse struct {
	ID          uuid.UUID                `json:"id"`
	Title       string                   `json:"title"`
	Description *string                  `json:"description,omitempty"`
	Type        string                   `json:"type"`
	StartsAt    time.Time                `json:"starts_at"`
	EndsAt      time.Time                `json:"ends_at"`
	Problems    []ContestProblemResponse `json:"problems,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

type ContestProblemResponse struct {
	ProblemID uuid.UUID        `json:"problem_id"`
	Position  int              `json:"position"`
	Problem   *ProblemResponse `json:"problem,omitempty"`
}

// AdmissionResponse is the answer to "what happens when I enter this
// contest". CountdownSeconds tells the client how long to run its pre-start
// timer; the server does not pace anyone.
type AdmissionResponse struct {
	Contest          ContestResponse `json:"contest"`
	Registered       bool            `json:"registered"`
	Team             *TeamResponse   `json:"team,omitempty"`
	CountdownSeconds int             `json:"countdown_seconds"`
}

type RegisterParticipantRequest struct {
	ContestID uuid.UUID `json:"contest_id"`
}
