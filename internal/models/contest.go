package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContestTypeIndividual = "individual"
	ContestTypeTeam       = "team"
)

type Contest struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Type        string     `json:"type"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Problems []ContestProblem `json:"problems,omitempty"`
}

type ContestProblem struct {
	ProblemID uuid.UUID `json:"problem_id"`
	Position  int       `json:"position"`
	Problem   *Problem  `json:"problem,omitempty"`
}

func (c *Contest) HasEnded(now time.Time) bool {
	return now.After(c.EndsAt)
}

func (c *Contest) IsTeam() bool {
	return c.Type == ContestTypeTeam
}

type ContestParticipant struct {
	ID        uuid.UUID `json:"id"`
	ContestID uuid.UUID `json:"contest_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"joined_at"`
}
