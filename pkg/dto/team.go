package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTeamRequest struct {
	ContestID uuid.UUID `json:"contest_id"`
	Name      string    `json:"name"`
}

type JoinTeamRequest struct {
	Code string `json:"code"`
}

type SetReadyRequest struct {
	Ready bool `json:"ready"`
}

type InviteMemberRequest struct {
	Email string `json:"email"`
}

// TeamResponse carries the lobby as clients see it. DisplayStatus folds the
// derived all-members-ready state on top of the stored lifecycle: a waiting
// lobby whose members are all ready shows as "ready" even though nothing in
// the database says so.
type TeamResponse struct {
	ID            uuid.UUID            `json:"id"`
	Code          string               `json:"code"`
	ContestID     uuid.UUID            `json:"contest_id"`
	Name          string               `json:"name"`
	OwnerID       uuid.UUID            `json:"owner_id"`
	Status        string               `json:"status"`
	DisplayStatus string               `json:"display_status"`
	StartedAt     *time.Time           `json:"started_at,omitempty"`
	CanStart      bool                 `json:"can_start"`
	Members       []TeamMemberResponse `json:"members"`
	CreatedAt     time.Time            `json:"created_at"`
}

type TeamMemberResponse struct {
	ID     uuid.UUID    `json:"id"`
	UserID uuid.UUID    `json:"user_id"`
	Role   string       `json:"role"`
	Ready  bool         `json:"ready"`
	User   UserResponse `json:"user"`
}

type JoinTeamResponse struct {
	Team   TeamResponse `json:"team"`
	Joined bool         `json:"joined"`
}

type InviteLinkResponse struct {
	Code    string `json:"code"`
	JoinURL string `json:"join_url"`
}
