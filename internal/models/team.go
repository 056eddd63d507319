package models

import (
	"time"

	"github.com/google/uuid"
)

// Stored team lifecycle. There is no stored "ready" status: whether a lobby
// is ready to start is derived from the member flags at read time.
const (
	TeamStatusWaiting   = "waiting"
	TeamStatusStarted   = "started"
	TeamStatusCompleted = "completed"
)

const (
	RoleLeader = "leader"
	RoleMember = "member"
)

// MinTeamSize is the smallest lobby the leader may start.
const MinTeamSize = 2

type Team struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	ContestID uuid.UUID  `json:"contest_id"`
	Name      string     `json:"name"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Status    string     `json:"status"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Members []TeamMember `json:"members,omitempty"`
}

type TeamMember struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	ContestID uuid.UUID `json:"contest_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	Ready     bool      `json:"ready"`
	CreatedAt time.Time `json:"joined_at"`
	User      *User     `json:"user,omitempty"`
}

func (t *Team) IsLocked() bool {
	return t.Status == TeamStatusStarted || t.Status == TeamStatusCompleted
}

func (t *Team) HasMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// AllReady reports whether every current member has opted in. An empty
// member list is never "ready".
func (t *Team) AllReady() bool {
	if len(t.Members) == 0 {
		return false
	}
	for _, m := range t.Members {
		if !m.Ready {
			return false
		}
	}
	return true
}

// CanStart is the leader's start gate: enough members and all of them ready.
func (t *Team) CanStart() bool {
	return len(t.Members) >= MinTeamSize && t.AllReady()
}
