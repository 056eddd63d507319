package dto

import "github.com/google/uuid"

type LeaderboardEntryResponse struct {
	Rank      int       `json:"rank"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Score     int       `json:"score"`
}

type LeaderboardResponse struct {
	ContestID uuid.UUID                  `json:"contest_id"`
	Entries   []LeaderboardEntryResponse `json:"entries"`
}
