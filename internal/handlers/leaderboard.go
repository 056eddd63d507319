package handlers

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mveljko/codeclash-api/pkg/dto"
)

type LeaderboardHandler struct {
	leaderboardService LeaderboardServiceInterface
}

func NewLeaderboardHandler(leaderboardService LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) Get(c *drift.Context) {
	contestID, err := uuid.Parse(c.Param("contestId"))
	if err != nil {
		c.BadRequest("invalid contest id")
		return
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.BadRequest("limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboardService.Top(context.Background(), contestID, limit)
	if err != nil {
		c.InternalServerError("failed to load leaderboard")
		return
	}

	resp := dto.LeaderboardResponse{
		ContestID: contestID,
		Entries:   make([]dto.LeaderboardEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.LeaderboardEntryResponse{
			Rank:      e.Rank,
			UserID:    e.UserID,
			Name:      e.Name,
			AvatarURL: e.AvatarURL,
			Score:     e.Score,
		})
	}

	_ = c.JSON(200, resp)
}

// Rebuild recomputes the redis standings from storage. Admin only.
func (h *LeaderboardHandler) Rebuild(c *drift.Context) {
	contestID, err := uuid.Parse(c.Param("contestId"))
	if err != nil {
		c.BadRequest("invalid contest id")
		return
	}

	if err := h.leaderboardService.Rebuild(context.Background(), contestID); err != nil {
		c.InternalServerError("failed to rebuild leaderboard")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "leaderboard rebuilt"})
}
