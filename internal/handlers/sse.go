package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mveljko/codeclash-api/internal/middleware"
	"github.com/mveljko/codeclash-api/internal/sse"
)

type SSEHandler struct {
	hub            *sse.Hub
	teamService    TeamServiceInterface
	contestService ContestServiceInterface
}

func NewSSEHandler(hub *sse.Hub, teamService TeamServiceInterface, contestService ContestServiceInterface) *SSEHandler {
	return &SSEHandler{
		hub:            hub,
		teamService:    teamService,
		contestService: contestService,
	}
}

// Connect streams lobby events to a team member. The stream carries
// member_joined, member_ready, team_started and submission_judged events
// for the subscribed lobby, and closes itself when the contest window ends
// so an observer never outlives the contest.
func (h *SSEHandler) Connect(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	code := strings.ToUpper(c.Param("code"))

	team, err := h.teamService.GetByCode(context.Background(), code)
	if err != nil {
		c.NotFound("team not found")
		return
	}
	if !team.HasMember(userID) {
		c.Forbidden("you are not a member of this team")
		return
	}

	contest, err := h.contestService.Get(context.Background(), team.ContestID)
	if err != nil {
		c.NotFound("contest not found")
		return
	}
	if contest.HasEnded(time.Now()) {
		_ = c.JSON(410, map[string]string{"error": "contest has ended"})
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:     clientID,
		UserID: userID,
		Teams:  map[uuid.UUID]bool{team.ID: true},
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		<-c.Request.Context().Done()
		close(done)
	}()

	endTimer := time.NewTimer(time.Until(contest.EndsAt))
	defer endTimer.Stop()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-endTimer.C:
			_ = sseCtx.SendJSON(map[string]string{
				"type": "contest_ended",
			}, "system", "")
			return
		case <-done:
			return
		}
	}
}
