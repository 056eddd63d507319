package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mveljko/codeclash-api/internal/middleware"
	"github.com/mveljko/codeclash-api/internal/models"
	"github.com/mveljko/codeclash-api/internal/services"
	"github.com/mveljko/codeclash-api/pkg/dto"
)

type TeamHandler struct {
	teamService    TeamServiceInterface
	contestService ContestServiceInterface
	userService    UserServiceInterface
	emailService   EmailServiceInterface
	hub            HubInterface
	baseURL        string
}

func NewTeamHandler(
	teamService TeamServiceInterface,
	contestService ContestServiceInterface,
	userService UserServiceInterface,
	emailService EmailServiceInterface,
	hub HubInterface,
	baseURL string,
) *TeamHandler {
	return &TeamHandler{
		teamService:    teamService,
		contestService: contestService,
		userService:    userService,
		emailService:   emailService,
		hub:            hub,
		baseURL:        baseURL,
	}
}

// toTeamResponse folds derived lobby state into the wire shape. A waiting
// lobby where everyone is ready (and the team is big enough) displays as
// "ready" without that ever being written to storage.
func toTeamResponse(team *models.Team) dto.TeamResponse {
	displayStatus := team.Status
	if team.Status == models.TeamStatusWaiting && team.CanStart() {
		displayStatus = "ready"
	}

	members := make([]dto.TeamMemberResponse, 0, len(team.Members))
	for _, m := range team.Members {
		member := dto.TeamMemberResponse{
			ID:     m.ID,
			UserID: m.UserID,
			Role:   m.Role,
			Ready:  m.Ready,
		}
		if m.User != nil {
			member.User = toUserResponse(m.User)
		}
		members = append(members, member)
	}

	return dto.TeamResponse{
		ID:            team.ID,
		Code:          team.Code,
		ContestID:     team.ContestID,
		Name:          team.Name,
		OwnerID:       team.OwnerID,
		Status:        team.Status,
		DisplayStatus: displayStatus,
		StartedAt:     team.StartedAt,
		CanStart:      team.Status == models.TeamStatusWaiting && team.CanStart(),
		Members:       members,
		CreatedAt:     team.CreatedAt,
	}
}

func (h *TeamHandler) joinURL(code string) string {
	return h.baseURL + "/join/" + code
}

func (h *TeamHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.ContestID == uuid.Nil {
		c.BadRequest("contest_id is required")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	ctx := context.Background()

	contest, err := h.contestService.Get(ctx, req.ContestID)
	if err != nil {
		c.NotFound("contest not found")
		return
	}
	if !contest.IsTeam() {
		c.BadRequest("contest does not use teams")
		return
	}
	if contest.HasEnded(time.Now()) {
		_ = c.JSON(410, map[string]string{"error": "contest has ended"})
		return
	}

	team, err := h.teamService.Create(ctx, req.ContestID, userID, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyOnAnotherTeam) {
			_ = c.JSON(409, map[string]string{"error": "you already belong to a team in this contest"})
			return
		}
		c.InternalServerError("failed to create team")
		return
	}

	_ = c.JSON(201, toTeamResponse(team))
}

func (h *TeamHandler) JoinByCode(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.JoinTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Code == "" {
		c.BadRequest("code is required")
		return
	}

	ctx := context.Background()

	existing, err := h.teamService.GetByCode(ctx, req.Code)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	contest, err := h.contestService.Get(ctx, existing.ContestID)
	if err != nil {
		c.NotFound("contest not found")
		return
	}
	if contest.HasEnded(time.Now()) {
		_ = c.JSON(410, map[string]string{"error": "contest has ended"})
		return
	}

	team, joined, err := h.teamService.JoinByCode(ctx, req.Code, userID)
	if err != nil {
		h.respondTeamError(c, err)
		return
	}

	if joined {
		name := ""
		for _, m := range team.Members {
			if m.UserID == userID && m.User != nil {
				name = m.User.Name
			}
		}
		h.hub.BroadcastMemberJoined(team.ID, userID, name)
	}

	_ = c.JSON(200, dto.JoinTeamResponse{
		Team:   toTeamResponse(team),
		Joined: joined,
	})
}

func (h *TeamHandler) GetByCode(c *drift.Context) {
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

	_ = c.JSON(200, toTeamResponse(team))
}

func (h *TeamHandler) GetMine(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requestedID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}
	if requestedID != userID {
		c.Forbidden("you can only look up your own team")
		return
	}

	contestID, err := uuid.Parse(c.QueryParam("contestId"))
	if err != nil {
		c.BadRequest("contestId query parameter is required")
		return
	}

	team, err := h.teamService.GetByUserAndContest(context.Background(), userID, contestID)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	_ = c.JSON(200, toTeamResponse(team))
}

func (h *TeamHandler) SetReady(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	code := strings.ToUpper(c.Param("code"))

	var req dto.SetReadyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	team, err := h.teamService.SetReady(context.Background(), code, userID, req.Ready)
	if err != nil {
		h.respondTeamError(c, err)
		return
	}

	if !team.IsLocked() {
		h.hub.BroadcastMemberReady(team.ID, userID, req.Ready)
	}

	_ = c.JSON(200, toTeamResponse(team))
}

func (h *TeamHandler) Start(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	code := strings.ToUpper(c.Param("code"))

	team, err := h.teamService.Start(context.Background(), code, userID)
	if err != nil {
		h.respondTeamError(c, err)
		return
	}

	if team.StartedAt != nil {
		h.hub.BroadcastTeamStarted(team.ID, *team.StartedAt)
	}

	_ = c.JSON(200, toTeamResponse(team))
}

// Invite emails a join link for the lobby. The link is the same code anyone
// could type in by hand; email is just the delivery channel.
func (h *TeamHandler) Invite(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	code := strings.ToUpper(c.Param("code"))

	var req dto.InviteMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Email == "" {
		c.BadRequest("email is required")
		return
	}

	ctx := context.Background()

	team, err := h.teamService.GetByCode(ctx, code)
	if err != nil {
		c.NotFound("team not found")
		return
	}
	if !team.HasMember(userID) {
		c.Forbidden("you are not a member of this team")
		return
	}
	if team.IsLocked() {
		_ = c.JSON(409, map[string]string{"error": "team has already started"})
		return
	}

	inviterName := "A teammate"
	if inviter, err := h.userService.GetByID(ctx, userID); err == nil {
		inviterName = inviter.Name
	}

	joinURL := h.joinURL(team.Code)
	if err := h.emailService.SendTeamInvite(req.Email, team.Name, inviterName, joinURL); err != nil {
		c.InternalServerError("failed to send invite")
		return
	}

	_ = c.JSON(200, dto.InviteLinkResponse{
		Code:    team.Code,
		JoinURL: joinURL,
	})
}

func (h *TeamHandler) GetInviteLink(c *drift.Context) {
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

	_ = c.JSON(200, dto.InviteLinkResponse{
		Code:    team.Code,
		JoinURL: h.joinURL(team.Code),
	})
}

func (h *TeamHandler) respondTeamError(c *drift.Context, err error) {
	var cannotStart *services.CannotStartError
	switch {
	case errors.Is(err, services.ErrTeamNotFound):
		c.NotFound("team not found")
	case errors.Is(err, services.ErrNotAMember):
		c.Forbidden("you are not a member of this team")
	case errors.Is(err, services.ErrAlreadyOnAnotherTeam):
		_ = c.JSON(409, map[string]string{"error": "you already belong to a team in this contest"})
	case errors.Is(err, services.ErrTeamLocked):
		_ = c.JSON(409, map[string]string{"error": "team has already started"})
	case errors.As(err, &cannotStart):
		_ = c.JSON(409, map[string]string{
			"code":  "CANNOT_START",
			"error": cannotStart.Reason,
		})
	default:
		c.InternalServerError("team operation failed")
	}
}
