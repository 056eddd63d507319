package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mveljko/codeclash-api/internal/config"
	"github.com/mveljko/codeclash-api/internal/middleware"
	"github.com/mveljko/codeclash-api/internal/models"
	"github.com/mveljko/codeclash-api/internal/services"
	"github.com/mveljko/codeclash-api/pkg/dto"
)

type ContestHandler struct {
	contestService ContestServiceInterface
	cfg            *config.Config
}

func NewContestHandler(contestService ContestServiceInterface, cfg *config.Config) *ContestHandler {
	return &ContestHandler{contestService: contestService, cfg: cfg}
}

func toContestResponse(contest *models.Contest) dto.ContestResponse {
	resp := dto.ContestResponse{
		ID:          contest.ID,
		Title:       contest.Title,
		Description: contest.Description,
		Type:        contest.Type,
		StartsAt:    contest.StartsAt,
		EndsAt:      contest.EndsAt,
		CreatedAt:   contest.CreatedAt,
	}
	for _, cp := range contest.Problems {
		problem := dto.ContestProblemResponse{
			ProblemID: cp.ProblemID,
			Position:  cp.Position,
		}
		if cp.Problem != nil {
			problem.Problem = &dto.ProblemResponse{
				ID:         cp.Problem.ID,
				Title:      cp.Problem.Title,
				Statement:  cp.Problem.Statement,
				Difficulty: cp.Problem.Difficulty,
				CreatedAt:  cp.Problem.CreatedAt,
			}
		}
		resp.Problems = append(resp.Problems, problem)
	}
	return resp
}

func (h *ContestHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateContestRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	contest, err := h.contestService.Create(context.Background(), req.Title, req.Description, req.Type, req.StartsAt, req.EndsAt, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContestTitleRequired),
			errors.Is(err, services.ErrInvalidContestType),
			errors.Is(err, services.ErrInvalidContestWindow):
			c.BadRequest(err.Error())
		default:
			c.InternalServerError("failed to create contest")
		}
		return
	}

	_ = c.JSON(201, toContestResponse(contest))
}

func (h *ContestHandler) Update(c *drift.Context) {
	contestID, err := uuid.Parse(c.Param("contestId"))
	if err != nil {
		c.BadRequest("invalid contest id")
		return
	}

	var req dto.UpdateContestRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	contest, err := h.contestService.Update(context.Background(), contestID, req.Title, req.Description, req.StartsAt, req.EndsAt)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContestNotFound):
			c.NotFound("contest not found")
		case errors.Is(err, services.ErrContestTitleRequired),
			errors.Is(err, services.ErrInvalidContestWindow):
			c.BadRequest(err.Error())
		default:
			c.InternalServerError("failed to update contest")
		}
		return
	}

	_ = c.JSON(200, toContestResponse(contest))
}

func (h *ContestHandler) Delete(c *drift.Context) {
	contestID, err := uuid.Parse(c.Param("contestId"))
	if err != nil {
		c.BadRequest("invalid contest id")
		return
	}

	if err := h.contestService.Delete(context.Background(), contestID); err != nil {
		if errors.Is(err, services.ErrContestNotFound) {
			c.NotFound("contest not found")
			return
		}
		c.InternalServerError("failed to delete contest")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "contest deleted"})
}

func (h *ContestHandler) Get(c *drift.Context) {
	contestID, err := uuid.Parse(c.Param("contestId"))
	if err != nil {
		c.BadRequest("invalid contest id")
		return
	}

	contest, err := h.contestService.Get(context.Background(), contestID)
	if err != nil {
		c.NotFound("contest not found")
		return
	}

	_ = c.JSON(200, toContestResponse(contest))
}

func (h *ContestHandler) List(c *drift.Context) {
	contests, err := h.contestService.List(context.Background())
	if err != nil {
		c.InternalServerError("failed to list contests")
		return
	}

	resp := make([]dto.ContestResponse, 0, len(contests))
	for i := range contests {
		resp = append(resp, toContestResponse(&contests[i]))
	}
	_ = c.JSON(200, resp)
}

func (h *ContestHandler) AddProblem(c *drift.Context) {
	contestID, err := uuid.Parse(c.Param("contestId"))
	if err != nil {
		c.BadRequest("invalid contest id")
		return
	}

	var req dto.AddContestProblemRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.ProblemID == uuid.Nil {
		c.BadRequest("problem_id is required")
		return
	}

	if err := h.contestService.AddProblem(context.Background(), contestID, req.ProblemID, req.Position); err != nil {
		c.InternalServerError("failed to add problem")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "problem added"})
}

func (h *ContestHandler) RemoveProblem(c *drift.Context) {
	contestID, err := uuid.Parse(c.Param("contestId"))
	if err != nil {
		c.BadRequest("invalid contest id")
		return
	}
	problemID, err := uuid.Parse(c.Param("problemId"))
	if err != nil {
		c.BadRequest("invalid problem id")
		return
	}

	if err := h.contestService.RemoveProblem(context.Background(), contestID, problemID); err != nil {
		if errors.Is(err, services.ErrProblemNotFound) {
			c.NotFound("problem not attached to contest")
			return
		}
		c.InternalServerError("failed to remove problem")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "problem removed"})
}

// Enter resolves admission for the calling user.
func (h *ContestHandler) Enter(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	contestID, err := uuid.Parse(c.Param("contestId"))
	if err != nil {
		c.BadRequest("invalid contest id")
		return
	}

	admission, err := h.contestService.ResolveAdmission(context.Background(), contestID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContestNotFound):
			c.NotFound("contest not found")
		case errors.Is(err, services.ErrContestEnded):
			_ = c.JSON(410, map[string]string{"error": "contest has ended"})
		default:
			c.InternalServerError("failed to enter contest")
		}
		return
	}

	resp := dto.AdmissionResponse{
		Contest:          toContestResponse(admission.Contest),
		Registered:       admission.Registered,
		CountdownSeconds: int(h.cfg.AdmissionCountdown.Seconds()),
	}
	if admission.Team != nil {
		team := toTeamResponse(admission.Team)
		resp.Team = &team
	}

	_ = c.JSON(200, resp)
}

func (h *ContestHandler) RegisterParticipant(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.RegisterParticipantRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.ContestID == uuid.Nil {
		c.BadRequest("contest_id is required")
		return
	}

	ctx := context.Background()

	contest, err := h.contestService.Get(ctx, req.ContestID)
	if err != nil {
		c.NotFound("contest not found")
		return
	}
	if contest.HasEnded(time.Now()) {
		_ = c.JSON(410, map[string]string{"error": "contest has ended"})
		return
	}

	if err := h.contestService.RegisterParticipant(ctx, req.ContestID, userID); err != nil {
		c.InternalServerError("failed to register")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "registered"})
}

func (h *ContestHandler) ListParticipants(c *drift.Context) {
	contestID, err := uuid.Parse(c.QueryParam("contestId"))
	if err != nil {
		c.BadRequest("contestId query parameter is required")
		return
	}

	users, err := h.contestService.ListParticipants(context.Background(), contestID)
	if err != nil {
		c.InternalServerError("failed to list participants")
		return
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	_ = c.JSON(200, resp)
}
