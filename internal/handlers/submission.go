package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mveljko/codeclash-api/internal/middleware"
	"github.com/mveljko/codeclash-api/internal/models"
	"github.com/mveljko/codeclash-api/internal/services"
	"github.com/mveljko/codeclash-api/pkg/dto"
)

type SubmissionHandler struct {
	submissionService  SubmissionServiceInterface
	leaderboardService LeaderboardServiceInterface
	hub                HubInterface
}

func NewSubmissionHandler(
	submissionService SubmissionServiceInterface,
	leaderboardService LeaderboardServiceInterface,
	hub HubInterface,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService:  submissionService,
		leaderboardService: leaderboardService,
		hub:                hub,
	}
}

func toSubmissionResponse(sub *models.Submission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:        sub.ID,
		ContestID: sub.ContestID,
		ProblemID: sub.ProblemID,
		UserID:    sub.UserID,
		TeamID:    sub.TeamID,
		Language:  sub.Language,
		Status:    sub.Status,
		Score:     sub.Score,
		Verdict:   sub.Verdict,
		CreatedAt: sub.CreatedAt,
	}
}

func (h *SubmissionHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateSubmissionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.ProblemID == uuid.Nil {
		c.BadRequest("problem_id is required")
		return
	}

	submission, err := h.submissionService.Create(context.Background(), userID, req.ProblemID, req.ContestID, req.Language, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLanguageRequired),
			errors.Is(err, services.ErrCodeRequired):
			c.BadRequest(err.Error())
		case errors.Is(err, services.ErrProblemNotFound):
			c.NotFound("problem not found")
		case errors.Is(err, services.ErrContestNotFound):
			c.NotFound("contest not found")
		case errors.Is(err, services.ErrContestEnded):
			_ = c.JSON(410, map[string]string{"error": "contest has ended"})
		case errors.Is(err, services.ErrNotAMember):
			c.Forbidden("you are not on a team in this contest")
		default:
			c.InternalServerError("failed to create submission")
		}
		return
	}

	_ = c.JSON(201, toSubmissionResponse(submission))
}

func (h *SubmissionHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	submissionID, err := uuid.Parse(c.Param("submissionId"))
	if err != nil {
		c.BadRequest("invalid submission id")
		return
	}

	submission, err := h.submissionService.Get(context.Background(), submissionID)
	if err != nil {
		c.NotFound("submission not found")
		return
	}

	if submission.UserID != userID && middleware.GetUserRole(c) != models.GlobalRoleAdmin {
		c.Forbidden("you can only view your own submissions")
		return
	}

	_ = c.JSON(200, toSubmissionResponse(submission))
}

func (h *SubmissionHandler) ListMine(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	submissions, err := h.submissionService.ListByUser(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to list submissions")
		return
	}

	resp := make([]dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		resp = append(resp, toSubmissionResponse(&submissions[i]))
	}
	_ = c.JSON(200, resp)
}

func (h *SubmissionHandler) ListByContest(c *drift.Context) {
	contestID, err := uuid.Parse(c.QueryParam("contestId"))
	if err != nil {
		c.BadRequest("contestId query parameter is required")
		return
	}

	submissions, err := h.submissionService.ListByContest(context.Background(), contestID)
	if err != nil {
		c.InternalServerError("failed to list submissions")
		return
	}

	resp := make([]dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		resp = append(resp, toSubmissionResponse(&submissions[i]))
	}
	_ = c.JSON(200, resp)
}

// RecordResult is the judge's callback. It is authenticated with an api key,
// not a user token, and replays are harmless: a final submission is returned
// as-is without being rewritten.
func (h *SubmissionHandler) RecordResult(c *drift.Context) {
	var req dto.JudgeResultRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.SubmissionID == uuid.Nil {
		c.BadRequest("submission_id is required")
		return
	}

	ctx := context.Background()

	submission, err := h.submissionService.RecordResult(ctx, req.SubmissionID, req.Status, req.Score, req.Verdict)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.BadRequest("invalid status")
		case errors.Is(err, services.ErrSubmissionNotFound):
			c.NotFound("submission not found")
		default:
			c.InternalServerError("failed to record result")
		}
		return
	}

	if submission.IsFinal() {
		if submission.ContestID != nil {
			// A failed leaderboard write must not swallow the lobby event.
			_ = h.leaderboardService.Record(ctx, *submission.ContestID, submission.UserID)
		}
		if submission.TeamID != nil {
			h.hub.BroadcastSubmissionJudged(*submission.TeamID, submission.ID, submission.UserID, submission.Status, submission.Score)
		}
	}

	_ = c.JSON(200, toSubmissionResponse(submission))
}
