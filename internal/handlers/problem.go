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

type ProblemHandler struct {
	problemService ProblemServiceInterface
}

func NewProblemHandler(problemService ProblemServiceInterface) *ProblemHandler {
	return &ProblemHandler{problemService: problemService}
}

func toProblemResponse(problem *models.Problem) dto.ProblemResponse {
	return dto.ProblemResponse{
		ID:         problem.ID,
		Title:      problem.Title,
		Statement:  problem.Statement,
		Difficulty: problem.Difficulty,
		TestCases:  problem.TestCases,
		CreatedAt:  problem.CreatedAt,
	}
}

func (h *ProblemHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateProblemRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	problem, err := h.problemService.Create(context.Background(), req.Title, req.Statement, req.Difficulty, req.TestCases, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProblemTitleRequired),
			errors.Is(err, services.ErrInvalidDifficulty),
			errors.Is(err, services.ErrInvalidTestCases):
			c.BadRequest(err.Error())
		default:
			c.InternalServerError("failed to create problem")
		}
		return
	}

	_ = c.JSON(201, toProblemResponse(problem))
}

func (h *ProblemHandler) Update(c *drift.Context) {
	problemID, err := uuid.Parse(c.Param("problemId"))
	if err != nil {
		c.BadRequest("invalid problem id")
		return
	}

	var req dto.UpdateProblemRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	problem, err := h.problemService.Update(context.Background(), problemID, req.Title, req.Statement, req.Difficulty, req.TestCases)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProblemNotFound):
			c.NotFound("problem not found")
		case errors.Is(err, services.ErrProblemTitleRequired),
			errors.Is(err, services.ErrInvalidDifficulty),
			errors.Is(err, services.ErrInvalidTestCases):
			c.BadRequest(err.Error())
		default:
			c.InternalServerError("failed to update problem")
		}
		return
	}

	_ = c.JSON(200, toProblemResponse(problem))
}

func (h *ProblemHandler) Delete(c *drift.Context) {
	problemID, err := uuid.Parse(c.Param("problemId"))
	if err != nil {
		c.BadRequest("invalid problem id")
		return
	}

	if err := h.problemService.Delete(context.Background(), problemID); err != nil {
		if errors.Is(err, services.ErrProblemNotFound) {
			c.NotFound("problem not found")
			return
		}
		c.InternalServerError("failed to delete problem")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "problem deleted"})
}

// Get returns a problem with hidden test cases stripped for non-admins.
func (h *ProblemHandler) Get(c *drift.Context) {
	problemID, err := uuid.Parse(c.Param("problemId"))
	if err != nil {
		c.BadRequest("invalid problem id")
		return
	}

	problem, err := h.problemService.Get(context.Background(), problemID)
	if err != nil {
		c.NotFound("problem not found")
		return
	}

	resp := toProblemResponse(problem)
	if middleware.GetUserRole(c) != models.GlobalRoleAdmin {
		visible, err := services.VisibleTestCases(problem.TestCases)
		if err != nil {
			c.InternalServerError("failed to load problem")
			return
		}
		resp.TestCases = visible
	}

	_ = c.JSON(200, resp)
}

func (h *ProblemHandler) List(c *drift.Context) {
	problems, err := h.problemService.List(context.Background())
	if err != nil {
		c.InternalServerError("failed to list problems")
		return
	}

	resp := make([]dto.ProblemResponse, 0, len(problems))
	for i := range problems {
		p := toProblemResponse(&problems[i])
		p.TestCases = nil
		resp = append(resp, p)
	}
	_ = c.JSON(200, resp)
}
