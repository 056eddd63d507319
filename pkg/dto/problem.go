package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateProblemRequest struct {
	Title      string          `json:"title"`
	Statement  string          `json:"statement"`
	Difficulty string          `json:"difficulty"`
	TestCases  json.RawMessage `json:"test_cases,omitempty"`
}

type UpdateProblemRequest struct {
	Title      string          `json:"title"`
	Statement  string          `json:"statement"`
	Difficulty string          `json:"difficulty"`
	TestCases  json.RawMessage `json:"test_cases,omitempty"`
}

type ProblemResponse struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Statement  string          `json:"statement"`
	Difficulty string          `json:"difficulty"`
	TestCases  json.RawMessage `json:"test_cases,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
