package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Problem struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Statement  string          `json:"statement"`
	Difficulty string          `json:"difficulty"`
	TestCases  json.RawMessage `json:"test_cases,omitempty"`
	CreatedBy  *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TestCase is the shape stored in the problems.test_cases JSONB column and
// shipped to the judge. Hidden cases are stripped before a problem is
// returned to non-admin callers.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Hidden   bool   `json:"hidden,omitempty"`
}
