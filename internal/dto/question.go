package dto

import "time"

// CreateQuestionRequest is the authoring payload. Number 0 means
// "assign the next free number".
type CreateQuestionRequest struct {
	Number            int      `json:"number"`
	Title             string   `json:"title"`
	Prompt            string   `json:"prompt"`
	ModelAnswer       string   `json:"model_answer"`
	RequiredPoints    []string `json:"required_points"`
	ForbiddenConcepts []string `json:"forbidden_concepts"`
	Attachments       []string `json:"attachments,omitempty"`
}

// QuestionResponse represents a question in the API response. The model
// answer and grading lists are included: the authoring surface owns the
// record and the transparency requirement makes the policy inspectable.
type QuestionResponse struct {
	ID                string    `json:"id"`
	Number            int       `json:"number"`
	Title             string    `json:"title"`
	Prompt            string    `json:"prompt"`
	ModelAnswer       string    `json:"model_answer"`
	RequiredPoints    []string  `json:"required_points"`
	ForbiddenConcepts []string  `json:"forbidden_concepts"`
	Attachments       []string  `json:"attachments,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// QuestionListResponse wraps the ordered question list.
type QuestionListResponse struct {
	Questions []QuestionResponse `json:"questions"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
