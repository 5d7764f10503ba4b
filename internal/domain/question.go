package domain

import (
	"time"
)

// Question is an authored exam question with its grading policy.
// It is immutable once authored; re-saving the same number replaces it.
type Question struct {
	ID                string
	Number            int
	Title             string
	Prompt            string
	ModelAnswer       string
	RequiredPoints    []string // phrases the grading policy expects to see
	ForbiddenConcepts []string // phrases that indicate a misconception
	Attachments       []string // opaque references, handled outside the core
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewQuestion creates a new Question instance.
func NewQuestion(number int, title, prompt, modelAnswer string, requiredPoints, forbiddenConcepts []string) *Question {
	now := time.Now()
	return &Question{
		Number:            number,
		Title:             title,
		Prompt:            prompt,
		ModelAnswer:       modelAnswer,
		RequiredPoints:    requiredPoints,
		ForbiddenConcepts: forbiddenConcepts,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Validate validates the question. A question with an empty model answer
// cannot be graded and is rejected here rather than silently scored
// against empty text.
func (q *Question) Validate() error {
	if q.Number <= 0 {
		return NewValidationError("question number must be positive")
	}
	if q.Title == "" {
		return NewValidationError("title is required")
	}
	if q.Prompt == "" {
		return NewValidationError("prompt is required")
	}
	if q.ModelAnswer == "" {
		return NewValidationError("model answer is required")
	}
	return nil
}

// Submission is a respondent's free-text answer to a question. It is
// ephemeral: created per evaluation request and never persisted by the core.
type Submission struct {
	QuestionNumber int
	AnswerText     string
}

// NewSubmission creates a new Submission instance.
func NewSubmission(questionNumber int, answerText string) *Submission {
	return &Submission{
		QuestionNumber: questionNumber,
		AnswerText:     answerText,
	}
}

// Validate validates the submission. An empty answer is deliberately NOT
// rejected here: it must yield a deterministic zero score, not an error.
func (s *Submission) Validate() error {
	if s.QuestionNumber <= 0 {
		return NewValidationError("question number is required")
	}
	return nil
}
