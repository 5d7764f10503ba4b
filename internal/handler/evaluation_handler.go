package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"gradekit/internal/domain"
	"gradekit/internal/dto"
	"gradekit/internal/logger"
	"gradekit/internal/service"
)

// EvaluationHandler handles answer grading HTTP requests
type EvaluationHandler struct {
	service service.EvaluationService
}

// NewEvaluationHandler creates a new EvaluationHandler instance
func NewEvaluationHandler(service service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
	}
}

// EvaluateAnswer handles POST /api/questions/:number/evaluate.
// An empty answer is a valid submission and grades to the minimum score.
func (h *EvaluationHandler) EvaluateAnswer(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil {
		return domain.NewValidationError("Question number must be a positive integer")
	}

	var req dto.EvaluateAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Invalid request body")
	}

	submission := domain.NewSubmission(number, req.Answer)
	if err := submission.Validate(); err != nil {
		return err
	}

	resp, err := h.service.EvaluateAnswer(c.Context(), submission.QuestionNumber, submission.AnswerText)
	if err != nil {
		logger.Get().Error("Failed to evaluate answer",
			zap.Int("question_number", number),
			zap.Error(err),
		)
		return err
	}

	return c.JSON(resp)
}
