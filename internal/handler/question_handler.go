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

// QuestionHandler handles question authoring HTTP requests
type QuestionHandler struct {
	service service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler instance
func NewQuestionHandler(service service.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		service: service,
	}
}

// CreateQuestion handles POST /api/questions
func (h *QuestionHandler) CreateQuestion(c *fiber.Ctx) error {
	var req dto.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Invalid request body")
	}
	if req.Number < 0 {
		return domain.NewValidationError("Question number must not be negative")
	}

	resp, err := h.service.CreateQuestion(c.Context(), &req)
	if err != nil {
		logger.Get().Error("Failed to create question",
			zap.Int("number", req.Number),
			zap.Error(err),
		)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListQuestions handles GET /api/questions
func (h *QuestionHandler) ListQuestions(c *fiber.Ctx) error {
	resp, err := h.service.ListQuestions(c.Context())
	if err != nil {
		logger.Get().Error("Failed to list questions", zap.Error(err))
		return err
	}
	return c.JSON(resp)
}

// GetQuestion handles GET /api/questions/:number
func (h *QuestionHandler) GetQuestion(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number <= 0 {
		return domain.NewValidationError("Question number must be a positive integer")
	}

	resp, err := h.service.GetQuestion(c.Context(), number)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
