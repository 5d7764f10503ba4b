package service

import (
	"context"

	"gradekit/internal/domain"
	"gradekit/internal/dto"
	"gradekit/internal/util"
)

// QuestionService defines the authoring operations.
type QuestionService interface {
	CreateQuestion(ctx context.Context, req *dto.CreateQuestionRequest) (*dto.QuestionResponse, error)
	ListQuestions(ctx context.Context) (*dto.QuestionListResponse, error)
	GetQuestion(ctx context.Context, number int) (*dto.QuestionResponse, error)
}

type questionService struct {
	repo domain.QuestionRepository
}

// NewQuestionService creates a new instance of questionService.
func NewQuestionService(repo domain.QuestionRepository) QuestionService {
	return &questionService{repo: repo}
}

// CreateQuestion validates and persists an authored question. A zero
// number requests the next free one; re-using an existing number replaces
// that question (re-save is the only editing mechanism).
func (s *questionService) CreateQuestion(ctx context.Context, req *dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	number := req.Number
	if number == 0 {
		next, err := s.repo.NextQuestionNumber(ctx)
		if err != nil {
			return nil, domain.NewInternalError("Failed to allocate question number", err)
		}
		number = next
	}

	question := domain.NewQuestion(number, req.Title, req.Prompt, req.ModelAnswer,
		req.RequiredPoints, req.ForbiddenConcepts)
	question.Attachments = req.Attachments
	if err := question.Validate(); err != nil {
		return nil, err
	}
	question.ID = util.NewULID()

	if err := s.repo.SaveQuestion(ctx, question); err != nil {
		return nil, domain.NewInternalError("Failed to save question", err)
	}
	return toQuestionResponse(question), nil
}

// ListQuestions returns all authored questions ordered by number.
func (s *questionService) ListQuestions(ctx context.Context) (*dto.QuestionListResponse, error) {
	questions, err := s.repo.ListQuestions(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list questions", err)
	}

	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, *toQuestionResponse(q))
	}
	return &dto.QuestionListResponse{Questions: responses}, nil
}

// GetQuestion returns one question by number.
func (s *questionService) GetQuestion(ctx context.Context, number int) (*dto.QuestionResponse, error) {
	question, err := s.repo.GetQuestionByNumber(ctx, number)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(number)
	}
	return toQuestionResponse(question), nil
}

func toQuestionResponse(q *domain.Question) *dto.QuestionResponse {
	return &dto.QuestionResponse{
		ID:                q.ID,
		Number:            q.Number,
		Title:             q.Title,
		Prompt:            q.Prompt,
		ModelAnswer:       q.ModelAnswer,
		RequiredPoints:    q.RequiredPoints,
		ForbiddenConcepts: q.ForbiddenConcepts,
		Attachments:       q.Attachments,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
	}
}
