package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"gradekit/internal/domain"
	"gradekit/internal/dto"
	"gradekit/internal/logger"
)

// EvaluationService grades submitted answers. The grading strategy is fixed
// at construction: when a remote evaluator is configured it is preferred,
// with the local engine as a per-call fallback; otherwise every submission
// is graded locally.
type EvaluationService interface {
	EvaluateAnswer(ctx context.Context, questionNumber int, answerText string) (*dto.EvaluationResponse, error)
	Strategy() domain.Strategy
}

type evaluationService struct {
	repo        domain.QuestionRepository
	remote      domain.Evaluator
	local       domain.Evaluator
	embedder    domain.EmbeddingService
	answerCache AnswerCacheService
}

// NewEvaluationService wires the facade. remote may be nil (local-only mode).
// embedder and answerCache may be nil; they only enable result reuse for
// similar answers and are never required for grading.
func NewEvaluationService(
	repo domain.QuestionRepository,
	remote domain.Evaluator,
	local domain.Evaluator,
	embedder domain.EmbeddingService,
	answerCache AnswerCacheService,
) EvaluationService {
	return &evaluationService{
		repo:        repo,
		remote:      remote,
		local:       local,
		embedder:    embedder,
		answerCache: answerCache,
	}
}

// Strategy reports which grading strategy the facade prefers.
func (s *evaluationService) Strategy() domain.Strategy {
	if s.remote != nil {
		return domain.StrategyRemote
	}
	return domain.StrategyLocal
}

// EvaluateAnswer loads the question, checks the answer cache, grades the
// submission, and caches the verdict. Two calls with the same question and
// answer under the local strategy produce identical results.
func (s *evaluationService) EvaluateAnswer(ctx context.Context, questionNumber int, answerText string) (*dto.EvaluationResponse, error) {
	question, err := s.repo.GetQuestionByNumber(ctx, questionNumber)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load question", err)
	}
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(questionNumber)
	}

	embedding := s.answerEmbedding(ctx, answerText)
	if cached := s.lookupCached(ctx, questionNumber, embedding); cached != nil {
		return cached, nil
	}

	result, err := s.grade(ctx, question, answerText)
	if err != nil {
		return nil, err
	}

	response := dto.FromDomainResult(result)
	s.storeCached(ctx, questionNumber, answerText, embedding, response)
	return response, nil
}

// grade runs the configured strategy. Remote failures degrade to the local
// engine and the degradation is disclosed in the rationale; errors that mean
// the question itself cannot be graded are returned as-is.
func (s *evaluationService) grade(ctx context.Context, question *domain.Question, answerText string) (*domain.EvaluationResult, error) {
	if s.remote == nil {
		return s.local.Evaluate(ctx, question, answerText)
	}

	result, err := s.remote.Evaluate(ctx, question, answerText)
	if err == nil {
		return result, nil
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == domain.ErrInvalidQuestion {
		return nil, err
	}

	logger.Get().Warn("Remote evaluation failed, falling back to local engine",
		zap.Int("question_number", question.Number), zap.Error(err))

	result, err = s.local.Evaluate(ctx, question, answerText)
	if err != nil {
		return nil, err
	}
	result.Rationale = "Remote grading was unavailable; the local engine produced this verdict. " + result.Rationale
	return result, nil
}

// answerEmbedding returns the submission's embedding when caching is wired,
// or nil. Blank answers grade to zero without consulting the cache, so they
// never spend an embedding call. Embedding failures are logged and treated
// as "no cache".
func (s *evaluationService) answerEmbedding(ctx context.Context, answerText string) []float32 {
	if s.embedder == nil || s.answerCache == nil || strings.TrimSpace(answerText) == "" {
		return nil
	}
	embedding, err := s.embedder.Generate(ctx, answerText)
	if err != nil {
		logger.Get().Warn("Failed to embed answer for caching", zap.Error(err))
		return nil
	}
	return embedding
}

func (s *evaluationService) lookupCached(ctx context.Context, questionNumber int, embedding []float32) *dto.EvaluationResponse {
	if s.answerCache == nil || len(embedding) == 0 {
		return nil
	}
	raw, err := s.answerCache.GetSimilar(ctx, questionNumber, embedding)
	if err != nil {
		logger.Get().Warn("Answer cache lookup failed", zap.Error(err))
		return nil
	}
	if raw == nil {
		return nil
	}
	var response dto.EvaluationResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		logger.Get().Warn("Failed to decode cached evaluation", zap.Error(err))
		return nil
	}
	return &response
}

func (s *evaluationService) storeCached(ctx context.Context, questionNumber int, answerText string, embedding []float32, response *dto.EvaluationResponse) {
	if s.answerCache == nil || len(embedding) == 0 {
		return
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.answerCache.Put(ctx, questionNumber, answerText, embedding, raw); err != nil {
		logger.Get().Warn("Failed to cache evaluation result", zap.Error(err))
	}
}
