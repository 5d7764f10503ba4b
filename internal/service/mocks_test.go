package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"gradekit/internal/domain"
)

// MockQuestionRepository is a mock implementation of domain.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) SaveQuestion(ctx context.Context, question *domain.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetQuestionByNumber(ctx context.Context, number int) (*domain.Question, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListQuestions(ctx context.Context) ([]*domain.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) NextQuestionNumber(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockEvaluator is a mock implementation of domain.Evaluator
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, question *domain.Question, answerText string) (*domain.EvaluationResult, error) {
	args := m.Called(ctx, question, answerText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationResult), args.Error(1)
}

// MockEmbeddingService is a mock implementation of domain.EmbeddingService
type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockAnswerCacheService is a mock implementation of AnswerCacheService
type MockAnswerCacheService struct {
	mock.Mock
}

func (m *MockAnswerCacheService) GetSimilar(ctx context.Context, questionNumber int, embedding []float32) (json.RawMessage, error) {
	args := m.Called(ctx, questionNumber, embedding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockAnswerCacheService) Put(ctx context.Context, questionNumber int, answerText string, embedding []float32, result json.RawMessage) error {
	args := m.Called(ctx, questionNumber, answerText, embedding, result)
	return args.Error(0)
}

// fakeCache is an in-memory domain.Cache for answer cache tests.
type fakeCache struct {
	values map[string]string
	hashes map[string]map[string]string
	ttls   map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values: make(map[string]string),
		hashes: make(map[string]map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	val, ok := f.values[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return val, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.values, key)
	delete(f.hashes, key)
	return nil
}

func (f *fakeCache) Ping(_ context.Context) error { return nil }

func (f *fakeCache) HGetAll(_ context.Context, key string) (map[string]string, error) {
	entries, ok := f.hashes[key]
	if !ok {
		return map[string]string{}, nil
	}
	return entries, nil
}

func (f *fakeCache) HSet(_ context.Context, key string, field string, value string) error {
	if f.hashes[key] == nil {
		f.hashes[key] = make(map[string]string)
	}
	f.hashes[key][field] = value
	return nil
}

func (f *fakeCache) Expire(_ context.Context, key string, expiration time.Duration) error {
	f.ttls[key] = expiration
	return nil
}
