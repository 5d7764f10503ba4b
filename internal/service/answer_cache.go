package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"gradekit/internal/cache"
	"gradekit/internal/domain"
	"gradekit/internal/logger"
	"gradekit/internal/util"
)

const answerCacheTTL = 24 * time.Hour

// CachedEvaluation is the stored form of a graded answer: the response we
// returned, the answer's embedding for similarity lookup, and the raw text.
type CachedEvaluation struct {
	Result     json.RawMessage `json:"result"`
	Embedding  []float32       `json:"embedding"`
	AnswerText string          `json:"answer_text"`
}

// AnswerCacheService caches evaluation results keyed by question and looked
// up by embedding similarity, so paraphrases of an already graded answer
// reuse the stored verdict instead of a fresh evaluation.
type AnswerCacheService interface {
	GetSimilar(ctx context.Context, questionNumber int, embedding []float32) (json.RawMessage, error)
	Put(ctx context.Context, questionNumber int, answerText string, embedding []float32, result json.RawMessage) error
}

type answerCacheService struct {
	cache     domain.Cache
	threshold float64
}

// NewAnswerCacheService creates a cache service. threshold is the minimum
// cosine similarity between embeddings for a stored answer to count as a hit.
func NewAnswerCacheService(c domain.Cache, threshold float64) AnswerCacheService {
	return &answerCacheService{cache: c, threshold: threshold}
}

func answerCacheKey(questionNumber int) string {
	return cache.GenerateCacheKey("evaluation", "answers", strconv.Itoa(questionNumber))
}

// GetSimilar scans the cached answers of a question and returns the stored
// result of the first one whose embedding is close enough. A miss returns
// (nil, nil).
func (s *answerCacheService) GetSimilar(ctx context.Context, questionNumber int, embedding []float32) (json.RawMessage, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	entries, err := s.cache.HGetAll(ctx, answerCacheKey(questionNumber))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}

	log := logger.Get()
	for field, raw := range entries {
		var cached CachedEvaluation
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			log.Warn("Skipping malformed answer cache entry",
				zap.Int("question_number", questionNumber), zap.String("field", field))
			continue
		}
		similarity, err := util.CosineSimilarity(embedding, cached.Embedding)
		if err != nil {
			continue
		}
		if similarity >= s.threshold {
			log.Debug("Answer cache hit",
				zap.Int("question_number", questionNumber),
				zap.Float64("similarity", similarity))
			return cached.Result, nil
		}
	}
	return nil, nil
}

// Put stores a graded answer under its question. The field name is a hash of
// the answer text so identical submissions overwrite rather than accumulate.
func (s *answerCacheService) Put(ctx context.Context, questionNumber int, answerText string, embedding []float32, result json.RawMessage) error {
	if len(embedding) == 0 {
		return nil
	}

	cached := CachedEvaluation{
		Result:     result,
		Embedding:  embedding,
		AnswerText: answerText,
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}

	key := answerCacheKey(questionNumber)
	if err := s.cache.HSet(ctx, key, hashAnswer(answerText), string(data)); err != nil {
		return err
	}
	return s.cache.Expire(ctx, key, answerCacheTTL)
}

func hashAnswer(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
