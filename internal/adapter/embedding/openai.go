package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gradekit/internal/cache"
	"gradekit/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/singleflight"
)

const embeddingCacheTTL = 7 * 24 * time.Hour

// OpenAIEmbeddingService implements domain.EmbeddingService using the
// OpenAI embeddings API. Generated vectors are cached by text hash so
// repeated evaluations of similar answers do not re-bill; concurrent
// requests for the same text are collapsed with singleflight.
type OpenAIEmbeddingService struct {
	embedder embeddings.Embedder
	cache    domain.Cache // optional; nil disables the vector cache
	sfGroup  singleflight.Group
}

// NewOpenAIEmbeddingService creates a new OpenAIEmbeddingService.
// cacheClient may be nil.
func NewOpenAIEmbeddingService(apiKey, modelName string, cacheClient domain.Cache) (*OpenAIEmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = "text-embedding-3-small"
	}

	llm, err := openaiLLM.New(
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client for embedder: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder from OpenAI client: %w", err)
	}

	return &OpenAIEmbeddingService{embedder: embedder, cache: cacheClient}, nil
}

// Generate creates an embedding for the given text.
func (s *OpenAIEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	cacheKey := cache.GenerateCacheKey("embedding", "openai", hashString(text))
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var vec []float32
			if err := json.Unmarshal([]byte(cached), &vec); err == nil && len(vec) > 0 {
				return vec, nil
			}
		}
	}

	result, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		embedding, err := s.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding using OpenAI: %w", err)
		}
		vec := make([]float32, len(embedding))
		for i, v := range embedding {
			vec[i] = float32(v)
		}
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	vec := result.([]float32)

	if s.cache != nil {
		if encoded, err := json.Marshal(vec); err == nil {
			// best effort; a failed cache write never fails the evaluation
			_ = s.cache.Set(ctx, cacheKey, string(encoded), embeddingCacheTTL)
		}
	}
	return vec, nil
}

var _ domain.EmbeddingService = (*OpenAIEmbeddingService)(nil)

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
