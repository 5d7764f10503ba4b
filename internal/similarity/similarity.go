// Package similarity computes a bounded closeness measure between two
// texts, preferring a vector embedding backend and degrading to a lexical
// overlap ratio when none is available.
package similarity

import (
	"context"
	"sync"

	"gradekit/internal/domain"
	"gradekit/internal/logger"
	"gradekit/internal/textnorm"
	"gradekit/internal/util"

	"go.uber.org/zap"
)

// Mode identifies which backend produced a similarity value.
type Mode string

const (
	ModeSemantic Mode = "semantic"
	ModeLexical  Mode = "lexical"
)

// Scorer computes similarity in [0,1] between two raw texts. Empty input
// yields 0, never an error. A nil embedder selects the lexical fallback.
type Scorer struct {
	embedder     domain.EmbeddingService
	degradedOnce sync.Once
}

// NewScorer creates a Scorer. embedder may be nil.
func NewScorer(embedder domain.EmbeddingService) *Scorer {
	return &Scorer{embedder: embedder}
}

// SemanticAvailable reports whether a vector backend was configured.
func (s *Scorer) SemanticAvailable() bool {
	return s.embedder != nil
}

// Score returns the similarity of a and b in [0,1] and the mode that
// produced it. Backend failures degrade to the lexical ratio for the
// call instead of propagating; the degradation is logged once.
func (s *Scorer) Score(ctx context.Context, a, b string) (float64, Mode) {
	normA := textnorm.Normalize(a)
	normB := textnorm.Normalize(b)
	if normA == "" || normB == "" {
		return 0, ModeLexical
	}

	if s.embedder != nil {
		if sim, ok := s.semanticScore(ctx, normA, normB); ok {
			return sim, ModeSemantic
		}
	}
	return lexicalScore(normA, normB), ModeLexical
}

func (s *Scorer) semanticScore(ctx context.Context, normA, normB string) (float64, bool) {
	vecA, err := s.embedder.Generate(ctx, normA)
	if err != nil {
		s.reportDegradation(err)
		return 0, false
	}
	vecB, err := s.embedder.Generate(ctx, normB)
	if err != nil {
		s.reportDegradation(err)
		return 0, false
	}
	sim, err := util.CosineSimilarity(vecA, vecB)
	if err != nil {
		s.reportDegradation(err)
		return 0, false
	}
	// cosine is in [-1,1]; negative similarity means no similarity here
	return util.Clamp01(sim), true
}

func (s *Scorer) reportDegradation(err error) {
	s.degradedOnce.Do(func() {
		logger.Get().Warn("Similarity backend unavailable, degrading to lexical overlap",
			zap.Error(err))
	})
}

// lexicalScore is the deterministic fallback: shared normalized tokens
// over the union of tokens. When tokenization leaves nothing to compare
// (e.g. stopword-only text) it falls back to a character-bigram ratio on
// the normalized strings.
func lexicalScore(normA, normB string) float64 {
	tokensA := textnorm.TokenSet(textnorm.Tokens(normA))
	tokensB := textnorm.TokenSet(textnorm.Tokens(normB))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return bigramRatio(normA, normB)
	}

	shared := 0
	for t := range tokensA {
		if _, ok := tokensB[t]; ok {
			shared++
		}
	}
	union := len(tokensA) + len(tokensB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// bigramRatio is a Sørensen–Dice coefficient over rune bigrams.
func bigramRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	bigramsA := runeBigrams(a)
	bigramsB := runeBigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}
	shared := 0
	for bg, n := range bigramsA {
		if m, ok := bigramsB[bg]; ok {
			if m < n {
				shared += m
			} else {
				shared += n
			}
		}
	}
	totalA, totalB := 0, 0
	for _, n := range bigramsA {
		totalA += n
	}
	for _, n := range bigramsB {
		totalB += n
	}
	return 2 * float64(shared) / float64(totalA+totalB)
}

func runeBigrams(s string) map[string]int {
	runes := []rune(s)
	bigrams := make(map[string]int)
	for i := 0; i+1 < len(runes); i++ {
		bigrams[string(runes[i:i+2])]++
	}
	return bigrams
}
