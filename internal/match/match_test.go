package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"gradekit/internal/domain"
	"gradekit/internal/similarity"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Generate(_ context.Context, text string) ([]float32, error) {
	vec, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector for: " + text)
	}
	return vec, nil
}

func lexicalMatcher() *Matcher {
	return NewMatcher(similarity.NewScorer(nil), DefaultThresholds())
}

func TestMatchRequiredExactTier(t *testing.T) {
	m := lexicalMatcher()
	answer := "La Monarchie fut abolie en 1792."

	matches := m.MatchRequired(context.Background(), answer, []string{"monarchie", "abolie en 1792"})
	assert.Len(t, matches, 2)
	for _, match := range matches {
		assert.True(t, match.Matched)
		assert.Equal(t, domain.TierExact, match.Tier)
	}
}

func TestMatchRequiredTokenOverlapTier(t *testing.T) {
	m := lexicalMatcher()
	// same content words as the point, different order and fillers:
	// not a substring, but full token overlap
	answer := "la monarchie absolue fut abolie par le peuple"

	matches := m.MatchRequired(context.Background(), answer, []string{"abolie monarchie"})
	assert.Len(t, matches, 1)
	assert.True(t, matches[0].Matched)
	assert.Equal(t, domain.TierTokenOverlap, matches[0].Tier)
}

func TestMatchRequiredMissWithoutSemanticBackend(t *testing.T) {
	m := lexicalMatcher()

	matches := m.MatchRequired(context.Background(), "réponse sans rapport", []string{"chute du roi"})
	assert.Len(t, matches, 1)
	assert.False(t, matches[0].Matched)
	assert.Equal(t, domain.TierNone, matches[0].Tier)
}

func TestMatchRequiredSemanticTier(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"chute du roi":             {1, 0},
		"souverain perd sa couronne": {1, 0},
	}}
	m := NewMatcher(similarity.NewScorer(embedder), DefaultThresholds())

	// no shared tokens, so only the semantic tier can find it
	matches := m.MatchRequired(context.Background(), "Souverain perd sa couronne.", []string{"chute du roi"})
	assert.Len(t, matches, 1)
	assert.True(t, matches[0].Matched)
	assert.Equal(t, domain.TierSemantic, matches[0].Tier)
}

func TestMatchRequiredEmptyPointList(t *testing.T) {
	m := lexicalMatcher()
	matches := m.MatchRequired(context.Background(), "une réponse", nil)
	assert.Empty(t, matches)
}

func TestMatchRequiredEmptyPhraseIsVacuouslyPresent(t *testing.T) {
	m := lexicalMatcher()
	matches := m.MatchRequired(context.Background(), "une réponse", []string{"   "})
	assert.Len(t, matches, 1)
	assert.True(t, matches[0].Matched)
	assert.Equal(t, domain.TierExact, matches[0].Tier)
}

func TestDetectForbiddenExact(t *testing.T) {
	m := lexicalMatcher()

	hits := m.DetectForbidden(context.Background(), "C'était l'œuvre de Napoléon.", []string{"napoleon", "guillotine"})
	assert.Len(t, hits, 1)
	assert.Equal(t, "napoleon", hits[0].Concept)
	assert.Equal(t, domain.TierExact, hits[0].Tier)
}

func TestDetectForbiddenUsesStricterSemanticCutoff(t *testing.T) {
	// cosine between (1,0) and (0.8,0.6) is exactly 0.8: above the
	// required-point cutoff but below the forbidden one
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"empereur des francais": {1, 0},
		"reponse ambigue":       {0.8, 0.6},
	}}
	m := NewMatcher(similarity.NewScorer(embedder), DefaultThresholds())

	matches := m.MatchRequired(context.Background(), "réponse ambiguë", []string{"empereur des français"})
	assert.True(t, matches[0].Matched)
	assert.Equal(t, domain.TierSemantic, matches[0].Tier)

	hits := m.DetectForbidden(context.Background(), "réponse ambiguë", []string{"empereur des français"})
	assert.Empty(t, hits)
}

func TestDetectForbiddenNothingTriggered(t *testing.T) {
	m := lexicalMatcher()
	hits := m.DetectForbidden(context.Background(), "une réponse neutre", []string{"napoleon"})
	assert.Empty(t, hits)
}

func TestNewMatcherFillsZeroThresholds(t *testing.T) {
	m := NewMatcher(similarity.NewScorer(nil), Thresholds{})
	assert.Equal(t, DefaultThresholds(), m.thresholds)
}
