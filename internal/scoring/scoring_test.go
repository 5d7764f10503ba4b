package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gradekit/internal/domain"
	"gradekit/internal/similarity"
)

func exact(point string) domain.PointMatch {
	return domain.PointMatch{Point: point, Matched: true, Tier: domain.TierExact}
}

func paraphrase(point string) domain.PointMatch {
	return domain.PointMatch{Point: point, Matched: true, Tier: domain.TierTokenOverlap}
}

func missed(point string) domain.PointMatch {
	return domain.PointMatch{Point: point, Matched: false, Tier: domain.TierNone}
}

func TestAggregatePerfectAnswer(t *testing.T) {
	matches := []domain.PointMatch{exact("a"), exact("b")}

	result := Aggregate(1.0, similarity.ModeLexical, matches, nil, DefaultWeights())

	assert.InDelta(t, 1.0, result.Score, 1e-9)
	assert.True(t, result.IsCorrect)
	assert.Len(t, result.MatchedPoints, 2)
	assert.Empty(t, result.MissedPoints)
	assert.Equal(t, []string{"All key points are covered."}, result.Suggestions)
}

func TestAggregatePartialCredit(t *testing.T) {
	matches := []domain.PointMatch{exact("a"), paraphrase("b")}

	result := Aggregate(0.5, similarity.ModeLexical, matches, nil, DefaultWeights())

	// coverage (1 + 0.5) / 2 = 0.75; score 0.4*0.5 + 0.6*0.75 = 0.65
	assert.InDelta(t, 0.65, result.Score, 1e-9)
	assert.True(t, result.IsCorrect)
}

func TestAggregateMissedPointBlocksCorrectness(t *testing.T) {
	matches := []domain.PointMatch{exact("a"), missed("b")}

	result := Aggregate(1.0, similarity.ModeLexical, matches, nil, DefaultWeights())

	// 0.4*1 + 0.6*0.5 = 0.7, above the pass bar, but a point is missing
	assert.InDelta(t, 0.7, result.Score, 1e-9)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, []string{"b"}, result.MissedPoints)
	assert.Contains(t, result.Suggestions[0], "Consider mentioning: b")
}

func TestAggregateForbiddenPenalty(t *testing.T) {
	matches := []domain.PointMatch{exact("a")}
	hits := []domain.ConceptHit{
		{Concept: "x", Tier: domain.TierExact},
		{Concept: "y", Tier: domain.TierExact},
	}

	result := Aggregate(1.0, similarity.ModeLexical, matches, hits, DefaultWeights())

	// 0.4 + 0.6 - 2*0.10 = 0.8, but triggered concepts block correctness
	assert.InDelta(t, 0.8, result.Score, 1e-9)
	assert.False(t, result.IsCorrect)
	assert.Contains(t, result.Suggestions, "Avoid mentioning: x, y")
}

func TestAggregateScoreNeverNegative(t *testing.T) {
	matches := []domain.PointMatch{missed("a"), missed("b")}
	hits := []domain.ConceptHit{
		{Concept: "x", Tier: domain.TierExact},
		{Concept: "y", Tier: domain.TierExact},
		{Concept: "z", Tier: domain.TierExact},
	}

	result := Aggregate(0, similarity.ModeLexical, matches, hits, DefaultWeights())
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.IsCorrect)
}

func TestAggregateVacuousCoverage(t *testing.T) {
	// zero required points: coverage is vacuously full
	result := Aggregate(0.9, similarity.ModeLexical, nil, nil, DefaultWeights())

	assert.InDelta(t, 0.96, result.Score, 1e-9)
	assert.True(t, result.IsCorrect)
	assert.InDelta(t, 1.0, result.CoverageRatio(), 1e-9)
}

func TestAggregateClampsSimilarity(t *testing.T) {
	result := Aggregate(1.7, similarity.ModeSemantic, nil, nil, DefaultWeights())
	assert.InDelta(t, 1.0, result.Similarity, 1e-9)
	assert.LessOrEqual(t, result.Score, 1.0)
}

func TestAggregateDeterministic(t *testing.T) {
	matches := []domain.PointMatch{exact("a"), paraphrase("b"), missed("c")}
	hits := []domain.ConceptHit{{Concept: "x", Tier: domain.TierTokenOverlap}}

	first := Aggregate(0.42, similarity.ModeLexical, matches, hits, DefaultWeights())
	second := Aggregate(0.42, similarity.ModeLexical, matches, hits, DefaultWeights())

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Rationale)
}

func TestAggregateRationaleMentionsComponents(t *testing.T) {
	matches := []domain.PointMatch{exact("la bastille"), missed("droits de l'homme")}
	hits := []domain.ConceptHit{{Concept: "napoleon", Tier: domain.TierExact}}

	result := Aggregate(0.5, similarity.ModeLexical, matches, hits, DefaultWeights())

	assert.Contains(t, result.Rationale, "Similarity to model answer: 0.50 (lexical)")
	assert.Contains(t, result.Rationale, "Required points matched: 1/2")
	assert.Contains(t, result.Rationale, "+ la bastille (exact)")
	assert.Contains(t, result.Rationale, "- droits de l'homme (missing)")
	assert.Contains(t, result.Rationale, "! napoleon (exact)")
	assert.Contains(t, result.Rationale, "Final score:")
}

func TestNormalizedFillsZeroFields(t *testing.T) {
	w := Weights{Similarity: 0.3}.Normalized()
	d := DefaultWeights()
	assert.Equal(t, 0.3, w.Similarity)
	assert.Equal(t, d.Coverage, w.Coverage)
	assert.Equal(t, d.PartialCredit, w.PartialCredit)
	assert.Equal(t, d.PenaltyPerConcept, w.PenaltyPerConcept)
	assert.Equal(t, d.PassThreshold, w.PassThreshold)
}
