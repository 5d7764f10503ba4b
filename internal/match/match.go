// Package match implements the three-tier presence cascade used for
// required key points and forbidden concepts: exact substring, then
// token-set overlap, then semantic proximity. Tiers are ordered pure
// predicates evaluated short-circuit so each is independently testable.
package match

import (
	"context"
	"strings"

	"gradekit/internal/domain"
	"gradekit/internal/similarity"
	"gradekit/internal/textnorm"
)

// Thresholds are the tunable cutoffs of the cascade.
type Thresholds struct {
	// TokenOverlapMin is the minimum fraction of a phrase's tokens that
	// must appear among the answer's tokens for a tier-2 match.
	TokenOverlapMin float64
	// SemanticMin is the minimum similarity between a required point and
	// any sentence of the answer for a tier-3 match.
	SemanticMin float64
	// ForbiddenSemanticMin is the stricter tier-3 cutoff for forbidden
	// concepts. Detection biases toward precision: sharing vocabulary
	// with a misconception is not asserting it.
	ForbiddenSemanticMin float64
}

// DefaultThresholds returns the documented default cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TokenOverlapMin:      0.7,
		SemanticMin:          0.75,
		ForbiddenSemanticMin: 0.85,
	}
}

// Matcher runs the cascade against one answer at a time.
type Matcher struct {
	scorer     *similarity.Scorer
	thresholds Thresholds
}

// NewMatcher creates a Matcher. Zero-valued threshold fields fall back to
// the defaults.
func NewMatcher(scorer *similarity.Scorer, thresholds Thresholds) *Matcher {
	defaults := DefaultThresholds()
	if thresholds.TokenOverlapMin <= 0 {
		thresholds.TokenOverlapMin = defaults.TokenOverlapMin
	}
	if thresholds.SemanticMin <= 0 {
		thresholds.SemanticMin = defaults.SemanticMin
	}
	if thresholds.ForbiddenSemanticMin <= 0 {
		thresholds.ForbiddenSemanticMin = defaults.ForbiddenSemanticMin
	}
	return &Matcher{scorer: scorer, thresholds: thresholds}
}

// answerView is the answer preprocessed once for the whole cascade.
type answerView struct {
	raw       string
	norm      string
	tokens    map[string]struct{}
	sentences []string
}

func (m *Matcher) view(answer string) answerView {
	return answerView{
		raw:       answer,
		norm:      textnorm.Normalize(answer),
		tokens:    textnorm.TokenSet(textnorm.Tokens(answer)),
		sentences: textnorm.Sentences(answer),
	}
}

// tierCheck is one pure predicate of the ordered cascade.
type tierCheck struct {
	tier  domain.MatchTier
	holds func(ctx context.Context, a answerView, phrase string) bool
}

func (m *Matcher) cascade(semanticMin float64) []tierCheck {
	checks := []tierCheck{
		{domain.TierExact, m.exactMatch},
		{domain.TierTokenOverlap, m.tokenOverlap},
	}
	// The semantic tier only exists when a vector backend is configured;
	// the lexical fallback of the scorer would just repeat tier 2.
	if m.scorer != nil && m.scorer.SemanticAvailable() {
		checks = append(checks, tierCheck{domain.TierSemantic, m.semanticTier(semanticMin)})
	}
	return checks
}

// MatchRequired runs the cascade for each required key point. An empty
// point list yields an empty result, which the aggregator treats as full
// coverage.
func (m *Matcher) MatchRequired(ctx context.Context, answer string, points []string) []domain.PointMatch {
	a := m.view(answer)
	checks := m.cascade(m.thresholds.SemanticMin)

	matches := make([]domain.PointMatch, 0, len(points))
	for _, point := range points {
		matched, tier := runCascade(ctx, checks, a, point)
		matches = append(matches, domain.PointMatch{Point: point, Matched: matched, Tier: tier})
	}
	return matches
}

// DetectForbidden runs the cascade for each forbidden concept, with the
// stricter semantic cutoff. Only triggered concepts are returned.
func (m *Matcher) DetectForbidden(ctx context.Context, answer string, concepts []string) []domain.ConceptHit {
	a := m.view(answer)
	checks := m.cascade(m.thresholds.ForbiddenSemanticMin)

	var hits []domain.ConceptHit
	for _, concept := range concepts {
		if matched, tier := runCascade(ctx, checks, a, concept); matched {
			hits = append(hits, domain.ConceptHit{Concept: concept, Tier: tier})
		}
	}
	return hits
}

func runCascade(ctx context.Context, checks []tierCheck, a answerView, phrase string) (bool, domain.MatchTier) {
	for _, c := range checks {
		if c.holds(ctx, a, phrase) {
			return true, c.tier
		}
	}
	return false, domain.TierNone
}

// exactMatch is tier 1: the normalized phrase appears verbatim inside the
// normalized answer.
func (m *Matcher) exactMatch(_ context.Context, a answerView, phrase string) bool {
	normPhrase := textnorm.Normalize(phrase)
	if normPhrase == "" {
		// nothing to require; vacuously present
		return true
	}
	return strings.Contains(a.norm, normPhrase)
}

// tokenOverlap is tier 2: enough of the phrase's content tokens appear
// among the answer's tokens. Shared stems cover inflections and close
// paraphrases.
func (m *Matcher) tokenOverlap(_ context.Context, a answerView, phrase string) bool {
	phraseTokens := textnorm.Tokens(phrase)
	if len(phraseTokens) == 0 {
		return false
	}
	found := 0
	for _, t := range phraseTokens {
		if _, ok := a.tokens[t]; ok {
			found++
		}
	}
	return float64(found)/float64(len(phraseTokens)) >= m.thresholds.TokenOverlapMin
}

// semanticTier is tier 3: the phrase is semantically close to some
// sentence of the answer (or to the whole answer when it is short enough
// to have no sentence structure).
func (m *Matcher) semanticTier(minSim float64) func(ctx context.Context, a answerView, phrase string) bool {
	return func(ctx context.Context, a answerView, phrase string) bool {
		windows := a.sentences
		if len(windows) == 0 {
			windows = []string{a.raw}
		}
		for _, w := range windows {
			if sim, _ := m.scorer.Score(ctx, phrase, w); sim >= minSim {
				return true
			}
		}
		return false
	}
}
