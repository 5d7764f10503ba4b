// Package scoring combines similarity, key-point coverage and forbidden
// concept penalties into one normalized score plus structured feedback.
// Aggregation is a pure function: same inputs, same score, same rationale.
package scoring

import (
	"fmt"
	"strings"

	"gradekit/internal/domain"
	"gradekit/internal/similarity"
	"gradekit/internal/util"
)

// Weights are the grading policy constants. They are deliberately named
// tunables rather than magic numbers; DefaultWeights documents the chosen
// defaults.
type Weights struct {
	Similarity        float64 // w1: weight of answer-vs-model-answer similarity
	Coverage          float64 // w2: weight of required-point coverage
	PartialCredit     float64 // credit for a point matched by paraphrase only
	PenaltyPerConcept float64 // subtracted per triggered forbidden concept
	PassThreshold     float64 // minimum score for a correct verdict
}

// DefaultWeights returns the default grading policy: similarity 0.4,
// coverage 0.6, half credit for paraphrase matches, a 0.10 penalty per
// forbidden concept and a 0.6 pass bar.
func DefaultWeights() Weights {
	return Weights{
		Similarity:        0.4,
		Coverage:          0.6,
		PartialCredit:     0.5,
		PenaltyPerConcept: 0.10,
		PassThreshold:     0.6,
	}
}

// Normalized fills zero-valued fields with the defaults so a partially
// populated configuration stays usable.
func (w Weights) Normalized() Weights {
	d := DefaultWeights()
	if w.Similarity <= 0 {
		w.Similarity = d.Similarity
	}
	if w.Coverage <= 0 {
		w.Coverage = d.Coverage
	}
	if w.PartialCredit <= 0 {
		w.PartialCredit = d.PartialCredit
	}
	if w.PenaltyPerConcept <= 0 {
		w.PenaltyPerConcept = d.PenaltyPerConcept
	}
	if w.PassThreshold <= 0 {
		w.PassThreshold = d.PassThreshold
	}
	return w
}

// Aggregate combines the component signals into an EvaluationResult.
// The caller fills in question number, prompt and strategy.
func Aggregate(sim float64, mode similarity.Mode, matches []domain.PointMatch, hits []domain.ConceptHit, w Weights) *domain.EvaluationResult {
	w = w.Normalized()
	sim = util.Clamp01(sim)

	var matched []domain.PointMatch
	var missed []string
	credit := 0.0
	for _, m := range matches {
		switch {
		case m.Matched && m.Tier == domain.TierExact:
			matched = append(matched, m)
			credit += 1.0
		case m.Matched:
			matched = append(matched, m)
			credit += w.PartialCredit
		default:
			missed = append(missed, m.Point)
		}
	}

	// a question with zero required points is vacuously fully covered
	weightedCoverage := 1.0
	if len(matches) > 0 {
		weightedCoverage = credit / float64(len(matches))
	}

	penalty := w.PenaltyPerConcept * float64(len(hits))
	score := util.Clamp01(w.Similarity*sim + w.Coverage*weightedCoverage - penalty)

	result := &domain.EvaluationResult{
		Score:             score,
		Similarity:        sim,
		MatchedPoints:     matched,
		MissedPoints:      missed,
		TriggeredConcepts: hits,
		IsCorrect:         score >= w.PassThreshold && len(hits) == 0 && len(missed) == 0,
	}
	result.Suggestions = suggestions(matched, missed, hits)
	result.Rationale = rationale(result, mode, weightedCoverage, penalty)
	return result
}

func suggestions(matched []domain.PointMatch, missed []string, hits []domain.ConceptHit) []string {
	var out []string
	if len(missed) > 0 {
		out = append(out, "Consider mentioning: "+strings.Join(firstN(missed, 3), ", "))
	}
	var partial []string
	for _, m := range matched {
		if m.Partial() {
			partial = append(partial, m.Point)
		}
	}
	if len(partial) > 0 {
		out = append(out, "Develop further: "+strings.Join(firstN(partial, 2), ", "))
	}
	if len(hits) > 0 {
		concepts := make([]string, 0, len(hits))
		for _, h := range hits {
			concepts = append(concepts, h.Concept)
		}
		out = append(out, "Avoid mentioning: "+strings.Join(firstN(concepts, 2), ", "))
	}
	if len(out) == 0 {
		out = append(out, "All key points are covered.")
	}
	return out
}

func rationale(r *domain.EvaluationResult, mode similarity.Mode, weightedCoverage, penalty float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Similarity to model answer: %.2f (%s)\n", r.Similarity, mode)
	fmt.Fprintf(&b, "Required points matched: %d/%d (weighted coverage %.2f)\n",
		len(r.MatchedPoints), len(r.MatchedPoints)+len(r.MissedPoints), weightedCoverage)
	for _, m := range r.MatchedPoints {
		fmt.Fprintf(&b, "  + %s (%s)\n", m.Point, m.Tier)
	}
	for _, p := range r.MissedPoints {
		fmt.Fprintf(&b, "  - %s (missing)\n", p)
	}
	if len(r.TriggeredConcepts) > 0 {
		fmt.Fprintf(&b, "Forbidden concepts detected (penalty %.2f):\n", penalty)
		for _, h := range r.TriggeredConcepts {
			fmt.Fprintf(&b, "  ! %s (%s)\n", h.Concept, h.Tier)
		}
	}
	fmt.Fprintf(&b, "Final score: %.2f", r.Score)
	return b.String()
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
