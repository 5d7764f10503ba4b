package domain

// Strategy identifies which evaluation implementation produced a result.
type Strategy string

const (
	StrategyRemote Strategy = "remote"
	StrategyLocal  Strategy = "local"
)

// MatchTier identifies which check of the matching cascade succeeded.
type MatchTier int

const (
	TierNone         MatchTier = iota // no tier matched
	TierExact                         // normalized substring match
	TierTokenOverlap                  // token-set overlap above threshold
	TierSemantic                      // semantic similarity above threshold
)

func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierTokenOverlap:
		return "token-overlap"
	case TierSemantic:
		return "semantic"
	default:
		return "none"
	}
}

// PointMatch records whether a required key point was found in the answer
// and through which tier of the matching cascade.
type PointMatch struct {
	Point   string
	Matched bool
	Tier    MatchTier
}

// Partial reports whether the point was matched by paraphrase rather than
// by its exact phrase. Partial matches earn reduced credit.
func (m PointMatch) Partial() bool {
	return m.Matched && m.Tier > TierExact
}

// ConceptHit records a forbidden concept detected in the answer.
type ConceptHit struct {
	Concept string
	Tier    MatchTier
}

// EvaluationResult is the outcome of grading one submission. Under the
// local strategy it is a pure function of (normalized answer, question):
// the same pair always produces an identical result.
//
// Invariant: MatchedPoints plus MissedPoints partition the question's
// required key points.
type EvaluationResult struct {
	QuestionNumber    int
	Score             float64 // final normalized score in [0,1]
	Similarity        float64 // answer vs model answer, in [0,1]
	IsCorrect         bool
	MatchedPoints     []PointMatch
	MissedPoints      []string
	TriggeredConcepts []ConceptHit
	Suggestions       []string
	Rationale         string   // human-readable explanation of the grade
	Prompt            string   // exact grading prompt/context shown to the respondent
	Strategy          Strategy // which implementation produced this result
}

// CoverageRatio returns the fraction of required key points that were
// matched. A question with no required points is vacuously fully covered.
func (r *EvaluationResult) CoverageRatio() float64 {
	total := len(r.MatchedPoints) + len(r.MissedPoints)
	if total == 0 {
		return 1.0
	}
	return float64(len(r.MatchedPoints)) / float64(total)
}
