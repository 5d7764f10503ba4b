package dto

import "gradekit/internal/domain"

// EvaluateAnswerRequest is a respondent's submission for one question.
type EvaluateAnswerRequest struct {
	Answer string `json:"answer"`
}

// MatchedPoint is one required key point found in the answer, with the
// tier of the cascade that found it.
type MatchedPoint struct {
	Point string `json:"point"`
	Tier  string `json:"tier"`
}

// TriggeredConcept is one forbidden concept detected in the answer.
type TriggeredConcept struct {
	Concept string `json:"concept"`
	Tier    string `json:"tier"`
}

// EvaluationResponse is the result shape returned to the respondent,
// identical for both grading strategies.
type EvaluationResponse struct {
	QuestionNumber    int                `json:"question_number"`
	Score             float64            `json:"score"`
	Similarity        float64            `json:"similarity"`
	IsCorrect         bool               `json:"is_correct"`
	MatchedPoints     []MatchedPoint     `json:"matched_points"`
	MissedPoints      []string           `json:"missed_points"`
	TriggeredConcepts []TriggeredConcept `json:"triggered_concepts"`
	Suggestions       []string           `json:"suggestions"`
	Rationale         string             `json:"rationale"`
	Prompt            string             `json:"prompt"`
	Strategy          string             `json:"strategy"`
}

// FromDomainResult maps a domain evaluation result onto the API shape.
func FromDomainResult(r *domain.EvaluationResult) *EvaluationResponse {
	matched := make([]MatchedPoint, 0, len(r.MatchedPoints))
	for _, m := range r.MatchedPoints {
		matched = append(matched, MatchedPoint{Point: m.Point, Tier: m.Tier.String()})
	}
	triggered := make([]TriggeredConcept, 0, len(r.TriggeredConcepts))
	for _, h := range r.TriggeredConcepts {
		triggered = append(triggered, TriggeredConcept{Concept: h.Concept, Tier: h.Tier.String()})
	}
	missed := r.MissedPoints
	if missed == nil {
		missed = []string{}
	}
	suggestions := r.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return &EvaluationResponse{
		QuestionNumber:    r.QuestionNumber,
		Score:             r.Score,
		Similarity:        r.Similarity,
		IsCorrect:         r.IsCorrect,
		MatchedPoints:     matched,
		MissedPoints:      missed,
		TriggeredConcepts: triggered,
		Suggestions:       suggestions,
		Rationale:         r.Rationale,
		Prompt:            r.Prompt,
		Strategy:          string(r.Strategy),
	}
}
