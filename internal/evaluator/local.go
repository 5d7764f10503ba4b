// Package evaluator provides the two interchangeable grading strategies:
// a remote language-model evaluator and a fully offline local engine.
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"gradekit/internal/domain"
	"gradekit/internal/match"
	"gradekit/internal/scoring"
	"gradekit/internal/similarity"
	"gradekit/internal/textnorm"
)

// LocalEvaluator grades answers without any network dependency, using
// lexical/semantic similarity plus the keyword cascade. Given the same
// question and answer it always produces an identical result.
type LocalEvaluator struct {
	scorer  *similarity.Scorer
	matcher *match.Matcher
	weights scoring.Weights
}

// NewLocalEvaluator creates the local grading strategy.
func NewLocalEvaluator(scorer *similarity.Scorer, matcher *match.Matcher, weights scoring.Weights) *LocalEvaluator {
	return &LocalEvaluator{
		scorer:  scorer,
		matcher: matcher,
		weights: weights,
	}
}

// Evaluate implements domain.Evaluator.
func (e *LocalEvaluator) Evaluate(ctx context.Context, question *domain.Question, answerText string) (*domain.EvaluationResult, error) {
	if question == nil {
		return nil, domain.NewInternalError("question is nil", nil)
	}
	if strings.TrimSpace(question.ModelAnswer) == "" {
		return nil, domain.NewInvalidQuestionError(
			fmt.Sprintf("question %d has no model answer to grade against", question.Number))
	}

	if textnorm.Normalize(answerText) == "" {
		return e.emptyAnswerResult(question), nil
	}

	sim, mode := e.scorer.Score(ctx, answerText, question.ModelAnswer)
	matches := e.matcher.MatchRequired(ctx, answerText, question.RequiredPoints)
	hits := e.matcher.DetectForbidden(ctx, answerText, question.ForbiddenConcepts)

	result := scoring.Aggregate(sim, mode, matches, hits, e.weights)
	result.QuestionNumber = question.Number
	result.Strategy = domain.StrategyLocal
	result.Prompt = GradingContext(question)
	return result, nil
}

// emptyAnswerResult is the deterministic verdict for a blank submission:
// minimal score, zero matched points, explicit feedback, no error.
func (e *LocalEvaluator) emptyAnswerResult(question *domain.Question) *domain.EvaluationResult {
	missed := make([]string, len(question.RequiredPoints))
	copy(missed, question.RequiredPoints)
	return &domain.EvaluationResult{
		QuestionNumber: question.Number,
		Score:          0,
		Similarity:     0,
		IsCorrect:      false,
		MissedPoints:   missed,
		Suggestions:    []string{"No content to evaluate. Write an answer before submitting."},
		Rationale:      "The submitted answer is empty: no content to evaluate.",
		Prompt:         GradingContext(question),
		Strategy:       domain.StrategyLocal,
	}
}

// GradingContext renders the grading criteria a respondent is entitled to
// inspect. The remote strategy embeds the same context in its prompt; the
// local strategy returns it alongside the rationale.
func GradingContext(question *domain.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d: %s\n", question.Number, question.Title)
	fmt.Fprintf(&b, "Prompt: %s\n", question.Prompt)
	fmt.Fprintf(&b, "Model answer: %s\n", question.ModelAnswer)
	fmt.Fprintf(&b, "Required points: %s\n", joinOrNone(question.RequiredPoints))
	fmt.Fprintf(&b, "Forbidden concepts: %s", joinOrNone(question.ForbiddenConcepts))
	return b.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, "; ")
}
