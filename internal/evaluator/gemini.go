package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gradekit/internal/domain"
	"gradekit/internal/logger"
	"gradekit/internal/util"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// GeminiEvaluator grades answers by rendering a natural-language rubric
// prompt and asking a Gemini model for a structured verdict. Any failure
// is returned as a RemoteServiceError; the caller decides whether to fall
// back to the local engine.
type GeminiEvaluator struct {
	llm       llms.Model
	modelName string
	timeout   time.Duration
}

// NewGeminiEvaluator creates the remote strategy. It fails when no API
// key is supplied; the caller treats that as mode selection, not a crash.
func NewGeminiEvaluator(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*GeminiEvaluator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiEvaluator{llm: llm, modelName: modelName, timeout: timeout}, nil
}

// Evaluate implements domain.Evaluator.
func (e *GeminiEvaluator) Evaluate(ctx context.Context, question *domain.Question, answerText string) (*domain.EvaluationResult, error) {
	if question == nil {
		return nil, domain.NewInternalError("question is nil", nil)
	}
	if strings.TrimSpace(question.ModelAnswer) == "" {
		return nil, domain.NewInvalidQuestionError(
			fmt.Sprintf("question %d has no model answer to grade against", question.Number))
	}

	prompt := BuildGradingPrompt(question, answerText)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := llms.GenerateFromSinglePrompt(callCtx, e.llm, prompt, llms.WithTemperature(0.1))
	if err != nil {
		logger.Get().Error("Gemini call failed",
			zap.Error(err),
			zap.String("model", e.modelName),
			zap.Int("question_number", question.Number))
		return nil, domain.NewRemoteServiceError(fmt.Errorf("gemini call failed: %w", err))
	}

	verdict, err := parseRemoteVerdict(raw)
	if err != nil {
		logger.Get().Error("Failed to parse Gemini verdict",
			zap.Error(err),
			zap.String("raw_response", raw))
		return nil, domain.NewRemoteServiceError(err)
	}

	result := verdict.toResult(question)
	result.Prompt = prompt
	return result, nil
}

// BuildGradingPrompt renders the natural-language rubric embedding the
// question record and the respondent's answer. It is exported so the
// transparency surface can show the exact text sent to the model.
func BuildGradingPrompt(question *domain.Question, answerText string) string {
	return fmt.Sprintf(`You are a pedagogical grading assistant. Evaluate the student's answer against the criteria below and respond with ONLY a JSON object in the following format:
{
    "score": 0.0,
    "is_correct": false,
    "matched_points": ["required point found in the answer"],
    "missed_points": ["required point missing from the answer"],
    "triggered_concepts": ["forbidden concept asserted by the answer"],
    "suggestions": ["one or two short tips for the student"],
    "explanation": "brief explanation of the grade, under 100 words"
}

Question title: %s
Question prompt: %s
Model answer: %s
Required points (must be present): %s
Forbidden concepts (must not be asserted): %s

Student's answer:
"%s"

Rules:
1. score must be between 0 and 1 (1 is a perfect answer)
2. matched_points and missed_points must together list every required point exactly once, using the exact phrases given above
3. triggered_concepts must only list forbidden concepts the answer actually asserts, not ones it merely shares vocabulary with
4. is_correct is true only when the score is at least 0.6, no forbidden concept is triggered and no required point is missing`,
		question.Title,
		question.Prompt,
		question.ModelAnswer,
		joinOrNone(question.RequiredPoints),
		joinOrNone(question.ForbiddenConcepts),
		answerText,
	)
}

// remoteVerdict is the JSON contract the model is asked to honor.
type remoteVerdict struct {
	Score             float64  `json:"score"`
	IsCorrect         bool     `json:"is_correct"`
	MatchedPoints     []string `json:"matched_points"`
	MissedPoints      []string `json:"missed_points"`
	TriggeredConcepts []string `json:"triggered_concepts"`
	Suggestions       []string `json:"suggestions"`
	Explanation       string   `json:"explanation"`
}

// parseRemoteVerdict extracts the JSON object from a raw model response.
// Models occasionally wrap the object in prose or <think> blocks, so the
// parser keeps whatever sits between the first '{' and the last '}'.
func parseRemoteVerdict(raw string) (*remoteVerdict, error) {
	cleaned := strings.TrimSpace(raw)

	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			cleaned = strings.TrimSpace(cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):])
		}
	}

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("no JSON object found in model response: %s", cleaned)
	}

	var verdict remoteVerdict
	if err := json.Unmarshal([]byte(cleaned[jsonStart:jsonEnd+1]), &verdict); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model verdict: %w", err)
	}
	return &verdict, nil
}

// toResult maps the model's verdict onto the result shape, reconciling it
// against the question so the matched/missed partition invariant holds
// even when the model hallucinates points.
func (v *remoteVerdict) toResult(question *domain.Question) *domain.EvaluationResult {
	matchedSet := make(map[string]bool, len(v.MatchedPoints))
	for _, p := range v.MatchedPoints {
		matchedSet[p] = true
	}

	var matched []domain.PointMatch
	var missed []string
	for _, p := range question.RequiredPoints {
		if matchedSet[p] {
			matched = append(matched, domain.PointMatch{Point: p, Matched: true, Tier: domain.TierSemantic})
		} else {
			missed = append(missed, p)
		}
	}

	conceptSet := make(map[string]bool, len(v.TriggeredConcepts))
	for _, c := range v.TriggeredConcepts {
		conceptSet[c] = true
	}
	var hits []domain.ConceptHit
	for _, c := range question.ForbiddenConcepts {
		if conceptSet[c] {
			hits = append(hits, domain.ConceptHit{Concept: c, Tier: domain.TierSemantic})
		}
	}

	return &domain.EvaluationResult{
		QuestionNumber:    question.Number,
		Score:             util.Clamp01(v.Score),
		IsCorrect:         v.IsCorrect,
		MatchedPoints:     matched,
		MissedPoints:      missed,
		TriggeredConcepts: hits,
		Suggestions:       v.Suggestions,
		Rationale:         v.Explanation,
		Strategy:          domain.StrategyRemote,
	}
}
