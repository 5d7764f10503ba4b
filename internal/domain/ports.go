package domain

import "context"

// Evaluator is the single capability both grading strategies implement.
// The rest of the application is indifferent to which one runs.
type Evaluator interface {
	// Evaluate grades a raw free-text answer against a question's policy.
	Evaluate(ctx context.Context, question *Question, answerText string) (*EvaluationResult, error)
}

// EmbeddingService defines the interface for generating text embeddings.
type EmbeddingService interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

// QuestionRepository defines the persistence port for authored questions.
type QuestionRepository interface {
	SaveQuestion(ctx context.Context, question *Question) error
	GetQuestionByNumber(ctx context.Context, number int) (*Question, error)
	ListQuestions(ctx context.Context) ([]*Question, error)
	NextQuestionNumber(ctx context.Context) (int, error)
}
