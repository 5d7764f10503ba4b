// Package repository adapts the domain persistence ports to sqlx.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gradekit/internal/domain"
	"gradekit/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const questionColumns = `
	id,
	number,
	title,
	prompt,
	model_answer,
	required_points,
	forbidden_concepts,
	attachments,
	created_at,
	updated_at`

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx.
type QuestionDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter.
func NewQuestionDatabaseAdapter(db *sqlx.DB) domain.QuestionRepository {
	return &QuestionDatabaseAdapter{db: db}
}

// SaveQuestion inserts a question, replacing any existing question with
// the same number. Re-saving is the only way to edit an authored question.
func (a *QuestionDatabaseAdapter) SaveQuestion(ctx context.Context, question *domain.Question) error {
	model := toModelQuestion(question)
	query := `INSERT INTO questions (` + questionColumns + `)
	VALUES (:id, :number, :title, :prompt, :model_answer, :required_points, :forbidden_concepts, :attachments, :created_at, :updated_at)
	ON CONFLICT(number) DO UPDATE SET
		title = excluded.title,
		prompt = excluded.prompt,
		model_answer = excluded.model_answer,
		required_points = excluded.required_points,
		forbidden_concepts = excluded.forbidden_concepts,
		attachments = excluded.attachments,
		updated_at = excluded.updated_at`

	if _, err := a.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("failed to save question %d: %w", question.Number, err)
	}
	return nil
}

// GetQuestionByNumber returns the question with the given number, or nil
// when none exists.
func (a *QuestionDatabaseAdapter) GetQuestionByNumber(ctx context.Context, number int) (*domain.Question, error) {
	var model models.Question
	query := `SELECT ` + questionColumns + ` FROM questions WHERE number = ?`

	err := a.db.GetContext(ctx, &model, query, number)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question %d: %w", number, err)
	}
	return toDomainQuestion(&model), nil
}

// ListQuestions returns all questions ordered by number.
func (a *QuestionDatabaseAdapter) ListQuestions(ctx context.Context) ([]*domain.Question, error) {
	var rows []models.Question
	query := `SELECT ` + questionColumns + ` FROM questions ORDER BY number ASC`

	if err := a.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, toDomainQuestion(&rows[i]))
	}
	return questions, nil
}

// NextQuestionNumber returns the next free question number.
func (a *QuestionDatabaseAdapter) NextQuestionNumber(ctx context.Context) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(number), 0) + 1 FROM questions`

	if err := a.db.GetContext(ctx, &next, query); err != nil {
		return 0, fmt.Errorf("failed to compute next question number: %w", err)
	}
	return next, nil
}

func toModelQuestion(q *domain.Question) *models.Question {
	return &models.Question{
		ID:                q.ID,
		Number:            q.Number,
		Title:             q.Title,
		Prompt:            q.Prompt,
		ModelAnswer:       q.ModelAnswer,
		RequiredPoints:    models.StringSlice(q.RequiredPoints),
		ForbiddenConcepts: models.StringSlice(q.ForbiddenConcepts),
		Attachments:       models.StringSlice(q.Attachments),
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:                m.ID,
		Number:            m.Number,
		Title:             m.Title,
		Prompt:            m.Prompt,
		ModelAnswer:       m.ModelAnswer,
		RequiredPoints:    []string(m.RequiredPoints),
		ForbiddenConcepts: []string(m.ForbiddenConcepts),
		Attachments:       []string(m.Attachments),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
