package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionValidate(t *testing.T) {
	valid := NewQuestion(1, "Titre", "Énoncé", "Réponse modèle", nil, nil)
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(q *Question)
	}{
		{"zero number", func(q *Question) { q.Number = 0 }},
		{"negative number", func(q *Question) { q.Number = -3 }},
		{"missing title", func(q *Question) { q.Title = "" }},
		{"missing prompt", func(q *Question) { q.Prompt = "" }},
		{"missing model answer", func(q *Question) { q.ModelAnswer = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuestion(1, "Titre", "Énoncé", "Réponse modèle", nil, nil)
			tt.mutate(q)

			err := q.Validate()
			require.Error(t, err)
			var domainErr *DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, ErrInvalidInput, domainErr.Code)
		})
	}
}

func TestSubmissionValidate(t *testing.T) {
	sub := NewSubmission(7, "ma réponse")
	require.NoError(t, sub.Validate())
	assert.Equal(t, 7, sub.QuestionNumber)
	assert.Equal(t, "ma réponse", sub.AnswerText)

	// An empty answer is a valid submission; it grades to the minimum score.
	assert.NoError(t, NewSubmission(7, "").Validate())

	for _, number := range []int{0, -1} {
		err := NewSubmission(number, "ma réponse").Validate()
		require.Error(t, err)
		var domainErr *DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrInvalidInput, domainErr.Code)
	}
}
