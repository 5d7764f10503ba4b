package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeEmbedder serves canned vectors keyed by the (normalized) text it
// receives. Unknown texts and a configured failure both return an error.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Generate(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector for: " + text)
	}
	return vec, nil
}

func TestScoreEmptyInput(t *testing.T) {
	scorer := NewScorer(nil)

	for _, tc := range []struct{ a, b string }{
		{"", "quelque chose"},
		{"quelque chose", ""},
		{"", ""},
		{"?!...", "quelque chose"}, // normalizes to empty
	} {
		sim, mode := scorer.Score(context.Background(), tc.a, tc.b)
		assert.Equal(t, 0.0, sim)
		assert.Equal(t, ModeLexical, mode)
	}
}

func TestScoreSemantic(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"chute de la monarchie": {1, 0},
		"fin de la royaute":     {1, 0},
		"recette de cuisine":    {0, 1},
	}}
	scorer := NewScorer(embedder)

	sim, mode := scorer.Score(context.Background(), "Chute de la monarchie !", "Fin de la royauté")
	assert.Equal(t, ModeSemantic, mode)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, mode = scorer.Score(context.Background(), "chute de la monarchie", "recette de cuisine")
	assert.Equal(t, ModeSemantic, mode)
	assert.InDelta(t, 0.0, sim, 1e-9)
}

func TestScoreClampsNegativeCosine(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"premier texte": {1, 0},
		"second texte":  {-1, 0},
	}}
	scorer := NewScorer(embedder)

	sim, mode := scorer.Score(context.Background(), "premier texte", "second texte")
	assert.Equal(t, ModeSemantic, mode)
	assert.Equal(t, 0.0, sim)
}

func TestScoreFallsBackOnBackendFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("backend down")}
	scorer := NewScorer(embedder)

	sim, mode := scorer.Score(context.Background(), "la chute de la monarchie", "la chute de la monarchie")
	assert.Equal(t, ModeLexical, mode)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestLexicalScore(t *testing.T) {
	scorer := NewScorer(nil)

	sim, mode := scorer.Score(context.Background(), "abolition des privilèges", "abolition des privilèges")
	assert.Equal(t, ModeLexical, mode)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, _ = scorer.Score(context.Background(), "pomme banane", "voiture train")
	assert.Equal(t, 0.0, sim)
}

func TestLexicalScoreSymmetricAndDeterministic(t *testing.T) {
	scorer := NewScorer(nil)
	a := "la prise de la Bastille en 1789"
	b := "la Bastille fut prise par le peuple"

	ab, _ := scorer.Score(context.Background(), a, b)
	ba, _ := scorer.Score(context.Background(), b, a)
	again, _ := scorer.Score(context.Background(), a, b)

	assert.Equal(t, ab, ba)
	assert.Equal(t, ab, again)
	assert.GreaterOrEqual(t, ab, 0.0)
	assert.LessOrEqual(t, ab, 1.0)
}

func TestSemanticAvailable(t *testing.T) {
	assert.False(t, NewScorer(nil).SemanticAvailable())
	assert.True(t, NewScorer(&fakeEmbedder{}).SemanticAvailable())
}
