package service

import (
	"testing"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions(correct ...[]string) []model.QuizQuestion {
	out := make([]model.QuizQuestion, len(correct))
	for i, keys := range correct {
		out[i] = model.QuizQuestion{CorrectOptionKeys: keys}
		out[i].ID = string(rune('a'+i)) + "-q"
	}
	return out
}

func TestScoreQuiz(t *testing.T) {
	qs := questions([]string{"a"}, []string{"b", "c"}, []string{"d"}, []string{"a"})

	tests := []struct {
		name    string
		answers map[string][]string
		want    float64
	}{
		{"no answers", map[string][]string{}, 0},
		{"all correct", map[string][]string{"a-q": {"a"}, "b-q": {"c", "b"}, "c-q": {"d"}, "d-q": {"a"}}, 1},
		{"three of four", map[string][]string{"a-q": {"a"}, "b-q": {"b", "c"}, "c-q": {"d"}, "d-q": {"b"}}, 0.75},
		{"subset of multi answer is wrong", map[string][]string{"b-q": {"b"}}, 0},
		{"extra key is wrong", map[string][]string{"a-q": {"a", "b"}}, 0},
		{"duplicate keys count once", map[string][]string{"a-q": {"a", "a"}}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreQuiz(qs, tt.answers), 1e-9)
		})
	}
}

func TestScoreQuizWithoutQuestions(t *testing.T) {
	assert.Equal(t, 0.0, ScoreQuiz(nil, map[string][]string{"x": {"a"}}))
}

func TestQuizPoints(t *testing.T) {
	assert.Equal(t, 25, QuizPoints(1.0, true, 20))
	assert.Equal(t, 23, QuizPoints(0.75, true, 20))
	assert.Equal(t, 23, QuizPoints(0.70, true, 20))
	assert.Equal(t, 5, QuizPoints(0.5, false, 20))
	assert.Equal(t, 0, QuizPoints(0, false, 20))
	assert.Equal(t, 0, QuizPoints(0.1, false, 5))
}

func TestAssignmentPoints(t *testing.T) {
	assert.Equal(t, 10, SubmissionCredit(40))
	assert.Equal(t, 0, SubmissionCredit(3))

	high := 0.95
	low := 0.5
	assert.Equal(t, 30, GradingPoints(40, nil))
	assert.Equal(t, 30, GradingPoints(40, &low))
	assert.Equal(t, 34, GradingPoints(40, &high))
}

func TestValidateAnswers(t *testing.T) {
	qs := questions([]string{"a"})

	require.NoError(t, ValidateAnswers(qs, map[string][]string{"a-q": {"a"}}))
	require.NoError(t, ValidateAnswers(qs, map[string][]string{}))

	err := ValidateAnswers(qs, map[string][]string{"other": {"a"}})
	assert.ErrorIs(t, err, util.ErrValidation)
	assert.ErrorIs(t, err, util.ErrInvalidAnswers)

	err = ValidateAnswers(qs, map[string][]string{"a-q": {""}})
	assert.ErrorIs(t, err, util.ErrValidation)

	err = ValidateAnswers(qs, map[string][]string{"": {"a"}})
	assert.ErrorIs(t, err, util.ErrInvalidAnswers)
}
