package service

import (
	"context"
	"errors"
	"testing"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/testutil"
	"skillpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeCompleter struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no reply queued")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

const draftJSON = "```json\n" + `{
  "title": "Go Backend Screening",
  "description": null,
  "difficulty": "Medium",
  "tags": ["Go", "postgres", " go ", "kubernetes"],
  "questions": [
    {"text": "What does defer do?", "question_type": "SINGLE_CHOICE", "difficulty": "easy",
     "answers": [{"text": "Runs at return", "is_correct": true}, {"text": "Spawns a goroutine", "is_correct": false}]},
    {"text": "Which are reference types?", "question_type": "multiple_choice", "difficulty": "medium",
     "answers": [{"text": "map", "is_correct": true}, {"text": "slice", "is_correct": true}, {"text": "int", "is_correct": false}]}
  ]
}` + "\n```"

func TestParseQuizDraft(t *testing.T) {
	draft, err := ParseQuizDraft(draftJSON)
	require.NoError(t, err)

	assert.Equal(t, model.Medium, draft.Difficulty)
	assert.Equal(t, []string{"go", "postgres", "kubernetes"}, draft.Tags)
	require.Len(t, draft.Questions, 2)
	assert.Equal(t, model.SingleChoice, draft.Questions[0].QuestionType)

	quiz := draft.toModel("jd-1")
	assert.Equal(t, 120, quiz.TimeLimitSeconds)
	require.NotNil(t, quiz.SourceJDID)
	assert.Equal(t, "jd-1", *quiz.SourceJDID)
	assert.Len(t, quiz.Questions[1].Answers, 3)
}

func TestParseQuizDraftRejects(t *testing.T) {
	inputs := map[string]string{
		"not json":      "Sure! Here is your quiz.",
		"no questions":  `{"title": "t", "difficulty": "easy", "tags": ["go"], "questions": []}`,
		"bad enum":      `{"title": "t", "difficulty": "insane", "tags": ["go"], "questions": [{"text": "q", "question_type": "single_choice", "difficulty": "easy", "answers": [{"text": "a", "is_correct": true}, {"text": "b"}]}]}`,
		"two correct":   `{"title": "t", "difficulty": "easy", "tags": ["go"], "questions": [{"text": "q", "question_type": "single_choice", "difficulty": "easy", "answers": [{"text": "a", "is_correct": true}, {"text": "b", "is_correct": true}]}]}`,
		"none correct":  `{"title": "t", "difficulty": "easy", "tags": ["go"], "questions": [{"text": "q", "question_type": "multiple_choice", "difficulty": "easy", "answers": [{"text": "a"}, {"text": "b"}]}]}`,
		"single answer": `{"title": "t", "difficulty": "easy", "tags": ["go"], "questions": [{"text": "q", "question_type": "single_choice", "difficulty": "easy", "answers": [{"text": "a", "is_correct": true}]}]}`,
	}
	for name, body := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuizDraft(body)
			assert.ErrorIs(t, err, util.ErrUpstream)
		})
	}
}

func TestMatchByTags(t *testing.T) {
	quizzes := []model.GeneratedQuiz{
		{Title: "frontend", Tags: datatypes.JSONSlice[string]{"react", "css"}},
		{Title: "backend", Tags: datatypes.JSONSlice[string]{"go", "postgres"}},
		{Title: "platform", Tags: datatypes.JSONSlice[string]{"Go", "kubernetes", "postgres"}},
		{Title: "infra", Tags: datatypes.JSONSlice[string]{"kubernetes"}},
	}

	matches := MatchByTags(quizzes, []string{"go", "POSTGRES", "kubernetes", "go"})
	require.Len(t, matches, 3)
	assert.Equal(t, "platform", matches[0].Quiz.Title)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.Equal(t, "backend", matches[1].Quiz.Title)
	assert.Equal(t, "infra", matches[2].Quiz.Title)

	assert.Empty(t, MatchByTags(quizzes, nil))
	assert.Empty(t, MatchByTags(quizzes, []string{"cobol"}))
}

func newQuizGenerationService(t *testing.T, ai Completer) *QuizGenerationService {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewQuizGenerationService(db, repository.NewJobQuizRepository(db), ai)
}

func TestGenerateFromJobDescription(t *testing.T) {
	ai := &fakeCompleter{replies: []string{draftJSON}}
	s := newQuizGenerationService(t, ai)
	ctx := context.Background()

	jd, err := s.GenerateFromJobDescription(ctx, "  Senior Go engineer, Postgres, Kubernetes  ")
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer, Postgres, Kubernetes", jd.OriginalText)
	require.NotNil(t, jd.GeneratedQuiz)

	quiz, err := s.GetQuiz(ctx, jd.GeneratedQuiz.ID)
	require.NoError(t, err)
	assert.Len(t, quiz.Questions, 2)

	_, err = s.GenerateForExisting(ctx, jd.ID)
	assert.ErrorIs(t, err, util.ErrQuizAlreadyGenerated)
	assert.Equal(t, 1, ai.calls)

	_, err = s.GenerateForExisting(ctx, model.GenerateUUID())
	assert.ErrorIs(t, err, util.ErrJobDescNotFound)
}

func TestGenerateKeepsJobDescriptionOnFailure(t *testing.T) {
	ai := &fakeCompleter{replies: []string{"not a quiz"}}
	s := newQuizGenerationService(t, ai)
	ctx := context.Background()

	jd, err := s.GenerateFromJobDescription(ctx, "Data engineer")
	assert.ErrorIs(t, err, util.ErrUpstream)
	require.NotNil(t, jd)

	stored, err := s.GetJobDescription(ctx, jd.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.GeneratedQuiz)

	ai.replies = []string{draftJSON}
	quiz, err := s.GenerateForExisting(ctx, jd.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Backend Screening", quiz.Title)

	_, err = s.GenerateFromJobDescription(ctx, "   ")
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestMatchQuizzes(t *testing.T) {
	ai := &fakeCompleter{replies: []string{draftJSON, `["postgres", "Kubernetes"]`}}
	s := newQuizGenerationService(t, ai)
	ctx := context.Background()

	_, err := s.GenerateFromJobDescription(ctx, "Go engineer")
	require.NoError(t, err)

	matches, err := s.MatchQuizzes(ctx, "", []string{"go"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)

	matches, err = s.MatchQuizzes(ctx, "We run Postgres on Kubernetes", []string{"rust"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 2.0/3.0, matches[0].Score, 1e-9)

	_, err = s.MatchQuizzes(ctx, "", []string{" "})
	assert.ErrorIs(t, err, util.ErrValidation)
}
