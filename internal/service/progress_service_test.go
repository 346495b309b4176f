package service

import (
	"context"
	"testing"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/testutil"
	"skillpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answersFor(quiz *model.Quiz, picks ...[]string) map[string][]string {
	out := map[string][]string{}
	for i, keys := range picks {
		if keys != nil {
			out[quiz.Questions[i].ID] = keys
		}
	}
	return out
}

func TestSubmitQuizPassed(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")
	quiz := testutil.SeedQuiz(t, f.db, 20, [][]string{{"a"}, {"b"}, {"c"}, {"d"}})

	res, err := f.progress.SubmitQuiz(context.Background(), user, quiz.ID,
		answersFor(quiz, []string{"a"}, []string{"b"}, []string{"c"}, []string{"a"}))
	require.NoError(t, err)

	assert.InDelta(t, 0.75, res.Attempt.Score, 1e-9)
	assert.True(t, res.Attempt.Passed)
	// 20 reward + 3 bonus, then 1 for the first streak day
	assert.Equal(t, 24, res.Outcome.PointsAwarded)
	assert.Equal(t, 24, f.reload(t, user.ID).Points)
	assert.Equal(t, []string{BadgeQuizTaker}, f.badgeNames(t, user.ID))

	require.Len(t, f.notifier.outcomes, 1)
	require.Len(t, f.notifier.outcomes[0].BadgesAwarded, 1)
	require.NotEmpty(t, f.notifier.outcomes[0].LevelUps)
}

func TestSubmitQuizPerfectScoreBadgesOnce(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")
	quiz := testutil.SeedQuiz(t, f.db, 10, [][]string{{"a", "b"}})
	answers := answersFor(quiz, []string{"b", "a"})

	res, err := f.progress.SubmitQuiz(context.Background(), user, quiz.ID, answers)
	require.NoError(t, err)
	assert.Len(t, res.Outcome.BadgesAwarded, 2)

	res, err = f.progress.SubmitQuiz(context.Background(), user, quiz.ID, answers)
	require.NoError(t, err)
	assert.Empty(t, res.Outcome.BadgesAwarded)

	assert.Equal(t, []string{BadgePerfectScore, BadgeQuizTaker}, f.badgeNames(t, user.ID))

	attempts, err := f.progress.ListQuizAttempts(context.Background(), user.ID, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestSubmitQuizRollsBackOnLateFailure(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")
	quiz := testutil.SeedQuiz(t, f.db, 20, [][]string{{"a"}})

	// the badge step runs after the attempt, progress, points and streak writes
	require.NoError(t, f.db.Migrator().DropTable(&model.UserBadge{}))

	_, err := f.progress.SubmitQuiz(context.Background(), user, quiz.ID, answersFor(quiz, []string{"a"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrPersistence)

	count := func(m any) int64 {
		var n int64
		require.NoError(t, f.db.Model(m).Where("user_id = ?", user.ID).Count(&n).Error)
		return n
	}
	assert.Zero(t, count(&model.UserQuizAttempt{}))
	assert.Zero(t, count(&model.UserProgress{}))
	assert.Zero(t, count(&model.UserStreak{}))

	stored := f.reload(t, user.ID)
	assert.Zero(t, stored.Points)
	assert.Nil(t, stored.LevelID)
	assert.Empty(t, f.notifier.outcomes)
}

func TestSubmitQuizFailedPaysPartialPoints(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")
	quiz := testutil.SeedQuiz(t, f.db, 20, [][]string{{"a"}, {"b"}})

	res, err := f.progress.SubmitQuiz(context.Background(), user, quiz.ID, answersFor(quiz, []string{"a"}, nil))
	require.NoError(t, err)

	assert.False(t, res.Attempt.Passed)
	// floor(0.5 * 20 * 0.5) plus the streak day
	assert.Equal(t, 6, f.reload(t, user.ID).Points)
	assert.Empty(t, f.badgeNames(t, user.ID))
}

func TestSubmitQuizWithoutQuestions(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")
	quiz := testutil.SeedQuiz(t, f.db, 20, nil)

	res, err := f.progress.SubmitQuiz(context.Background(), user, quiz.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Attempt.Score)
	assert.False(t, res.Attempt.Passed)
}

func TestSubmitQuizRejectsUnknownQuestion(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")
	quiz := testutil.SeedQuiz(t, f.db, 20, [][]string{{"a"}})

	_, err := f.progress.SubmitQuiz(context.Background(), user, quiz.ID, map[string][]string{"nope": {"a"}})
	assert.ErrorIs(t, err, util.ErrValidation)
	assert.Zero(t, f.reload(t, user.ID).Points)

	_, err = f.progress.SubmitQuiz(context.Background(), user, model.GenerateUUID(), nil)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestAssignmentLifecycle(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")
	assignment := testutil.SeedAssignment(t, f.db, 40)
	ctx := context.Background()

	content := "https://github.com/ada/cli"
	sub, err := f.progress.SubmitAssignment(ctx, user, assignment.ID, &content)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionSubmitted, sub.Submission.Status)
	// credit of 10 plus the streak day
	assert.Equal(t, 11, f.reload(t, user.ID).Points)

	pending, err := f.progress.PendingSubmissions(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	grade := 1.0
	graded, err := f.progress.GradeAssignment(ctx, sub.Submission.ID, GradeInput{Status: model.SubmissionPassed, Grade: &grade})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionPassed, graded.Submission.Status)
	require.NotNil(t, graded.Submission.GradedAt)
	// 30 remaining plus 4 for the high grade
	assert.Equal(t, 34, graded.Outcome.PointsAwarded)
	assert.Equal(t, 45, f.reload(t, user.ID).Points)
	assert.Equal(t, []string{BadgeAssignmentComplete, BadgeTopMarks}, f.badgeNames(t, user.ID))

	_, err = f.progress.GradeAssignment(ctx, sub.Submission.ID, GradeInput{Status: model.SubmissionPassed, Grade: &grade})
	assert.ErrorIs(t, err, util.ErrSubmissionAlreadyGraded)
	assert.Equal(t, 45, f.reload(t, user.ID).Points)

	pending, err = f.progress.PendingSubmissions(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	record, err := f.progress.ListProgress(ctx, user.ID, model.ItemAssignment)
	require.NoError(t, err)
	require.Len(t, record, 1)
	assert.Equal(t, model.SubmissionPassed, record[0].MetaData["status"])
}

func TestGradeAssignmentFailedPaysNothing(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")
	assignment := testutil.SeedAssignment(t, f.db, 40)
	ctx := context.Background()

	sub, err := f.progress.SubmitAssignment(ctx, user, assignment.ID, nil)
	require.NoError(t, err)

	feedback := "tests are missing"
	_, err = f.progress.GradeAssignment(ctx, sub.Submission.ID, GradeInput{Status: model.SubmissionFailed, Feedback: &feedback})
	require.NoError(t, err)
	assert.Equal(t, 11, f.reload(t, user.ID).Points)
	assert.Empty(t, f.badgeNames(t, user.ID))
}

func TestGradeInputValidation(t *testing.T) {
	over := 1.5
	assert.ErrorIs(t, GradeInput{}.Validate(), util.ErrValidation)
	assert.ErrorIs(t, GradeInput{Status: model.SubmissionSubmitted}.Validate(), util.ErrValidation)
	assert.ErrorIs(t, GradeInput{Status: model.SubmissionPassed, Grade: &over}.Validate(), util.ErrValidation)
	assert.NoError(t, GradeInput{Status: model.SubmissionFailed}.Validate())

	f := newFixture(t)
	_, err := f.progress.GradeAssignment(context.Background(), model.GenerateUUID(), GradeInput{Status: model.SubmissionPassed})
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)
}

func TestMarkModuleCompleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")
	module := testutil.SeedModule(t, f.db)
	ctx := context.Background()

	res, err := f.progress.MarkItemComplete(ctx, user, module.ID, model.ItemModule)
	require.NoError(t, err)
	assert.True(t, res.NewlyCompleted)
	firstCompletion := *res.Progress.CompletedAt
	// 1 streak point plus 5 for the module
	assert.Equal(t, 6, f.reload(t, user.ID).Points)

	res, err = f.progress.MarkItemComplete(ctx, user, module.ID, model.ItemModule)
	require.NoError(t, err)
	assert.False(t, res.NewlyCompleted)
	assert.True(t, res.Progress.CompletedAt.Equal(firstCompletion))
	assert.Equal(t, 6, f.reload(t, user.ID).Points)

	records, err := f.progress.ListProgress(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMarkItemCompleteRejectsOtherTypes(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, "ada@example.com")

	_, err := f.progress.MarkItemComplete(context.Background(), user, model.GenerateUUID(), model.ItemQuiz)
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = f.progress.MarkItemComplete(context.Background(), user, model.GenerateUUID(), model.ItemResource)
	assert.ErrorIs(t, err, util.ErrResourceNotFound)

	_, err = f.progress.ListProgress(context.Background(), user.ID, model.ItemType("lesson"))
	assert.ErrorIs(t, err, util.ErrValidation)
}
