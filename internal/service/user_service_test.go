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

func TestUpdateMe(t *testing.T) {
	f := newFixture(t)
	s := NewUserService(f.db, f.users)
	ctx := context.Background()

	ada := testutil.SeedUser(t, f.db, "ada@example.com")
	grace := testutil.SeedUser(t, f.db, "grace@example.com")

	name := "ada"
	email := "ADA.L@example.com"
	user, err := s.UpdateMe(ctx, ada.ID, UpdateMeRequest{Email: &email, Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "ada.l@example.com", user.Email)
	assert.Equal(t, "ada", *user.Username)

	taken := "grace@example.com"
	_, err = s.UpdateMe(ctx, ada.ID, UpdateMeRequest{Email: &taken})
	assert.ErrorIs(t, err, util.ErrEmailConflict)

	_, err = s.UpdateMe(ctx, grace.ID, UpdateMeRequest{Username: &name})
	assert.ErrorIs(t, err, util.ErrUsernameTaken)

	// same value for the caller is not a conflict
	user, err = s.UpdateMe(ctx, ada.ID, UpdateMeRequest{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "ada", *user.Username)

	empty := ""
	user, err = s.UpdateMe(ctx, ada.ID, UpdateMeRequest{Username: &empty})
	require.NoError(t, err)
	assert.Nil(t, user.Username)
	assert.Nil(t, f.reload(t, ada.ID).Username)

	_, err = s.UpdateMe(ctx, model.GenerateUUID(), UpdateMeRequest{})
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestGetDetails(t *testing.T) {
	f := newFixture(t)
	s := NewUserService(f.db, f.users)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "ada@example.com")

	details, err := s.GetDetails(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, details.Points)
	assert.Nil(t, details.Level)
	assert.NotNil(t, details.Badges)
	assert.Zero(t, details.Streak.CurrentStreak)

	quiz := testutil.SeedQuiz(t, f.db, 60, [][]string{{"a"}})
	_, err = f.progress.SubmitQuiz(ctx, user, quiz.ID, answersFor(quiz, []string{"a"}))
	require.NoError(t, err)

	details, err = s.GetDetails(ctx, user.ID)
	require.NoError(t, err)
	// 60 + 5 perfect bonus + 1 streak day
	assert.Equal(t, 66, details.Points)
	require.NotNil(t, details.Level)
	assert.Equal(t, "Apprentice", details.Level.Name)
	assert.Len(t, details.Badges, 2)
	assert.Equal(t, 1, details.Streak.CurrentStreak)

	users, total, err := s.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, users, 1)
}
