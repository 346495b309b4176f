package service

import (
	"context"
	"testing"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLeaderboard(t *testing.T) {
	name := "grace"
	users := []model.User{
		{Email: "grace@example.com", Username: &name, Points: 90, Level: &model.UserLevel{Name: "Apprentice"}},
		{Email: "linus@example.com", Points: 3},
	}

	entries := BuildLeaderboard(users, 20)
	require.Len(t, entries, 2)
	assert.Equal(t, 21, entries[0].Rank)
	assert.Equal(t, "grace", entries[0].Username)
	assert.Equal(t, "Apprentice", entries[0].LevelName)
	assert.Equal(t, 22, entries[1].Rank)
	assert.Equal(t, "linus@example.com", entries[1].Username)
	assert.Equal(t, "Unranked", entries[1].LevelName)

	assert.Empty(t, BuildLeaderboard(nil, 0))
}

func TestLeaderboardWithoutCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := repository.NewUserRepository(db)
	s := NewLeaderboardService(db, users, nil, 0)

	low := testutil.SeedUser(t, db, "low@example.com")
	high := testutil.SeedUser(t, db, "high@example.com")
	inactive := testutil.SeedUser(t, db, "gone@example.com")
	require.NoError(t, users.AddPoints(low.ID, 5))
	require.NoError(t, users.AddPoints(high.ID, 50))
	require.NoError(t, users.AddPoints(inactive.ID, 500))
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	entries, err := s.Get(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, high.ID, entries[0].UserID)
	assert.Equal(t, low.ID, entries[1].UserID)

	page, err := s.Get(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 2, page[0].Rank)

	// no-op without redis
	s.Invalidate(context.Background())
}
