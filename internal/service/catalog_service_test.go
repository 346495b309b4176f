package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/testutil"
	"skillpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(t *testing.T, storageDir string) *CatalogService {
	t.Helper()
	db := testutil.NewTestDB(t)
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: storageDir}})
	users := repository.NewUserRepository(db)
	return NewCatalogService(db,
		repository.NewLevelRepository(db),
		repository.NewBadgeRepository(db),
		storage,
		NewLeaderboardService(db, users, nil, 0),
	)
}

func intPtr(i int) *int { return &i }

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog(strings.NewReader(`
levels:
  - name: Novice
    min_points: 0
  - name: Apprentice
    min_points: 50
badges:
  - name: Quiz Taker
    description: Passed a quiz
    category: quiz
`))
	require.NoError(t, err)
	assert.Len(t, catalog.Levels, 2)
	assert.Equal(t, 50, catalog.Levels[1].MinPoints)
	assert.Equal(t, "quiz", catalog.Badges[0].Category)

	empty, err := ParseCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Levels)
}

func TestParseCatalogRejectsBadInput(t *testing.T) {
	inputs := map[string]string{
		"unknown field":      "levels:\n  - name: A\n    points: 3\n",
		"duplicate name":     "levels:\n  - {name: A, min_points: 0}\n  - {name: A, min_points: 10}\n",
		"duplicate points":   "levels:\n  - {name: A, min_points: 0}\n  - {name: B, min_points: 0}\n",
		"negative threshold": "levels:\n  - {name: A, min_points: -1}\n",
		"unnamed badge":      "badges:\n  - {description: x}\n",
	}
	for name, body := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog(strings.NewReader(body))
			assert.ErrorIs(t, err, util.ErrConfiguration)
		})
	}
}

func TestSyncCatalog(t *testing.T) {
	s := newCatalogService(t, t.TempDir())
	ctx := context.Background()

	catalog := &CatalogFile{
		Levels: []CatalogLevel{{Name: "Novice", MinPoints: 0}, {Name: "Apprentice", MinPoints: 50}},
		Badges: []CatalogBadge{{Name: "Quiz Taker", Description: "Passed a quiz", Category: "quiz"}},
	}
	report, err := s.SyncCatalog(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, &SyncReport{LevelsCreated: 2, BadgesCreated: 1}, report)

	report, err = s.SyncCatalog(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, &SyncReport{}, report)

	// a level created through the API holds 100
	legacy := "Legacy"
	_, err = s.CreateLevel(ctx, LevelInput{Name: &legacy, MinPoints: intPtr(100)})
	require.NoError(t, err)

	catalog.Levels[1].MinPoints = 60
	catalog.Levels = append(catalog.Levels, CatalogLevel{Name: "Veteran", MinPoints: 100})
	catalog.Badges[0].Description = "Passed any quiz"
	report, err = s.SyncCatalog(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, &SyncReport{LevelsUpdated: 1, LevelsSkipped: 1, BadgesUpdated: 1}, report)

	levels, err := s.ListLevels(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, "Apprentice", levels[1].Name)
	assert.Equal(t, 60, levels[1].MinPoints)
	assert.Equal(t, "Legacy", levels[2].Name)
}

func TestLevelCRUD(t *testing.T) {
	s := newCatalogService(t, t.TempDir())
	ctx := context.Background()

	name := "Novice"
	level, err := s.CreateLevel(ctx, LevelInput{Name: &name, MinPoints: intPtr(0)})
	require.NoError(t, err)

	_, err = s.CreateLevel(ctx, LevelInput{Name: &name, MinPoints: intPtr(10)})
	assert.ErrorIs(t, err, util.ErrLevelExists)

	_, err = s.CreateLevel(ctx, LevelInput{Name: &name})
	assert.ErrorIs(t, err, util.ErrValidation)

	other := "Apprentice"
	_, err = s.CreateLevel(ctx, LevelInput{Name: &other, MinPoints: intPtr(0)})
	assert.ErrorIs(t, err, util.ErrLevelExists)

	updated, err := s.UpdateLevel(ctx, level.ID, LevelInput{MinPoints: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, "Novice", updated.Name)
	assert.Equal(t, 5, updated.MinPoints)

	_, err = s.UpdateLevel(ctx, level.ID, LevelInput{MinPoints: intPtr(-1)})
	assert.ErrorIs(t, err, util.ErrValidation)

	require.NoError(t, s.DeleteLevel(ctx, level.ID))
	_, err = s.GetLevel(ctx, level.ID)
	assert.ErrorIs(t, err, util.ErrLevelNotFound)
	assert.ErrorIs(t, s.DeleteLevel(ctx, level.ID), util.ErrNotFound)
}

func TestBadgeCRUD(t *testing.T) {
	s := newCatalogService(t, t.TempDir())
	ctx := context.Background()

	name := "Quiz Taker"
	category := "quiz"
	badge, err := s.CreateBadge(ctx, BadgeInput{Name: &name, Category: &category})
	require.NoError(t, err)

	_, err = s.CreateBadge(ctx, BadgeInput{Name: &name})
	assert.ErrorIs(t, err, util.ErrBadgeExists)

	desc := "Passed a quiz"
	updated, err := s.UpdateBadge(ctx, badge.ID, BadgeInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, "quiz", updated.Category)

	badges, err := s.ListBadges(ctx, "quiz", 0, 10)
	require.NoError(t, err)
	assert.Len(t, badges, 1)
	badges, err = s.ListBadges(ctx, "assignment", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, badges)

	require.NoError(t, s.DeleteBadge(ctx, badge.ID))
	_, err = s.GetBadge(ctx, badge.ID)
	assert.ErrorIs(t, err, util.ErrBadgeNotFound)
}

// 1x1 transparent png
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestUploadBadgeIcon(t *testing.T) {
	s := newCatalogService(t, t.TempDir())
	ctx := context.Background()

	name := "Top Marks"
	badge, err := s.CreateBadge(ctx, BadgeInput{Name: &name})
	require.NoError(t, err)

	updated, err := s.UploadBadgeIcon(ctx, badge.ID, "icon.png", bytes.NewReader(pngPixel), int64(len(pngPixel)))
	require.NoError(t, err)
	require.NotNil(t, updated.IconURL)
	assert.True(t, strings.HasPrefix(*updated.IconURL, "/uploads/"))

	_, err = s.UploadBadgeIcon(ctx, badge.ID, "notes.txt", strings.NewReader("plain text"), 10)
	assert.ErrorIs(t, err, util.ErrValidation)
}
