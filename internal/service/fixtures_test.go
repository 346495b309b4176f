package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu       sync.Mutex
	outcomes []*Outcome
}

func (n *recordingNotifier) Notify(_ context.Context, _ *model.User, outcome *Outcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, outcome)
}

type fixture struct {
	db           *gorm.DB
	users        *repository.UserRepository
	gamification *GamificationService
	progress     *ProgressService
	notifier     *recordingNotifier
	now          time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)

	cfg, err := config.NewGamificationConfig("UTC", 5)
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		notifier: &recordingNotifier{},
		now:      time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.gamification = NewGamificationService(db,
		f.users,
		repository.NewLevelRepository(db),
		repository.NewBadgeRepository(db),
		repository.NewStreakRepository(db),
		cfg,
	)
	f.gamification.clock = clock

	f.progress = NewProgressService(db,
		f.users,
		repository.NewRoadmapRepository(db),
		repository.NewProgressRepository(db),
		repository.NewSubmissionRepository(db),
		f.gamification,
		f.notifier,
		cfg,
	)
	f.progress.clock = clock
	return f
}

func (f *fixture) reload(t *testing.T, id string) *model.User {
	t.Helper()
	u, err := f.users.FindByID(id)
	require.NoError(t, err)
	return u
}

func (f *fixture) badgeNames(t *testing.T, userID string) []string {
	t.Helper()
	var names []string
	err := f.db.Table("user_badges").
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ?", userID).
		Order("badges.name").
		Pluck("badges.name", &names).Error
	require.NoError(t, err)
	return names
}
