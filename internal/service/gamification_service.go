package service

import (
	"context"
	"fmt"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"
	"skillpath_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Badge names the engine awards on its own.
const (
	BadgeQuizTaker          = "Quiz Taker"
	BadgePerfectScore       = "Perfect Score"
	BadgeAssignmentComplete = "Assignment Complete"
	BadgeTopMarks           = "Top Marks"
)

const maxStreakBonus = 5

type ReasonKind string

const (
	ReasonQuiz       ReasonKind = "quiz"
	ReasonAssignment ReasonKind = "assignment"
	ReasonModule     ReasonKind = "module"
	ReasonStreak     ReasonKind = "streak"
	ReasonAdmin      ReasonKind = "admin"
)

// Reason explains a points award. Kind feeds metrics, Text goes to the log.
type Reason struct {
	Kind ReasonKind
	Text string
}

// PointsAward is the result of one AwardPoints call.
type PointsAward struct {
	Delta   int              `json:"delta"`
	Total   int              `json:"total"`
	Reason  string           `json:"reason"`
	LevelUp *model.UserLevel `json:"levelUp,omitempty"`
}

// StreakUpdate is the result of one RecordActivity call. Bonus is nil on a repeat same-day call.
type StreakUpdate struct {
	Streak  model.UserStreak `json:"streak"`
	Changed bool             `json:"changed"`
	Bonus   *PointsAward     `json:"bonus,omitempty"`
}

// GamificationService owns points, levels, streaks and badge awards.
// Bind it to a transaction with WithTx to make its writes part of a larger operation.
type GamificationService struct {
	db      *gorm.DB
	users   *repository.UserRepository
	levels  *repository.LevelRepository
	badges  *repository.BadgeRepository
	streaks *repository.StreakRepository
	cfg     config.GamificationConfig
	clock   func() time.Time
	inTx    bool
}

func NewGamificationService(
	db *gorm.DB,
	users *repository.UserRepository,
	levels *repository.LevelRepository,
	badges *repository.BadgeRepository,
	streaks *repository.StreakRepository,
	cfg config.GamificationConfig,
) *GamificationService {
	return &GamificationService{
		db:      db,
		users:   users,
		levels:  levels,
		badges:  badges,
		streaks: streaks,
		cfg:     cfg,
		clock:   time.Now,
	}
}

func (s *GamificationService) WithTx(tx *gorm.DB) *GamificationService {
	return &GamificationService{
		db:      tx,
		users:   s.users.WithTx(tx),
		levels:  s.levels.WithTx(tx),
		badges:  s.badges.WithTx(tx),
		streaks: s.streaks.WithTx(tx),
		cfg:     s.cfg,
		clock:   s.clock,
		inTx:    true,
	}
}

func (s *GamificationService) run(ctx context.Context, fn func(g *GamificationService) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.WithTx(tx))
	})
}

// ResolveLevel picks the level with the greatest MinPoints not above points, or nil.
func ResolveLevel(levels []model.UserLevel, points int) *model.UserLevel {
	var best *model.UserLevel
	for i := range levels {
		l := &levels[i]
		if l.MinPoints > points {
			continue
		}
		if best == nil || l.MinPoints > best.MinPoints {
			best = l
		}
	}
	return best
}

// AwardPoints adds delta to the user's total and promotes the level when the new total
// crosses a higher threshold. delta <= 0 is a no-op. user is updated in place.
func (s *GamificationService) AwardPoints(ctx context.Context, user *model.User, delta int, reason Reason) (*PointsAward, error) {
	if delta <= 0 {
		return nil, nil
	}

	var award *PointsAward
	err := s.run(ctx, func(g *GamificationService) error {
		var err error
		award, err = g.awardPoints(user, delta, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return award, nil
}

func (s *GamificationService) awardPoints(user *model.User, delta int, reason Reason) (*PointsAward, error) {
	if err := s.users.AddPoints(user.ID, delta); err != nil {
		return nil, util.Persistence("add points", err)
	}

	fresh, err := s.users.FindByID(user.ID)
	if err != nil {
		return nil, lookupErr(err, util.ErrUserNotFound, "reload user")
	}
	user.Points = fresh.Points
	user.LevelID = fresh.LevelID

	award := &PointsAward{Delta: delta, Total: fresh.Points, Reason: reason.Text}
	monitoring.PointsAwarded.WithLabelValues(string(reason.Kind)).Add(float64(delta))
	logger.Log.Info("Points awarded",
		zap.String("user_id", user.ID),
		zap.Int("delta", delta),
		zap.String("reason", reason.Text),
		zap.Int("total", fresh.Points),
	)

	levelUp, err := s.promote(user)
	if err != nil {
		return nil, err
	}
	award.LevelUp = levelUp
	return award, nil
}

// promote moves the user to the resolved level if it sits strictly above the current one.
func (s *GamificationService) promote(user *model.User) (*model.UserLevel, error) {
	levels, err := s.levels.ListOrdered()
	if err != nil {
		return nil, util.Persistence("list levels", err)
	}

	resolved := ResolveLevel(levels, user.Points)
	if resolved == nil {
		if len(levels) == 0 {
			logger.Log.Warn("No levels configured, skipping level evaluation", zap.String("user_id", user.ID))
		}
		return nil, nil
	}

	if user.LevelID != nil {
		if *user.LevelID == resolved.ID {
			return nil, nil
		}
		for _, l := range levels {
			if l.ID == *user.LevelID && l.MinPoints >= resolved.MinPoints {
				return nil, nil
			}
		}
	}

	if err := s.users.SetLevel(user.ID, &resolved.ID); err != nil {
		return nil, util.Persistence("set level", err)
	}
	user.LevelID = &resolved.ID
	user.Level = resolved

	monitoring.LevelUps.Inc()
	logger.Log.Info("Level up",
		zap.String("user_id", user.ID),
		zap.String("level", resolved.Name),
		zap.Int("points", user.Points),
	)
	return resolved, nil
}

// AdvanceStreak applies one activity on day today to streak. today must already be a
// calendar date (see util.DateOf). It reports whether anything changed and the bonus owed.
func AdvanceStreak(streak model.UserStreak, today time.Time) (model.UserStreak, int, bool) {
	last := streak.LastCompletedDate
	if last != nil && util.SameDate(*last, today) {
		return streak, 0, false
	}

	var bonus int
	if last != nil && util.DateOf(*last).Equal(today.AddDate(0, 0, -1)) {
		streak.CurrentStreak++
		bonus = min(streak.CurrentStreak, maxStreakBonus)
	} else {
		streak.CurrentStreak = 1
		bonus = 1
	}

	streak.LongestStreak = max(streak.LongestStreak, streak.CurrentStreak)
	day := today
	streak.LastCompletedDate = &day
	return streak, bonus, true
}

// Today is the current calendar date in the configured time zone.
func (s *GamificationService) Today() time.Time {
	return util.DateOf(s.clock().In(s.cfg.Location()))
}

// RecordActivity counts today towards the user's streak and pays the streak bonus.
// Repeat calls on the same day change nothing.
func (s *GamificationService) RecordActivity(ctx context.Context, user *model.User) (*StreakUpdate, error) {
	var update *StreakUpdate
	err := s.run(ctx, func(g *GamificationService) error {
		var err error
		update, err = g.recordActivity(user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

func (s *GamificationService) recordActivity(user *model.User) (*StreakUpdate, error) {
	current, err := s.streaks.FindByUser(user.ID)
	isNew := false
	if err != nil {
		if !isNotFound(err) {
			return nil, util.Persistence("load streak", err)
		}
		current = &model.UserStreak{UserID: user.ID}
		isNew = true
	}

	next, bonus, changed := AdvanceStreak(*current, s.Today())
	if !changed {
		return &StreakUpdate{Streak: next}, nil
	}

	if isNew {
		err = s.streaks.Create(&next)
	} else {
		err = s.streaks.Update(&next)
	}
	if err != nil {
		return nil, util.Persistence("save streak", err)
	}

	if next.CurrentStreak == 1 {
		logger.Log.Info("Streak started", zap.String("user_id", user.ID))
	} else {
		logger.Log.Info("Streak continued", zap.String("user_id", user.ID), zap.Int("days", next.CurrentStreak))
	}

	update := &StreakUpdate{Streak: next, Changed: true}
	award, err := s.awardPoints(user, bonus, Reason{
		Kind: ReasonStreak,
		Text: fmt.Sprintf("Daily streak day %d", next.CurrentStreak),
	})
	if err != nil {
		return nil, err
	}
	update.Bonus = award
	user.Streak = &update.Streak
	return update, nil
}

// CheckAndAwardBadge grants the named badge. It returns nil when the user already holds it
// or when no such badge is defined, which is logged and not an error. checkExisting only
// adds a lookup before the insert; an existing award is never an error either way.
func (s *GamificationService) CheckAndAwardBadge(ctx context.Context, user *model.User, badgeName string, checkExisting bool) (*model.UserBadge, error) {
	var award *model.UserBadge
	err := s.run(ctx, func(g *GamificationService) error {
		var err error
		award, err = g.checkAndAwardBadge(user, badgeName, checkExisting)
		return err
	})
	if err != nil {
		return nil, err
	}
	return award, nil
}

func (s *GamificationService) checkAndAwardBadge(user *model.User, badgeName string, checkExisting bool) (*model.UserBadge, error) {
	badge, err := s.badges.FindByName(badgeName)
	if err != nil {
		if isNotFound(err) {
			logger.Log.Warn("Badge definition missing, nothing awarded",
				zap.String("badge", badgeName),
				zap.String("user_id", user.ID),
				zap.Error(util.ErrConfiguration),
			)
			return nil, nil
		}
		return nil, util.Persistence("load badge", err)
	}

	if checkExisting {
		_, err := s.badges.FindAward(user.ID, badge.ID)
		if err == nil {
			return nil, nil
		}
		if !isNotFound(err) {
			return nil, util.Persistence("check badge award", err)
		}
	}

	award := &model.UserBadge{
		UserID:    user.ID,
		BadgeID:   badge.ID,
		AwardedAt: s.clock().UTC(),
	}
	created, err := s.badges.CreateAward(award)
	if err != nil {
		return nil, util.Persistence("create badge award", err)
	}
	if !created {
		return nil, nil
	}
	award.Badge = badge

	monitoring.BadgesAwarded.WithLabelValues(badge.Name).Inc()
	logger.Log.Info("Badge awarded", zap.String("user_id", user.ID), zap.String("badge", badge.Name))
	return award, nil
}
