package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	unrankedLevel         = "Unranked"
	leaderboardKeyPrefix  = "skillpath:leaderboard:"
	DefaultLeaderboardTop = 10
)

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Points    int    `json:"points"`
	LevelName string `json:"levelName"`
}

// LeaderboardService ranks active learners. Pages are cached in redis when a client is configured.
type LeaderboardService struct {
	db    *gorm.DB
	users *repository.UserRepository
	redis *redis.Client
	ttl   time.Duration
}

func NewLeaderboardService(db *gorm.DB, users *repository.UserRepository, rdb *redis.Client, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{db: db, users: users, redis: rdb, ttl: ttl}
}

func leaderboardKey(offset, limit int) string {
	return fmt.Sprintf("%s%d:%d", leaderboardKeyPrefix, offset, limit)
}

func (s *LeaderboardService) Get(ctx context.Context, offset, limit int) ([]LeaderboardEntry, error) {
	if s.redis != nil && s.ttl > 0 {
		raw, err := s.redis.Get(ctx, leaderboardKey(offset, limit)).Bytes()
		if err == nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal(raw, &entries); err == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("Leaderboard cache read failed", zap.Error(err))
		}
	}
	return s.load(ctx, offset, limit)
}

// Refresh recomputes a page and overwrites its cache entry.
func (s *LeaderboardService) Refresh(ctx context.Context, offset, limit int) ([]LeaderboardEntry, error) {
	return s.load(ctx, offset, limit)
}

func (s *LeaderboardService) load(ctx context.Context, offset, limit int) ([]LeaderboardEntry, error) {
	users, err := s.users.WithTx(s.db.WithContext(ctx)).Leaderboard(offset, limit)
	if err != nil {
		return nil, util.Persistence("load leaderboard", err)
	}
	entries := BuildLeaderboard(users, offset)

	if s.redis != nil && s.ttl > 0 {
		raw, err := json.Marshal(entries)
		if err == nil {
			err = s.redis.Set(ctx, leaderboardKey(offset, limit), raw, s.ttl).Err()
		}
		if err != nil {
			logger.Log.Warn("Leaderboard cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// Invalidate drops every cached page, e.g. after level names change.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	iter := s.redis.Scan(ctx, 0, leaderboardKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("Leaderboard cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("Leaderboard cache invalidation failed", zap.Error(err))
	}
}

// BuildLeaderboard numbers users starting at offset+1 in the order given.
func BuildLeaderboard(users []model.User, offset int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		levelName := unrankedLevel
		if u.Level != nil {
			levelName = u.Level.Name
		}
		entries = append(entries, LeaderboardEntry{
			Rank:      offset + i + 1,
			UserID:    u.ID,
			Username:  u.DisplayName(),
			Points:    u.Points,
			LevelName: levelName,
		})
	}
	return entries
}
