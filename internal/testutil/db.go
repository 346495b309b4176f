// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"skillpath_backend/internal/model"
	"skillpath_backend/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens a migrated sqlite database in a per-test temp dir.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.InitNop()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func SeedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	sub := model.GenerateUUID()
	user := &model.User{
		ExternalAuthID: &sub,
		Email:          email,
		IsActive:       true,
		Role:           model.Learner,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// SeedCatalog inserts the default levels and the badges the engine awards.
func SeedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	levels := []model.UserLevel{
		{Name: "Novice", MinPoints: 0},
		{Name: "Apprentice", MinPoints: 50},
		{Name: "Practitioner", MinPoints: 150},
		{Name: "Expert", MinPoints: 400},
	}
	require.NoError(t, db.Create(&levels).Error)

	badges := []model.Badge{
		{Name: "Quiz Taker", Description: "Passed a quiz", Category: "quiz"},
		{Name: "Perfect Score", Description: "Answered every question correctly", Category: "quiz"},
		{Name: "Assignment Complete", Description: "Passed an assignment", Category: "assignment"},
		{Name: "Top Marks", Description: "Got full marks on an assignment", Category: "assignment"},
	}
	require.NoError(t, db.Create(&badges).Error)
}

// SeedQuiz builds roadmap -> module -> quiz with one question per entry in correct.
func SeedQuiz(t *testing.T, db *gorm.DB, reward int, correct [][]string) *model.Quiz {
	t.Helper()
	module := seedModule(t, db)

	quiz := &model.Quiz{ModuleID: module.ID, Title: "Go basics", PointsReward: reward}
	for i, keys := range correct {
		quiz.Questions = append(quiz.Questions, model.QuizQuestion{
			QuestionText:      "question",
			Options:           map[string]interface{}{"a": "A", "b": "B", "c": "C", "d": "D"},
			CorrectOptionKeys: keys,
			Order:             i,
		})
	}
	require.NoError(t, db.Create(quiz).Error)
	return quiz
}

func SeedAssignment(t *testing.T, db *gorm.DB, reward int) *model.Assignment {
	t.Helper()
	module := seedModule(t, db)
	assignment := &model.Assignment{ModuleID: module.ID, Title: "Build a CLI", Description: "cobra", PointsReward: reward}
	require.NoError(t, db.Create(assignment).Error)
	return assignment
}

func SeedModule(t *testing.T, db *gorm.DB) *model.RoadmapModule {
	t.Helper()
	return seedModule(t, db)
}

func seedModule(t *testing.T, db *gorm.DB) *model.RoadmapModule {
	roadmap := &model.Roadmap{Title: "Backend", Description: "Go backend", Topic: "go", IsActive: true}
	require.NoError(t, db.Create(roadmap).Error)
	module := &model.RoadmapModule{RoadmapID: roadmap.ID, Title: "Intro", Order: 1}
	require.NoError(t, db.Create(module).Error)
	return module
}
