package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// swagger:model
type UUIDBase struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

func GenerateUUID() string {
	return uuid.New().String()
}

// IsUUID reports whether s parses as a UUID. Path parameters are checked with it before hitting the database.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&UserLevel{},
		&Badge{},
		&User{},
		&UserBadge{},
		&UserStreak{},
		&Roadmap{},
		&RoadmapModule{},
		&LearningResource{},
		&Assignment{},
		&Quiz{},
		&QuizQuestion{},
		&UserProgress{},
		&UserQuizAttempt{},
		&UserAssignmentSubmission{},
		&JobDescription{},
		&GeneratedQuiz{},
		&GeneratedQuestion{},
		&GeneratedAnswer{},
	}
}
