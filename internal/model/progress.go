package model

import (
	"time"

	"gorm.io/datatypes"
)

type ItemType string

const (
	ItemModule     ItemType = "module"
	ItemResource   ItemType = "resource"
	ItemAssignment ItemType = "assignment"
	ItemQuiz       ItemType = "quiz"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemModule, ItemResource, ItemAssignment, ItemQuiz:
		return true
	}
	return false
}

const (
	SubmissionSubmitted = "submitted"
	SubmissionPassed    = "passed"
	SubmissionFailed    = "failed"
)

// UserProgress marks one learning item as done for one user. CompletedAt is written once.
// swagger:model UserProgress
type UserProgress struct {
	UUIDBase
	UserID      string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_item" json:"userId"`
	ItemID      string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_item;index" json:"itemId"`
	ItemType    ItemType          `gorm:"size:20;not null;uniqueIndex:idx_user_item" json:"itemType"`
	CompletedAt *time.Time        `gorm:"index" json:"completedAt"`
	MetaData    datatypes.JSONMap `gorm:"column:meta_data" json:"metaData"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// UserQuizAttempt is never updated after insert.
type UserQuizAttempt struct {
	UUIDBase
	UserID      string         `gorm:"type:varchar(36);not null;index" json:"userId"`
	QuizID      string         `gorm:"type:varchar(36);not null;index" json:"quizId"`
	Score       float64        `gorm:"not null" json:"score"`
	Answers     datatypes.JSON `json:"answers"`
	Passed      bool           `gorm:"not null" json:"passed"`
	StartedAt   time.Time      `gorm:"not null" json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt"`
}

func (UserQuizAttempt) TableName() string {
	return "user_quiz_attempts"
}

type UserAssignmentSubmission struct {
	UUIDBase
	UserID            string      `gorm:"type:varchar(36);not null;index" json:"userId"`
	AssignmentID      string      `gorm:"type:varchar(36);not null;index" json:"assignmentId"`
	SubmittedAt       time.Time   `gorm:"not null" json:"submittedAt"`
	SubmissionContent *string     `gorm:"type:text" json:"submissionContent"`
	Status            string      `gorm:"size:20;not null;index" json:"status"`
	Grade             *float64    `json:"grade"`
	Feedback          *string     `gorm:"type:text" json:"feedback"`
	GradedAt          *time.Time  `json:"gradedAt"`
	Assignment        *Assignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
}

func (UserAssignmentSubmission) TableName() string {
	return "user_assignment_submissions"
}
