package model

import "gorm.io/datatypes"

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// JobDescription is the raw text a quiz was generated from.
type JobDescription struct {
	UUIDBase
	OriginalText  string         `gorm:"type:text;not null" json:"originalText"`
	GeneratedQuiz *GeneratedQuiz `gorm:"foreignKey:SourceJDID" json:"generatedQuiz,omitempty"`
}

func (JobDescription) TableName() string {
	return "job_descriptions"
}

type GeneratedQuiz struct {
	UUIDBase
	Title            string                      `gorm:"size:255;not null" json:"title"`
	Description      *string                     `gorm:"type:text" json:"description"`
	Difficulty       Difficulty                  `gorm:"size:20;not null" json:"difficulty"`
	TimeLimitSeconds int                         `gorm:"not null" json:"timeLimitSeconds"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	SourceJDID       *string                     `gorm:"type:varchar(36);uniqueIndex" json:"sourceJdId"`
	Questions        []GeneratedQuestion         `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (GeneratedQuiz) TableName() string {
	return "generated_quizzes"
}

type GeneratedQuestion struct {
	UUIDBase
	QuizID       string            `gorm:"type:varchar(36);not null;index" json:"quizId"`
	Text         string            `gorm:"type:text;not null" json:"text"`
	QuestionType QuestionType      `gorm:"size:20;not null" json:"questionType"`
	Difficulty   Difficulty        `gorm:"size:20;not null" json:"difficulty"`
	Answers      []GeneratedAnswer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (GeneratedQuestion) TableName() string {
	return "generated_questions"
}

type GeneratedAnswer struct {
	UUIDBase
	QuestionID string `gorm:"type:varchar(36);not null;index" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null" json:"isCorrect"`
}

func (GeneratedAnswer) TableName() string {
	return "generated_answers"
}
