package model

import "gorm.io/datatypes"

// swagger:model Roadmap
type Roadmap struct {
	UUIDBase
	Title       string          `gorm:"size:200;not null;index" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Topic       string          `gorm:"size:100;index" json:"topic"`
	IsActive    bool            `gorm:"not null" json:"isActive"`
	Modules     []RoadmapModule `gorm:"foreignKey:RoadmapID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}

type RoadmapModule struct {
	UUIDBase
	RoadmapID   string             `gorm:"type:varchar(36);not null;index" json:"roadmapId"`
	Title       string             `gorm:"size:200;not null" json:"title"`
	Order       int                `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	Resources   []LearningResource `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"learningResources,omitempty"`
	Assignments []Assignment       `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Quizzes     []Quiz             `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"quizzes,omitempty"`
}

func (RoadmapModule) TableName() string {
	return "roadmap_modules"
}

type LearningResource struct {
	UUIDBase
	ModuleID             string  `gorm:"type:varchar(36);not null;index" json:"moduleId"`
	Title                string  `gorm:"size:200;not null" json:"title"`
	Type                 string  `gorm:"size:50;index" json:"type"`
	URL                  *string `gorm:"size:500" json:"url"`
	Content              *string `gorm:"type:text" json:"content"`
	Order                int     `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	EstimatedTimeMinutes *int    `json:"estimatedTimeMinutes"`
}

func (LearningResource) TableName() string {
	return "learning_resources"
}

type Assignment struct {
	UUIDBase
	ModuleID     string `gorm:"type:varchar(36);not null;index" json:"moduleId"`
	Title        string `gorm:"size:200;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	PointsReward int    `gorm:"not null" json:"pointsReward"`
}

func (Assignment) TableName() string {
	return "assignments"
}

type Quiz struct {
	UUIDBase
	ModuleID     string         `gorm:"type:varchar(36);not null;index" json:"moduleId"`
	Title        string         `gorm:"size:200;not null" json:"title"`
	PointsReward int            `gorm:"not null" json:"pointsReward"`
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion holds Options as key -> option text and the keys that make up the correct answer.
type QuizQuestion struct {
	UUIDBase
	QuizID            string                      `gorm:"type:varchar(36);not null;index" json:"quizId"`
	QuestionText      string                      `gorm:"type:text;not null" json:"questionText"`
	Options           datatypes.JSONMap           `json:"options"`
	CorrectOptionKeys datatypes.JSONSlice[string] `json:"correctOptionKeys"`
	AIHint            *string                     `gorm:"type:text" json:"aiHint"`
	Order             int                         `gorm:"column:sort_order;not null;default:0;index" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
