package model

import "time"

// UserLevel is a named tier unlocked at MinPoints.
// swagger:model UserLevel
type UserLevel struct {
	UUIDBase
	Name      string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	MinPoints int    `gorm:"uniqueIndex;not null" json:"minPoints"`
}

func (UserLevel) TableName() string {
	return "user_levels"
}

// swagger:model Badge
type Badge struct {
	UUIDBase
	Name        string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Category    string  `gorm:"size:50;index" json:"category"`
	IconURL     *string `gorm:"size:255" json:"iconUrl"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge links a user to an awarded badge, at most once per pair.
type UserBadge struct {
	UUIDBase
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_badge" json:"userId"`
	BadgeID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_badge;index" json:"badgeId"`
	AwardedAt time.Time `gorm:"not null" json:"awardedAt"`
	Badge     *Badge    `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

// UserStreak keeps consecutive-day activity. LastCompletedDate is stored as midnight UTC of the local calendar date.
type UserStreak struct {
	UserID            string     `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	CurrentStreak     int        `gorm:"not null;default:0" json:"currentStreak"`
	LongestStreak     int        `gorm:"not null;default:0" json:"longestStreak"`
	LastCompletedDate *time.Time `json:"lastCompletedDate"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (UserStreak) TableName() string {
	return "user_streaks"
}
