package model

type UserRole string

const (
	Learner UserRole = "learner"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	UUIDBase
	// ExternalAuthID is the subject of the identity provider token. Null until the account is linked.
	ExternalAuthID *string     `gorm:"size:64;uniqueIndex" json:"-"`
	Email          string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username       *string     `gorm:"size:64;uniqueIndex" json:"username"`
	IsActive       bool        `gorm:"not null" json:"isActive"`
	Role           UserRole    `gorm:"size:20;not null;default:'learner'" json:"role"`
	Points         int         `gorm:"not null;default:0;index" json:"points"`
	LevelID        *string     `gorm:"type:varchar(36)" json:"levelId"`
	Level          *UserLevel  `gorm:"foreignKey:LevelID;constraint:OnDelete:SET NULL" json:"level,omitempty"`
	Badges         []UserBadge `gorm:"foreignKey:UserID" json:"badges,omitempty"`
	Streak         *UserStreak `gorm:"foreignKey:UserID" json:"streak,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == Admin
}

// DisplayName falls back to the email when no username was chosen.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.Email
}
