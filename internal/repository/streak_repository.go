package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type StreakRepository struct {
	DB *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: db}
}

func (r *StreakRepository) WithTx(tx *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: tx}
}

func (r *StreakRepository) FindByUser(userID string) (*model.UserStreak, error) {
	var streak model.UserStreak
	if err := r.DB.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		return nil, err
	}
	return &streak, nil
}

func (r *StreakRepository) Create(streak *model.UserStreak) error {
	return r.DB.Create(streak).Error
}

func (r *StreakRepository) Update(streak *model.UserStreak) error {
	return r.DB.Model(streak).
		Select("current_streak", "longest_streak", "last_completed_date").
		Updates(streak).Error
}
