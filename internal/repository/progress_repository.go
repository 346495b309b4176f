package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) FindForItem(userID, itemID string, itemType model.ItemType) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.DB.
		Where("user_id = ? AND item_id = ? AND item_type = ?", userID, itemID, itemType).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) Create(progress *model.UserProgress) error {
	return r.DB.Create(progress).Error
}

func (r *ProgressRepository) UpdateCompletion(progress *model.UserProgress) error {
	return r.DB.Model(progress).Select("completed_at", "meta_data").Updates(progress).Error
}

func (r *ProgressRepository) UpdateMeta(progress *model.UserProgress) error {
	return r.DB.Model(progress).Select("meta_data").Updates(progress).Error
}

// ListByUser returns the newest completions first; itemType may be empty.
func (r *ProgressRepository) ListByUser(userID string, itemType model.ItemType) ([]model.UserProgress, error) {
	var records []model.UserProgress
	query := r.DB.Where("user_id = ?", userID)
	if itemType != "" {
		query = query.Where("item_type = ?", itemType)
	}
	err := query.Order("completed_at DESC").Find(&records).Error
	return records, err
}

func (r *ProgressRepository) CreateAttempt(attempt *model.UserQuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *ProgressRepository) ListAttempts(userID, quizID string) ([]model.UserQuizAttempt, error) {
	var attempts []model.UserQuizAttempt
	query := r.DB.Where("user_id = ?", userID)
	if quizID != "" {
		query = query.Where("quiz_id = ?", quizID)
	}
	err := query.Order("started_at DESC").Find(&attempts).Error
	return attempts, err
}
