package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type LevelRepository struct {
	DB *gorm.DB
}

func NewLevelRepository(db *gorm.DB) *LevelRepository {
	return &LevelRepository{DB: db}
}

func (r *LevelRepository) WithTx(tx *gorm.DB) *LevelRepository {
	return &LevelRepository{DB: tx}
}

// ListOrdered returns every level by ascending threshold.
func (r *LevelRepository) ListOrdered() ([]model.UserLevel, error) {
	var levels []model.UserLevel
	err := r.DB.Order("min_points ASC").Find(&levels).Error
	return levels, err
}

func (r *LevelRepository) List(offset, limit int) ([]model.UserLevel, error) {
	var levels []model.UserLevel
	err := r.DB.Order("min_points ASC").Offset(offset).Limit(limit).Find(&levels).Error
	return levels, err
}

func (r *LevelRepository) FindByID(id string) (*model.UserLevel, error) {
	var level model.UserLevel
	if err := r.DB.Where("id = ?", id).First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *LevelRepository) FindByName(name string) (*model.UserLevel, error) {
	var level model.UserLevel
	if err := r.DB.Where("name = ?", name).First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

// CountClashes counts other levels sharing the name or the threshold.
func (r *LevelRepository) CountClashes(name string, minPoints int, excludeID string) (int64, error) {
	var count int64
	query := r.DB.Model(&model.UserLevel{}).Where("(name = ? OR min_points = ?)", name, minPoints)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *LevelRepository) Create(level *model.UserLevel) error {
	return r.DB.Create(level).Error
}

func (r *LevelRepository) Update(level *model.UserLevel) error {
	return r.DB.Model(level).Select("name", "min_points").Updates(level).Error
}

// Delete removes the row for good so the name and threshold can be reused.
func (r *LevelRepository) Delete(id string) error {
	if err := r.DB.Model(&model.User{}).Where("level_id = ?", id).Update("level_id", nil).Error; err != nil {
		return err
	}
	return r.DB.Unscoped().Where("id = ?", id).Delete(&model.UserLevel{}).Error
}
