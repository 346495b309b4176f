package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) WithTx(tx *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: tx}
}

func (r *BadgeRepository) List(category string, offset, limit int) ([]model.Badge, error) {
	var badges []model.Badge
	query := r.DB.Model(&model.Badge{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&badges).Error
	return badges, err
}

func (r *BadgeRepository) FindByID(id string) (*model.Badge, error) {
	var badge model.Badge
	if err := r.DB.Where("id = ?", id).First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *BadgeRepository) FindByName(name string) (*model.Badge, error) {
	var badge model.Badge
	if err := r.DB.Where("name = ?", name).First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *BadgeRepository) CountByName(name, excludeID string) (int64, error) {
	var count int64
	query := r.DB.Model(&model.Badge{}).Where("name = ?", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *BadgeRepository) Create(badge *model.Badge) error {
	return r.DB.Create(badge).Error
}

func (r *BadgeRepository) Update(badge *model.Badge) error {
	return r.DB.Model(badge).Select("name", "description", "category", "icon_url").Updates(badge).Error
}

// Delete drops the badge together with every award of it.
func (r *BadgeRepository) Delete(id string) error {
	if err := r.DB.Unscoped().Where("badge_id = ?", id).Delete(&model.UserBadge{}).Error; err != nil {
		return err
	}
	return r.DB.Unscoped().Where("id = ?", id).Delete(&model.Badge{}).Error
}

// FindAward returns gorm.ErrRecordNotFound when the user does not hold the badge.
func (r *BadgeRepository) FindAward(userID, badgeID string) (*model.UserBadge, error) {
	var award model.UserBadge
	if err := r.DB.Where("user_id = ? AND badge_id = ?", userID, badgeID).First(&award).Error; err != nil {
		return nil, err
	}
	return &award, nil
}

// CreateAward inserts the award unless the user already holds the badge. It reports false
// on a conflict with idx_user_badge, which leaves the surrounding transaction usable.
func (r *BadgeRepository) CreateAward(award *model.UserBadge) (bool, error) {
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(award)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *BadgeRepository) ListAwards(userID string) ([]model.UserBadge, error) {
	var awards []model.UserBadge
	err := r.DB.Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&awards).Error
	return awards, err
}
