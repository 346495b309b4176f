package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// WithTx returns a copy bound to tx so callers can compose several writes in one transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDWithDetails preloads level, badges and streak.
func (r *UserRepository) FindByIDWithDetails(id string) (*model.User, error) {
	var user model.User
	err := r.DB.
		Preload("Level").
		Preload("Badges", func(db *gorm.DB) *gorm.DB {
			return db.Order("awarded_at ASC")
		}).
		Preload("Badges.Badge").
		Preload("Streak").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByExternalID(externalID string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("external_auth_id = ?", externalID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update writes the user's own columns. Points are never written here, use AddPoints.
func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Model(user).
		Select("external_auth_id", "email", "username", "is_active", "role").
		Updates(user).Error
}

// AddPoints increments in SQL, never read-modify-write.
func (r *UserRepository) AddPoints(userID string, delta int) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", delta)).
		Error
}

func (r *UserRepository) SetLevel(userID string, levelID *string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("level_id", levelID).
		Error
}

func (r *UserRepository) List(offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	if err := r.DB.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Preload("Level").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, total, err
}

// Leaderboard orders active users by points, earliest account first on ties.
func (r *UserRepository) Leaderboard(offset, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Preload("Level").
		Where("is_active = ?", true).
		Order("points DESC").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, err
}
