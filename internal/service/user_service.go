package service

import (
	"context"
	"strings"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"

	"gorm.io/gorm"
)

// UpdateMeRequest is a merge-patch of the caller's own profile.
type UpdateMeRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Username *string `json:"username" binding:"omitempty,min=3,max=64"`
}

// UserDetails is the gamification view of a learner.
type UserDetails struct {
	User   *model.User       `json:"user"`
	Points int               `json:"points"`
	Level  *model.UserLevel  `json:"level"`
	Badges []model.UserBadge `json:"badges"`
	Streak model.UserStreak  `json:"streak"`
}

type UserService struct {
	db    *gorm.DB
	users *repository.UserRepository
}

func NewUserService(db *gorm.DB, users *repository.UserRepository) *UserService {
	return &UserService{db: db, users: users}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.WithTx(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrUserNotFound, "load user")
	}
	return user, nil
}

func (s *UserService) GetDetails(ctx context.Context, id string) (*UserDetails, error) {
	user, err := s.users.WithTx(s.db.WithContext(ctx)).FindByIDWithDetails(id)
	if err != nil {
		return nil, lookupErr(err, util.ErrUserNotFound, "load user details")
	}

	details := &UserDetails{
		User:   user,
		Points: user.Points,
		Level:  user.Level,
		Badges: user.Badges,
		Streak: model.UserStreak{UserID: user.ID},
	}
	if details.Badges == nil {
		details.Badges = []model.UserBadge{}
	}
	if user.Streak != nil {
		details.Streak = *user.Streak
	}
	return details, nil
}

func (s *UserService) UpdateMe(ctx context.Context, userID string, req UpdateMeRequest) (*model.User, error) {
	var user *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		var err error
		user, err = repo.FindByID(userID)
		if err != nil {
			return lookupErr(err, util.ErrUserNotFound, "load user")
		}

		if req.Email != nil {
			email := normalizeEmail(*req.Email)
			if email == "" {
				return util.Validation("email must not be empty")
			}
			if email != user.Email {
				other, err := repo.FindByEmail(email)
				if err != nil && !isNotFound(err) {
					return util.Persistence("check email", err)
				}
				if other != nil && other.ID != user.ID {
					return util.ErrEmailConflict
				}
				user.Email = email
			}
		}

		if req.Username != nil {
			username := strings.TrimSpace(*req.Username)
			if username == "" {
				user.Username = nil
			} else {
				other, err := repo.FindByUsername(username)
				if err != nil && !isNotFound(err) {
					return util.Persistence("check username", err)
				}
				if other != nil && other.ID != user.ID {
					return util.ErrUsernameTaken
				}
				user.Username = &username
			}
		}

		if err := repo.Update(user); err != nil {
			return util.Persistence("update user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	users, total, err := s.users.WithTx(s.db.WithContext(ctx)).List(offset, limit)
	if err != nil {
		return nil, 0, util.Persistence("list users", err)
	}
	return users, total, nil
}
