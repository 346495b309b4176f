package service

import (
	"context"
	"strings"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IdentityService maps identity-provider subjects onto local user accounts.
type IdentityService struct {
	db    *gorm.DB
	users *repository.UserRepository
}

func NewIdentityService(db *gorm.DB, users *repository.UserRepository) *IdentityService {
	return &IdentityService{db: db, users: users}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetOrCreateIdentity returns the account linked to externalID. An unlinked account with the
// same email is linked; otherwise a fresh learner account is created.
func (s *IdentityService) GetOrCreateIdentity(ctx context.Context, externalID, email, username string) (*model.User, error) {
	if externalID == "" {
		return nil, util.Validation("token subject is required")
	}

	var user *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		found, err := repo.FindByExternalID(externalID)
		if err == nil {
			user = found
			return nil
		}
		if !isNotFound(err) {
			return util.Persistence("load user by external id", err)
		}

		email = normalizeEmail(email)
		if email == "" {
			return util.ErrMissingEmail
		}

		found, err = repo.FindByEmail(email)
		if err != nil && !isNotFound(err) {
			return util.Persistence("load user by email", err)
		}
		if found != nil {
			if found.ExternalAuthID != nil && *found.ExternalAuthID != externalID {
				return util.ErrEmailConflict
			}
			if found.ExternalAuthID == nil {
				found.ExternalAuthID = strPtr(externalID)
				if err := repo.Update(found); err != nil {
					return util.Persistence("link user", err)
				}
				logger.Log.Info("Linked existing account to identity", zap.String("user_id", found.ID))
			}
			user = found
			return nil
		}

		user = &model.User{
			ExternalAuthID: strPtr(externalID),
			Email:          email,
			IsActive:       true,
			Role:           model.Learner,
		}
		if username = strings.TrimSpace(username); username != "" {
			if _, err := repo.FindByUsername(username); isNotFound(err) {
				user.Username = strPtr(username)
			} else if err != nil {
				return util.Persistence("check username", err)
			}
		}
		if err := repo.Create(user); err != nil {
			return util.Persistence("create user", err)
		}
		logger.Log.Info("Created account for new identity", zap.String("user_id", user.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
