package service

import (
	"context"
	"testing"

	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/testutil"
	"skillpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newIdentityService(t *testing.T) (*IdentityService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewIdentityService(db, repository.NewUserRepository(db)), db
}

func TestGetOrCreateIdentityCreatesLearner(t *testing.T) {
	s, _ := newIdentityService(t)
	ctx := context.Background()

	user, err := s.GetOrCreateIdentity(ctx, "sub-1", " Ada@Example.com ", "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, model.Learner, user.Role)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.Username)
	assert.Equal(t, "ada", *user.Username)

	again, err := s.GetOrCreateIdentity(ctx, "sub-1", "changed@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "ada@example.com", again.Email)
}

func TestGetOrCreateIdentitySkipsTakenUsername(t *testing.T) {
	s, _ := newIdentityService(t)
	ctx := context.Background()

	_, err := s.GetOrCreateIdentity(ctx, "sub-1", "ada@example.com", "ada")
	require.NoError(t, err)

	user, err := s.GetOrCreateIdentity(ctx, "sub-2", "other@example.com", "ada")
	require.NoError(t, err)
	assert.Nil(t, user.Username)
}

func TestGetOrCreateIdentityLinksByEmail(t *testing.T) {
	s, db := newIdentityService(t)
	ctx := context.Background()

	existing := &model.User{Email: "grace@example.com", IsActive: true, Role: model.Admin}
	require.NoError(t, db.Create(existing).Error)

	user, err := s.GetOrCreateIdentity(ctx, "sub-9", "GRACE@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, model.Admin, user.Role)
	require.NotNil(t, user.ExternalAuthID)
	assert.Equal(t, "sub-9", *user.ExternalAuthID)

	_, err = s.GetOrCreateIdentity(ctx, "sub-10", "grace@example.com", "")
	assert.ErrorIs(t, err, util.ErrEmailConflict)
}

func TestGetOrCreateIdentityNeedsEmail(t *testing.T) {
	s, _ := newIdentityService(t)

	_, err := s.GetOrCreateIdentity(context.Background(), "sub-1", "", "")
	assert.ErrorIs(t, err, util.ErrMissingEmail)

	_, err = s.GetOrCreateIdentity(context.Background(), "", "a@example.com", "")
	assert.ErrorIs(t, err, util.ErrValidation)
}
