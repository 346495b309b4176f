package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = config.AuthConfig{
	JWTSecret: "test-secret-with-enough-length-000",
	Audience:  "authenticated",
}

type fakeResolver struct {
	user *model.User
	err  error
	seen string
}

func (f *fakeResolver) GetOrCreateIdentity(_ context.Context, externalID, _, _ string) (*model.User, error) {
	f.seen = externalID
	return f.user, f.err
}

func newRouter(resolver IdentityResolver, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger.InitNop()

	r := gin.New()
	r.Use(RecoveryMiddleware())
	group := r.Group("/api", AuthMiddleware(testAuth), IdentityMiddleware(resolver))
	handler := func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c).ID)
	}
	if admin {
		group.GET("/admin", AdminMiddleware(), handler)
	}
	group.GET("/me", handler)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func token(t *testing.T, cfg config.AuthConfig, ttl time.Duration) string {
	t.Helper()
	tok, err := util.GenerateIdentityToken(cfg, "sub-1", "ada@example.com", ttl)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	r := newRouter(&fakeResolver{user: &model.User{IsActive: true}}, false)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", token(t, testAuth, -time.Minute)).Code)

	wrongSecret := testAuth
	wrongSecret.JWTSecret = "another-secret-with-enough-length"
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", token(t, wrongSecret, time.Hour)).Code)

	wrongAudience := testAuth
	wrongAudience.Audience = "anon"
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", token(t, wrongAudience, time.Hour)).Code)
}

func TestIdentityMiddlewareResolvesUser(t *testing.T) {
	user := &model.User{IsActive: true, Role: model.Learner}
	user.ID = "user-1"
	resolver := &fakeResolver{user: user}
	r := newRouter(resolver, true)

	w := do(r, "/api/me", token(t, testAuth, time.Hour))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sub-1", resolver.seen)

	var body util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body.Data)

	// query token works for clients that cannot set headers
	w = do(r, "/api/me?token="+token(t, testAuth, time.Hour), "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusForbidden, do(r, "/api/admin", token(t, testAuth, time.Hour)).Code)

	user.Role = model.Admin
	assert.Equal(t, http.StatusOK, do(r, "/api/admin", token(t, testAuth, time.Hour)).Code)
}

func TestIdentityMiddlewareErrors(t *testing.T) {
	inactive := newRouter(&fakeResolver{user: &model.User{IsActive: false}}, false)
	assert.Equal(t, http.StatusForbidden, do(inactive, "/api/me", token(t, testAuth, time.Hour)).Code)

	conflict := newRouter(&fakeResolver{err: util.ErrEmailConflict}, false)
	assert.Equal(t, http.StatusConflict, do(conflict, "/api/me", token(t, testAuth, time.Hour)).Code)

	missing := newRouter(&fakeResolver{err: util.ErrMissingEmail}, false)
	assert.Equal(t, http.StatusBadRequest, do(missing, "/api/me", token(t, testAuth, time.Hour)).Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	r := newRouter(&fakeResolver{}, false)
	w := do(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
