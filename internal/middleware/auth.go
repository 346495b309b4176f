package middleware

import (
	"context"
	"strings"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware only verifies the identity-provider token and stores its claims.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseIdentityToken(tokenString, cfg)
		if err != nil {
			logger.Log.Debug("Rejected identity token", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextClaimsKey, claims)
		c.Next()
	}
}

type IdentityResolver interface {
	GetOrCreateIdentity(ctx context.Context, externalID, email, username string) (*model.User, error)
}

// IdentityMiddleware maps verified claims onto a local account. Must run after AuthMiddleware.
func IdentityMiddleware(identity IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetClaimsFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, err := identity.GetOrCreateIdentity(c.Request.Context(), claims.Subject, claims.Email, claims.Username())
		if err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		if !user.IsActive {
			util.HandleError(c, util.ErrInactiveUser)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, user)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			util.HandleError(c, util.ErrAdminRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RecoveryMiddleware turns panics into the standard 500 envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Log.Error("Panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		util.InternalServerError(c)
		c.Abort()
	})
}
