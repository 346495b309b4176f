package util

import (
	"skillpath_backend/internal/model"

	"github.com/gin-gonic/gin"
)

// GetUserFromContext returns the account resolved by the identity middleware.
func GetUserFromContext(c *gin.Context) *model.User {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}
