package controller

import (
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// idParam returns the :id path parameter. Anything that is not a UUID is answered with 400
// before a query is issued.
func idParam(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")
	if !model.IsUUID(id) {
		util.BadRequest(ctx, "invalid id")
		return "", false
	}
	return id, true
}
