package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParsePagination reads ?page=&limit= (or ?skip=) with sane bounds.
func ParsePagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	offset = (page - 1) * limit
	if skip, err := strconv.Atoi(c.Query("skip")); err == nil && skip >= 0 {
		offset = skip
	}
	return page, limit, offset
}

func ParseBoolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
