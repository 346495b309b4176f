package controller

import (
	"net/http"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const maxIconSize = 2 << 20

// GamificationController serves the leaderboard and the level/badge catalog.
type GamificationController struct {
	CatalogService     *service.CatalogService
	LeaderboardService *service.LeaderboardService
	Config             *config.Config
}

func NewGamificationController(catalog *service.CatalogService, leaderboard *service.LeaderboardService, cfg *config.Config) *GamificationController {
	return &GamificationController{CatalogService: catalog, LeaderboardService: leaderboard, Config: cfg}
}

// @Summary Leaderboard
// @Tags Gamification
// @Security BearerAuth
// @Produce json
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/v1/gamification/leaderboard [get]
func (c *GamificationController) Leaderboard(ctx *gin.Context) {
	_, limit, offset := util.ParsePagination(ctx)
	entries, err := c.LeaderboardService.Get(ctx.Request.Context(), offset, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary List levels by threshold
// @Tags Gamification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.UserLevel}
// @Router /api/v1/gamification/levels [get]
func (c *GamificationController) ListLevels(ctx *gin.Context) {
	_, limit, offset := util.ParsePagination(ctx)
	levels, err := c.CatalogService.ListLevels(ctx.Request.Context(), offset, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, levels)
}

// @Summary Get level
// @Tags Gamification
// @Security BearerAuth
// @Produce json
// @Param id path string true "level id"
// @Success 200 {object} util.Response{data=model.UserLevel}
// @Router /api/v1/gamification/levels/{id} [get]
func (c *GamificationController) GetLevel(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	level, err := c.CatalogService.GetLevel(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, level)
}

// @Summary Create level
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.LevelInput true "level"
// @Success 201 {object} util.Response{data=model.UserLevel}
// @Failure 409 {object} util.Response
// @Router /api/v1/admin/levels [post]
func (c *GamificationController) CreateLevel(ctx *gin.Context) {
	var req service.LevelInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	level, err := c.CatalogService.CreateLevel(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, level)
}

// @Summary Update level
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "level id"
// @Param body body service.LevelInput true "fields to change"
// @Success 200 {object} util.Response{data=model.UserLevel}
// @Router /api/v1/admin/levels/{id} [put]
func (c *GamificationController) UpdateLevel(ctx *gin.Context) {
	var req service.LevelInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	level, err := c.CatalogService.UpdateLevel(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, level)
}

// @Summary Delete level
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "level id"
// @Success 204
// @Router /api/v1/admin/levels/{id} [delete]
func (c *GamificationController) DeleteLevel(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := c.CatalogService.DeleteLevel(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// @Summary List badges
// @Tags Gamification
// @Security BearerAuth
// @Produce json
// @Param category query string false "category"
// @Success 200 {object} util.Response{data=[]model.Badge}
// @Router /api/v1/gamification/badges [get]
func (c *GamificationController) ListBadges(ctx *gin.Context) {
	_, limit, offset := util.ParsePagination(ctx)
	badges, err := c.CatalogService.ListBadges(ctx.Request.Context(), ctx.Query("category"), offset, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// @Summary Get badge
// @Tags Gamification
// @Security BearerAuth
// @Produce json
// @Param id path string true "badge id"
// @Success 200 {object} util.Response{data=model.Badge}
// @Router /api/v1/gamification/badges/{id} [get]
func (c *GamificationController) GetBadge(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	badge, err := c.CatalogService.GetBadge(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, badge)
}

// @Summary Create badge
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.BadgeInput true "badge"
// @Success 201 {object} util.Response{data=model.Badge}
// @Failure 409 {object} util.Response
// @Router /api/v1/admin/badges [post]
func (c *GamificationController) CreateBadge(ctx *gin.Context) {
	var req service.BadgeInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	badge, err := c.CatalogService.CreateBadge(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, badge)
}

// @Summary Update badge
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "badge id"
// @Param body body service.BadgeInput true "fields to change"
// @Success 200 {object} util.Response{data=model.Badge}
// @Router /api/v1/admin/badges/{id} [put]
func (c *GamificationController) UpdateBadge(ctx *gin.Context) {
	var req service.BadgeInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	badge, err := c.CatalogService.UpdateBadge(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, badge)
}

// @Summary Delete badge
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "badge id"
// @Success 204
// @Router /api/v1/admin/badges/{id} [delete]
func (c *GamificationController) DeleteBadge(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := c.CatalogService.DeleteBadge(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// @Summary Upload badge icon
// @Tags Admin
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "badge id"
// @Param file formData file true "icon image"
// @Success 200 {object} util.Response{data=model.Badge}
// @Router /api/v1/admin/badges/{id}/icon [post]
func (c *GamificationController) UploadBadgeIcon(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if file.Size > maxIconSize {
		util.Error(ctx, http.StatusRequestEntityTooLarge, "icon is larger than 2MB")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	id, ok := idParam(ctx)
	if !ok {
		return
	}
	badge, err := c.CatalogService.UploadBadgeIcon(ctx.Request.Context(), id, file.Filename, src, file.Size)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, badge)
}

// @Summary Re-sync levels and badges from the catalog file
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=service.SyncReport}
// @Router /api/v1/admin/catalog/sync [post]
func (c *GamificationController) SyncCatalog(ctx *gin.Context) {
	report, err := c.CatalogService.SyncFromFile(ctx.Request.Context(), c.Config.Gamification.CatalogPath)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
