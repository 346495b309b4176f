package controller

import (
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService     *service.UserService
	ProgressService *service.ProgressService
}

func NewUserController(userService *service.UserService, progressService *service.ProgressService) *UserController {
	return &UserController{UserService: userService, ProgressService: progressService}
}

// @Summary Current user
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/v1/users/me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, user)
}

// @Summary Current user with points, level, badges and streak
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=service.UserDetails}
// @Router /api/v1/users/me/details [get]
func (c *UserController) GetMyDetails(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	details, err := c.UserService.GetDetails(ctx.Request.Context(), user.ID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, details)
}

// @Summary Update own email or username
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.UpdateMeRequest true "fields to change"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 409 {object} util.Response
// @Router /api/v1/users/me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateMeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.UserService.UpdateMe(ctx.Request.Context(), user.ID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// @Summary Own progress records
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param type query string false "module|resource|assignment|quiz"
// @Success 200 {object} util.Response{data=[]model.UserProgress}
// @Router /api/v1/users/me/progress [get]
func (c *UserController) GetMyProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	itemType := model.ItemType(ctx.Query("type"))
	if itemType != "" && !itemType.Valid() {
		util.BadRequest(ctx, "invalid item type")
		return
	}

	records, err := c.ProgressService.ListProgress(ctx.Request.Context(), user.ID, itemType)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

// @Summary Get user by id
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/v1/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	user, err := c.UserService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// @Summary List users
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, limit, offset := util.ParsePagination(ctx)
	users, total, err := c.UserService.List(ctx.Request.Context(), offset, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}
