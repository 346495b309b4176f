package controller

import (
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RoadmapController struct {
	RoadmapService *service.RoadmapService
}

func NewRoadmapController(roadmapService *service.RoadmapService) *RoadmapController {
	return &RoadmapController{RoadmapService: roadmapService}
}

func isAdmin(ctx *gin.Context) bool {
	user := util.GetUserFromContext(ctx)
	return user != nil && user.IsAdmin()
}

// @Summary List roadmaps
// @Tags Roadmaps
// @Security BearerAuth
// @Produce json
// @Param topic query string false "topic"
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/roadmaps [get]
func (c *RoadmapController) ListRoadmaps(ctx *gin.Context) {
	page, limit, offset := util.ParsePagination(ctx)

	// inactive roadmaps are visible to admins only, and only when asked for
	activeOnly := true
	if isAdmin(ctx) {
		if v := util.ParseBoolQuery(ctx, "activeOnly"); v != nil {
			activeOnly = *v
		}
	}

	roadmaps, total, err := c.RoadmapService.ListRoadmaps(ctx.Request.Context(), ctx.Query("topic"), activeOnly, offset, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: roadmaps, Total: total, Page: page, Limit: limit})
}

// @Summary Roadmap with modules, resources, assignments and quizzes
// @Tags Roadmaps
// @Security BearerAuth
// @Produce json
// @Param id path string true "roadmap id"
// @Success 200 {object} util.Response{data=model.Roadmap}
// @Router /api/v1/roadmaps/{id} [get]
func (c *RoadmapController) GetRoadmap(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	roadmap, err := c.RoadmapService.GetRoadmap(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !isAdmin(ctx) {
		if !roadmap.IsActive {
			util.HandleError(ctx, util.ErrRoadmapNotFound)
			return
		}
		service.HideAnswers(roadmap)
	}
	util.Success(ctx, roadmap)
}

// @Summary Quiz with its questions
// @Tags Roadmaps
// @Security BearerAuth
// @Produce json
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/v1/quizzes/{id} [get]
func (c *RoadmapController) GetQuiz(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	quiz, err := c.RoadmapService.GetQuiz(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !isAdmin(ctx) {
		service.HideQuizAnswers(quiz)
	}
	util.Success(ctx, quiz)
}

// @Summary Assignment
// @Tags Roadmaps
// @Security BearerAuth
// @Produce json
// @Param id path string true "assignment id"
// @Success 200 {object} util.Response{data=model.Assignment}
// @Router /api/v1/assignments/{id} [get]
func (c *RoadmapController) GetAssignment(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	assignment, err := c.RoadmapService.GetAssignment(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, assignment)
}

// @Summary Create a roadmap with nested content
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.CreateRoadmapRequest true "roadmap"
// @Success 201 {object} util.Response{data=model.Roadmap}
// @Router /api/v1/admin/roadmaps [post]
func (c *RoadmapController) CreateRoadmap(ctx *gin.Context) {
	var req service.CreateRoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	roadmap, err := c.RoadmapService.CreateRoadmap(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, roadmap)
}

// @Summary Update roadmap
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "roadmap id"
// @Param body body service.RoadmapPatch true "fields to change"
// @Success 200 {object} util.Response{data=model.Roadmap}
// @Router /api/v1/admin/roadmaps/{id} [put]
func (c *RoadmapController) UpdateRoadmap(ctx *gin.Context) {
	var req service.RoadmapPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	roadmap, err := c.RoadmapService.UpdateRoadmap(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, roadmap)
}

// @Summary Delete roadmap and its content
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "roadmap id"
// @Success 204
// @Router /api/v1/admin/roadmaps/{id} [delete]
func (c *RoadmapController) DeleteRoadmap(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := c.RoadmapService.DeleteRoadmap(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// @Summary Add module to roadmap
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "roadmap id"
// @Param body body service.ModuleRequest true "module"
// @Success 201 {object} util.Response{data=model.RoadmapModule}
// @Router /api/v1/admin/roadmaps/{id}/modules [post]
func (c *RoadmapController) AddModule(ctx *gin.Context) {
	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	module, err := c.RoadmapService.AddModule(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// @Summary Update module
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "module id"
// @Param body body service.ModulePatch true "fields to change"
// @Success 200 {object} util.Response{data=model.RoadmapModule}
// @Router /api/v1/admin/modules/{id} [put]
func (c *RoadmapController) UpdateModule(ctx *gin.Context) {
	var req service.ModulePatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	module, err := c.RoadmapService.UpdateModule(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// @Summary Delete module
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "module id"
// @Success 204
// @Router /api/v1/admin/modules/{id} [delete]
func (c *RoadmapController) DeleteModule(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := c.RoadmapService.DeleteModule(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// @Summary Add learning resource to module
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "module id"
// @Param body body service.ResourceRequest true "resource"
// @Success 201 {object} util.Response{data=model.LearningResource}
// @Router /api/v1/admin/modules/{id}/resources [post]
func (c *RoadmapController) AddResource(ctx *gin.Context) {
	var req service.ResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	resource, err := c.RoadmapService.AddResource(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, resource)
}

// @Summary Update learning resource
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "resource id"
// @Param body body service.ResourcePatch true "fields to change"
// @Success 200 {object} util.Response{data=model.LearningResource}
// @Router /api/v1/admin/resources/{id} [put]
func (c *RoadmapController) UpdateResource(ctx *gin.Context) {
	var req service.ResourcePatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	resource, err := c.RoadmapService.UpdateResource(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, resource)
}

// @Summary Delete learning resource
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "resource id"
// @Success 204
// @Router /api/v1/admin/resources/{id} [delete]
func (c *RoadmapController) DeleteResource(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := c.RoadmapService.DeleteResource(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// @Summary Add assignment to module
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "module id"
// @Param body body service.AssignmentRequest true "assignment"
// @Success 201 {object} util.Response{data=model.Assignment}
// @Router /api/v1/admin/modules/{id}/assignments [post]
func (c *RoadmapController) AddAssignment(ctx *gin.Context) {
	var req service.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	assignment, err := c.RoadmapService.AddAssignment(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, assignment)
}

// @Summary Update assignment
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "assignment id"
// @Param body body service.AssignmentPatch true "fields to change"
// @Success 200 {object} util.Response{data=model.Assignment}
// @Router /api/v1/admin/assignments/{id} [put]
func (c *RoadmapController) UpdateAssignment(ctx *gin.Context) {
	var req service.AssignmentPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	assignment, err := c.RoadmapService.UpdateAssignment(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, assignment)
}

// @Summary Delete assignment
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "assignment id"
// @Success 204
// @Router /api/v1/admin/assignments/{id} [delete]
func (c *RoadmapController) DeleteAssignment(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := c.RoadmapService.DeleteAssignment(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// @Summary Add quiz to module
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "module id"
// @Param body body service.QuizRequest true "quiz"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Router /api/v1/admin/modules/{id}/quizzes [post]
func (c *RoadmapController) AddQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	quiz, err := c.RoadmapService.AddQuiz(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary Update quiz
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "quiz id"
// @Param body body service.QuizPatch true "fields to change"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/v1/admin/quizzes/{id} [put]
func (c *RoadmapController) UpdateQuiz(ctx *gin.Context) {
	var req service.QuizPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	quiz, err := c.RoadmapService.UpdateQuiz(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary Delete quiz and its questions
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Success 204
// @Router /api/v1/admin/quizzes/{id} [delete]
func (c *RoadmapController) DeleteQuiz(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := c.RoadmapService.DeleteQuiz(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// @Summary Add question to quiz
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "quiz id"
// @Param body body service.QuestionRequest true "question"
// @Success 201 {object} util.Response{data=model.QuizQuestion}
// @Router /api/v1/admin/quizzes/{id}/questions [post]
func (c *RoadmapController) AddQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	question, err := c.RoadmapService.AddQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary Update question
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "question id"
// @Param body body service.QuestionPatch true "fields to change"
// @Success 200 {object} util.Response{data=model.QuizQuestion}
// @Router /api/v1/admin/questions/{id} [put]
func (c *RoadmapController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	question, err := c.RoadmapService.UpdateQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary Delete question
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "question id"
// @Success 204
// @Router /api/v1/admin/questions/{id} [delete]
func (c *RoadmapController) DeleteQuestion(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := c.RoadmapService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
