package controller

import (
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type QuizSubmissionRequest struct {
	// question id -> chosen option keys
	Answers map[string][]string `json:"answers"`
}

type AssignmentSubmissionRequest struct {
	SubmissionContent *string `json:"submissionContent"`
}

func (c *ProgressController) complete(ctx *gin.Context, itemType model.ItemType) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := idParam(ctx)
	if !ok {
		return
	}
	result, err := c.ProgressService.MarkItemComplete(ctx.Request.Context(), user, id, itemType)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Mark a learning resource complete
// @Tags Progress
// @Security BearerAuth
// @Produce json
// @Param id path string true "resource id"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Router /api/v1/progress/resources/{id}/complete [post]
func (c *ProgressController) CompleteResource(ctx *gin.Context) {
	c.complete(ctx, model.ItemResource)
}

// @Summary Mark a module complete
// @Tags Progress
// @Security BearerAuth
// @Produce json
// @Param id path string true "module id"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Router /api/v1/progress/modules/{id}/complete [post]
func (c *ProgressController) CompleteModule(ctx *gin.Context) {
	c.complete(ctx, model.ItemModule)
}

// @Summary Submit quiz answers
// @Tags Progress
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "quiz id"
// @Param body body QuizSubmissionRequest true "answers"
// @Success 200 {object} util.Response{data=service.QuizResult}
// @Failure 400 {object} util.Response
// @Router /api/v1/progress/quizzes/{id}/submit [post]
func (c *ProgressController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req QuizSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, ok := idParam(ctx)
	if !ok {
		return
	}
	result, err := c.ProgressService.SubmitQuiz(ctx.Request.Context(), user, id, req.Answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Submit an assignment
// @Tags Progress
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "assignment id"
// @Param body body AssignmentSubmissionRequest false "submission"
// @Success 201 {object} util.Response{data=service.SubmissionResult}
// @Router /api/v1/progress/assignments/{id}/submit [post]
func (c *ProgressController) SubmitAssignment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AssignmentSubmissionRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	id, ok := idParam(ctx)
	if !ok {
		return
	}
	result, err := c.ProgressService.SubmitAssignment(ctx.Request.Context(), user, id, req.SubmissionContent)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary Grade a submission
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "submission id"
// @Param body body service.GradeInput true "grade"
// @Success 200 {object} util.Response{data=service.SubmissionResult}
// @Failure 409 {object} util.Response
// @Router /api/v1/progress/submissions/{id}/grade [patch]
func (c *ProgressController) GradeSubmission(ctx *gin.Context) {
	var req service.GradeInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, ok := idParam(ctx)
	if !ok {
		return
	}
	result, err := c.ProgressService.GradeAssignment(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Submissions waiting for a grade
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.UserAssignmentSubmission}
// @Router /api/v1/progress/submissions/pending [get]
func (c *ProgressController) PendingSubmissions(ctx *gin.Context) {
	_, limit, offset := util.ParsePagination(ctx)
	subs, err := c.ProgressService.PendingSubmissions(ctx.Request.Context(), offset, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// @Summary Own attempts at a quiz
// @Tags Progress
// @Security BearerAuth
// @Produce json
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response{data=[]model.UserQuizAttempt}
// @Router /api/v1/progress/quizzes/{id}/attempts [get]
func (c *ProgressController) ListQuizAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	attempts, err := c.ProgressService.ListQuizAttempts(ctx.Request.Context(), user.ID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// @Summary Own submissions, optionally for one assignment
// @Tags Progress
// @Security BearerAuth
// @Produce json
// @Param assignmentId query string false "assignment id"
// @Success 200 {object} util.Response{data=[]model.UserAssignmentSubmission}
// @Router /api/v1/progress/submissions [get]
func (c *ProgressController) ListSubmissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	subs, err := c.ProgressService.ListSubmissions(ctx.Request.Context(), user.ID, ctx.Query("assignmentId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}
