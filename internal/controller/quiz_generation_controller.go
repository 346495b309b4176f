package controller

import (
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizGenerationController struct {
	QuizGenerationService *service.QuizGenerationService
}

func NewQuizGenerationController(s *service.QuizGenerationService) *QuizGenerationController {
	return &QuizGenerationController{QuizGenerationService: s}
}

type JobDescriptionRequest struct {
	Text string `json:"text" binding:"required"`
}

type MatchQuizzesRequest struct {
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

// @Summary Generate a quiz from a job description
// @Tags AI Quiz
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body JobDescriptionRequest true "job description"
// @Success 201 {object} util.Response{data=model.JobDescription}
// @Failure 502 {object} util.Response
// @Router /api/v1/ai-quiz/job-descriptions [post]
func (c *QuizGenerationController) GenerateFromJobDescription(ctx *gin.Context) {
	var req JobDescriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	jd, err := c.QuizGenerationService.GenerateFromJobDescription(ctx.Request.Context(), req.Text)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, jd)
}

// @Summary Retry quiz generation for a stored job description
// @Tags AI Quiz
// @Security BearerAuth
// @Produce json
// @Param id path string true "job description id"
// @Success 201 {object} util.Response{data=model.GeneratedQuiz}
// @Failure 409 {object} util.Response
// @Router /api/v1/ai-quiz/job-descriptions/{id}/generate [post]
func (c *QuizGenerationController) Regenerate(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	quiz, err := c.QuizGenerationService.GenerateForExisting(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary List job descriptions
// @Tags AI Quiz
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.JobDescription}
// @Router /api/v1/ai-quiz/job-descriptions [get]
func (c *QuizGenerationController) ListJobDescriptions(ctx *gin.Context) {
	_, limit, offset := util.ParsePagination(ctx)
	jds, err := c.QuizGenerationService.ListJobDescriptions(ctx.Request.Context(), offset, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, jds)
}

// @Summary Get job description with its quiz
// @Tags AI Quiz
// @Security BearerAuth
// @Produce json
// @Param id path string true "job description id"
// @Success 200 {object} util.Response{data=model.JobDescription}
// @Router /api/v1/ai-quiz/job-descriptions/{id} [get]
func (c *QuizGenerationController) GetJobDescription(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	jd, err := c.QuizGenerationService.GetJobDescription(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, jd)
}

// @Summary List generated quizzes
// @Tags AI Quiz
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.GeneratedQuiz}
// @Router /api/v1/ai-quiz/quizzes [get]
func (c *QuizGenerationController) ListQuizzes(ctx *gin.Context) {
	_, limit, offset := util.ParsePagination(ctx)
	quizzes, err := c.QuizGenerationService.ListQuizzes(ctx.Request.Context(), offset, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// @Summary Get generated quiz with questions and answers
// @Tags AI Quiz
// @Security BearerAuth
// @Produce json
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response{data=model.GeneratedQuiz}
// @Router /api/v1/ai-quiz/quizzes/{id} [get]
func (c *QuizGenerationController) GetQuiz(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	quiz, err := c.QuizGenerationService.GetQuiz(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary Rank generated quizzes against text or tags
// @Tags AI Quiz
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body MatchQuizzesRequest true "text and/or tags"
// @Success 200 {object} util.Response{data=[]service.QuizMatch}
// @Router /api/v1/ai-quiz/match [post]
func (c *QuizGenerationController) MatchQuizzes(ctx *gin.Context) {
	var req MatchQuizzesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	matches, err := c.QuizGenerationService.MatchQuizzes(ctx.Request.Context(), req.Text, req.Tags)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, matches)
}
