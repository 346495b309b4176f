package app

import (
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/middleware"
	"skillpath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.Auth), middleware.IdentityMiddleware(s.identity))
	{
		a.registerLearnerRoutes(v1, c)
		a.registerAdminRoutes(v1, c)
	}
}

func (a *App) registerLearnerRoutes(v1 *gin.RouterGroup, c *controllers) {
	users := v1.Group("/users")
	{
		users.GET("/me", c.user.GetMe)
		users.GET("/me/details", c.user.GetMyDetails)
		users.PUT("/me", c.user.UpdateMe)
		users.GET("/me/progress", c.user.GetMyProgress)
		users.GET("/:id", c.user.GetUser)
	}

	progress := v1.Group("/progress")
	{
		progress.POST("/resources/:id/complete", c.progress.CompleteResource)
		progress.POST("/modules/:id/complete", c.progress.CompleteModule)
		progress.POST("/quizzes/:id/submit", c.progress.SubmitQuiz)
		progress.GET("/quizzes/:id/attempts", c.progress.ListQuizAttempts)
		progress.POST("/assignments/:id/submit", c.progress.SubmitAssignment)
		progress.GET("/submissions", c.progress.ListSubmissions)
	}

	gamification := v1.Group("/gamification")
	{
		gamification.GET("/leaderboard", c.gamification.Leaderboard)
		gamification.GET("/levels", c.gamification.ListLevels)
		gamification.GET("/levels/:id", c.gamification.GetLevel)
		gamification.GET("/badges", c.gamification.ListBadges)
		gamification.GET("/badges/:id", c.gamification.GetBadge)
	}

	v1.GET("/roadmaps", c.roadmap.ListRoadmaps)
	v1.GET("/roadmaps/:id", c.roadmap.GetRoadmap)
	v1.GET("/quizzes/:id", c.roadmap.GetQuiz)
	v1.GET("/assignments/:id", c.roadmap.GetAssignment)

	aiQuiz := v1.Group("/ai-quiz")
	{
		aiQuiz.POST("/job-descriptions", c.quizGeneration.GenerateFromJobDescription)
		aiQuiz.GET("/job-descriptions", c.quizGeneration.ListJobDescriptions)
		aiQuiz.GET("/job-descriptions/:id", c.quizGeneration.GetJobDescription)
		aiQuiz.POST("/job-descriptions/:id/generate", c.quizGeneration.Regenerate)
		aiQuiz.GET("/quizzes", c.quizGeneration.ListQuizzes)
		aiQuiz.GET("/quizzes/:id", c.quizGeneration.GetQuiz)
		aiQuiz.POST("/match", c.quizGeneration.MatchQuizzes)
	}
}

func (a *App) registerAdminRoutes(v1 *gin.RouterGroup, c *controllers) {
	adminOnly := middleware.AdminMiddleware()

	v1.GET("/users", adminOnly, c.user.ListUsers)
	v1.PATCH("/progress/submissions/:id/grade", adminOnly, c.progress.GradeSubmission)
	v1.GET("/progress/submissions/pending", adminOnly, c.progress.PendingSubmissions)

	admin := v1.Group("/admin")
	admin.Use(adminOnly)
	{
		admin.POST("/levels", c.gamification.CreateLevel)
		admin.PUT("/levels/:id", c.gamification.UpdateLevel)
		admin.DELETE("/levels/:id", c.gamification.DeleteLevel)

		admin.POST("/badges", c.gamification.CreateBadge)
		admin.PUT("/badges/:id", c.gamification.UpdateBadge)
		admin.DELETE("/badges/:id", c.gamification.DeleteBadge)
		admin.POST("/badges/:id/icon", c.gamification.UploadBadgeIcon)

		admin.POST("/catalog/sync", c.gamification.SyncCatalog)

		admin.POST("/roadmaps", c.roadmap.CreateRoadmap)
		admin.PUT("/roadmaps/:id", c.roadmap.UpdateRoadmap)
		admin.DELETE("/roadmaps/:id", c.roadmap.DeleteRoadmap)
		admin.POST("/roadmaps/:id/modules", c.roadmap.AddModule)

		admin.PUT("/modules/:id", c.roadmap.UpdateModule)
		admin.DELETE("/modules/:id", c.roadmap.DeleteModule)
		admin.POST("/modules/:id/resources", c.roadmap.AddResource)
		admin.POST("/modules/:id/assignments", c.roadmap.AddAssignment)
		admin.POST("/modules/:id/quizzes", c.roadmap.AddQuiz)

		admin.PUT("/resources/:id", c.roadmap.UpdateResource)
		admin.DELETE("/resources/:id", c.roadmap.DeleteResource)
		admin.PUT("/assignments/:id", c.roadmap.UpdateAssignment)
		admin.DELETE("/assignments/:id", c.roadmap.DeleteAssignment)
		admin.PUT("/quizzes/:id", c.roadmap.UpdateQuiz)
		admin.DELETE("/quizzes/:id", c.roadmap.DeleteQuiz)
		admin.POST("/quizzes/:id/questions", c.roadmap.AddQuestion)
		admin.PUT("/questions/:id", c.roadmap.UpdateQuestion)
		admin.DELETE("/questions/:id", c.roadmap.DeleteQuestion)
	}
}
