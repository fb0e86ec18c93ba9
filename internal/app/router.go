package app

import (
	"interview_coach_backend/docs"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/middleware"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerInterviewRoutes(authGroup, c)
	}

	// 3. 管理员相关接口（题库维护）
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerInterviewRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile", c.auth.UpdateProfile)

	interviews := rg.Group("/interviews")
	{
		interviews.POST("/start", c.interview.StartInterview)
		interviews.GET("/history", c.interview.GetHistory)
		interviews.GET("/stats", c.interview.GetStats)
		interviews.GET("/improvement", c.interview.GetImprovement)
		interviews.GET("/recommendations", c.interview.GetRecommendations)
		interviews.POST("/audio", c.interview.UploadAudio)

		interviews.GET("/:id", c.interview.GetSession)
		interviews.GET("/:id/next", c.interview.GetNextQuestion)
		interviews.POST("/:id/answer", c.interview.SubmitAnswer)
		interviews.POST("/:id/complete", c.interview.CompleteInterview)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.RoleAdmin),
	)
	{
		questions := admin.Group("/questions")
		{
			questions.POST("", c.question.CreateQuestion)
			questions.GET("", c.question.ListQuestions)
			questions.GET("/:id", c.question.GetQuestion)
			questions.PUT("/:id", c.question.UpdateQuestion)
			questions.DELETE("/:id", c.question.DeleteQuestion)
		}
	}
}
