package app

import (
	"prepaena_backend/docs"
	"prepaena_backend/internal/config"
	"prepaena_backend/internal/middleware"
	"prepaena_backend/internal/util"
	"prepaena_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录，有令牌时识别用户)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(&cfg.Auth), middleware.ProfileMiddleware(a.repos.profile))
	a.registerUserRoutes(authGroup, c)

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)

	router.NoRoute(util.NotFound)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	public.Use(middleware.TryAuthMiddleware(&cfg.Auth), middleware.ProfileMiddleware(a.repos.profile))
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/plans", c.account.Plans)
		public.POST("/visitors", c.visitor.Record)
		public.GET("/practice-tests", c.quiz.PracticeTests)

		quiz := public.Group("/quiz")
		{
			quiz.GET("/daily", c.quiz.Daily)
			quiz.POST("/sessions", c.quiz.CreateSession)
			quiz.GET("/sessions/:id", c.quiz.GetSession)
			quiz.POST("/sessions/:id/start", c.quiz.Start)
			quiz.POST("/sessions/:id/answer", c.quiz.Answer)
			quiz.POST("/sessions/:id/next", c.quiz.Next)
			quiz.POST("/sessions/:id/prev", c.quiz.Prev)
			quiz.POST("/sessions/:id/finish", c.quiz.Finish)
		}
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.account.GetProfile)
	rg.PUT("/profile", c.account.UpdateProfile)

	rg.GET("/subscription", c.account.GetSubscription)
	rg.POST("/subscription", c.account.Subscribe)
	rg.DELETE("/subscription", c.account.CancelSubscription)

	rg.GET("/progress", c.account.Progress)
	rg.GET("/results/:id", c.account.Result)

	rg.POST("/quiz/sessions/:id/export", c.quiz.Export)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(&cfg.Auth),
		middleware.ProfileMiddleware(a.repos.profile),
		middleware.AdminMiddleware(&cfg.Auth, a.repos.profile),
	)
	{
		admin.GET("/questions", c.admin.ListQuestions)
		admin.POST("/questions/import", c.admin.ImportQuestions)
		admin.POST("/practice-tests/cache/clear", c.admin.ClearPracticeCache)
		admin.GET("/visitors/stats", c.admin.VisitorStats)
	}
}
