package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/phishguard/awareness-service/internal/auth"
	"github.com/phishguard/awareness-service/internal/services"
	"github.com/phishguard/awareness-service/internal/utils"
)

type HandlerManager struct {
	authService auth.Service

	authHandler      *AuthHandler
	quizHandler      *QuizHandler
	templateHandler  *TemplateHandler
	campaignHandler  *CampaignHandler
	profileHandler   *ProfileHandler
	eventHandler     *EventHandler
	dashboardHandler *DashboardHandler
	reportHandler    *ReportHandler
}

type Services struct {
	Auth      auth.Service
	Quiz      services.QuizService
	Template  services.TemplateService
	Campaign  services.CampaignService
	Profile   services.ProfileService
	Event     services.EventService
	Dashboard services.DashboardService
	Report    services.ReportService
}

func NewHandlerManager(svcs Services, validator *utils.Validator, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authService:      svcs.Auth,
		authHandler:      NewAuthHandler(svcs.Auth, validator, logger),
		quizHandler:      NewQuizHandler(svcs.Quiz, validator, logger),
		templateHandler:  NewTemplateHandler(svcs.Template, validator, logger),
		campaignHandler:  NewCampaignHandler(svcs.Campaign, validator, logger),
		profileHandler:   NewProfileHandler(svcs.Profile, validator, logger),
		eventHandler:     NewEventHandler(svcs.Event, validator, logger),
		dashboardHandler: NewDashboardHandler(svcs.Dashboard, logger),
		reportHandler:    NewReportHandler(svcs.Report, logger),
	}
}

// SetupRoutes sets up all API routes. Quizzes and event tracking are
// available to any signed-in employee; campaign, template, user and
// reporting management is admin-only.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "awareness-service",
		})
	})

	v1 := router.Group("/api/v1")

	// Auth routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/logout", hm.authHandler.Logout)
		authRoutes.GET("/session", hm.authHandler.GetSession)
		authRoutes.POST("/refresh", hm.authHandler.RefreshSession)
	}

	// Anything signed-in
	signedIn := v1.Group("")
	signedIn.Use(auth.RequireAuth(hm.authService))
	{
		quizzes := signedIn.Group("/quizzes")
		{
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.POST("/:id/submit", hm.quizHandler.SubmitQuiz)
		}

		// Landing pages post outcomes with the recipient's own token.
		signedIn.POST("/events", hm.eventHandler.TrackEvent)
	}

	// Admin console
	admin := v1.Group("")
	admin.Use(auth.RequireAuth(hm.authService), auth.RequireAdmin())
	{
		quizzes := admin.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.GET("/:id/attempts", hm.quizHandler.ListAttempts)
			quizzes.GET("/:id/stats", hm.quizHandler.GetQuizStats)
		}

		templates := admin.Group("/templates")
		{
			templates.POST("", hm.templateHandler.CreateTemplate)
			templates.GET("", hm.templateHandler.ListTemplates)
			templates.GET("/presets", hm.templateHandler.GetPresets)
			templates.GET("/:id", hm.templateHandler.GetTemplate)
			templates.PUT("/:id", hm.templateHandler.UpdateTemplate)
			templates.DELETE("/:id", hm.templateHandler.DeleteTemplate)
			templates.POST("/:id/render", hm.templateHandler.RenderTemplate)
		}

		campaigns := admin.Group("/campaigns")
		{
			campaigns.POST("", hm.campaignHandler.CreateCampaign)
			campaigns.GET("", hm.campaignHandler.ListCampaigns)
			campaigns.GET("/:id", hm.campaignHandler.GetCampaign)
			campaigns.POST("/:id/recipients", hm.campaignHandler.AddRecipients)
			campaigns.GET("/:id/recipients", hm.campaignHandler.ListRecipients)
			campaigns.POST("/:id/schedule", hm.campaignHandler.ScheduleCampaign)
			campaigns.POST("/:id/launch", hm.campaignHandler.LaunchCampaign)
			campaigns.POST("/:id/complete", hm.campaignHandler.CompleteCampaign)
		}

		users := admin.Group("/users")
		{
			users.POST("", hm.profileHandler.CreateProfile)
			users.GET("", hm.profileHandler.ListProfiles)
			users.GET("/:id", hm.profileHandler.GetProfile)
			users.PUT("/:id", hm.profileHandler.UpdateProfile)
		}

		admin.GET("/dashboard/stats", hm.dashboardHandler.GetStats)
		admin.GET("/reports", hm.reportHandler.GetReport)
		admin.GET("/reports/export", hm.reportHandler.ExportReport)
	}
}
