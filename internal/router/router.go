package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/handler"
	"github.com/myadmit/admit-backend/internal/middleware"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth           *handler.AuthHandler
	Profile        *handler.ProfileHandler
	File           *handler.FileHandler
	Catalog        *handler.CatalogHandler
	Admin          *handler.AdminHandler
	Application    *handler.ApplicationHandler
	Essay          *handler.EssayHandler
	Subscription   *handler.SubscriptionHandler
	Recommendation *handler.RecommendationHandler
	Mail           *handler.MailHandler
	WS             *handler.WSHandler
	System         *handler.SystemHandler
}

// catalogMaxAge is the Cache-Control max-age of public catalog responses.
const catalogMaxAge = 300

// SetupRouter configures the Gin route groups enabled in cfg.EnabledServices.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(response.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// Every authenticated route also rejects logged-out tokens.
	userAuth := []gin.HandlerFunc{
		middleware.RequireUserJWT(authService),
		middleware.CheckTokenRevoked(authService),
	}

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	if cfg.ServiceEnabled(config.ServiceAuth) {
		authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimitPerMinute, time.Minute)

		auth := router.Group("/api/v1/auth")
		auth.Use(authLimiter.Middleware(), middleware.NoStore())
		{
			auth.POST("/register", handlers.Auth.Register)
			auth.POST("/login", handlers.Auth.Login)
			auth.POST("/google-login", handlers.Auth.GoogleLogin)
			auth.GET("/google-config", handlers.Auth.GoogleConfig)
			auth.POST("/validate-token", handlers.Auth.ValidateToken)
			auth.POST("/verify-email", handlers.Auth.VerifyEmail)
			auth.POST("/confirm-email", handlers.Auth.ConfirmEmail)
			auth.POST("/forgot-password", handlers.Auth.ForgotPassword)
			auth.POST("/reset-password", handlers.Auth.ResetPassword)

			auth.POST("/logout", append(userAuth, handlers.Auth.Logout)...)
		}
	}

	// ─── 2. User Group (JWT) ───────────────────────────────────────────
	if cfg.ServiceEnabled(config.ServiceUser) {
		user := router.Group("/api/v1/user")
		user.Use(userAuth...)
		user.Use(middleware.NoStore())
		{
			// Profile
			user.GET("/profile", handlers.Profile.GetProfile)
			user.POST("/profile", handlers.Profile.SaveAnswer)
			user.GET("/personal-profile", handlers.Profile.GetPersonal)
			user.POST("/personal-profile", handlers.Profile.UpdatePersonal)
			user.GET("/resume-text", handlers.Profile.GetResumeText)
			user.PUT("/resume-text", handlers.Profile.SetResumeText)
			user.POST("/calculate-profile-completion", handlers.Profile.CalculateCompletion)

			// Files
			user.POST("/file", handlers.File.Upload)
			user.GET("/files", handlers.File.List)
			user.DELETE("/files/:file_id", handlers.File.Delete)

			// Mail
			user.POST("/send-verification-email", handlers.Mail.SendVerification)
			user.POST("/send-password-reset-email", handlers.Mail.SendPasswordReset)

			// Subscription
			user.GET("/subscription", handlers.Subscription.Get)
			user.GET("/refresh-subscription", handlers.Subscription.Refresh)
			user.POST("/stripe-session", handlers.Subscription.Session)

			// Applications
			apps := user.Group("/application")
			{
				apps.GET("", handlers.Application.List)
				apps.POST("", handlers.Application.Create)
				apps.GET("/deadlines/upcoming", handlers.Application.UpcomingDeadlines)
				apps.GET("/:id", handlers.Application.Get)

				apps.GET("/:id/generate-ai-answers", handlers.Essay.Generate)
				apps.POST("/:id/generate-ai-answers", handlers.Essay.Generate)

				apps.GET("/:id/questions", handlers.Application.ListQuestions)
				apps.POST("/:id/questions", handlers.Application.AddQuestion)
				apps.GET("/:id/questions/:question_id", handlers.Application.GetQuestion)
				apps.PUT("/:id/questions/:question_id", handlers.Application.UpdateQuestion)
				apps.DELETE("/:id/questions/:question_id", handlers.Application.DeleteQuestion)
				apps.POST("/:id/questions/:question_id/final-answer", handlers.Application.UpdateFinalAnswer)
				apps.POST("/:id/questions/:question_id/status", handlers.Application.UpdateAnswerStatus)
				apps.POST("/:id/questions/:question_id/refine-ai-answer", handlers.Essay.Refine)
				apps.POST("/:id/questions/:question_id/ai-suggestions", handlers.Essay.Suggestions)

				apps.GET("/:id/notes", handlers.Application.ListNotes)
				apps.POST("/:id/notes", handlers.Application.AddNote)
				apps.PUT("/:id/notes/:note_id", handlers.Application.UpdateNote)
				apps.DELETE("/:id/notes/:note_id", handlers.Application.DeleteNote)

				apps.POST("/:id/deadline", handlers.Application.UpdateDeadline)
				apps.DELETE("/:id/deadline", handlers.Application.RemoveDeadline)
			}
		}

		// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────
		ws := router.Group("/ws/v1")
		ws.Use(middleware.RequireWSAuth(authService), middleware.CheckTokenRevoked(authService))
		{
			ws.GET("/applications/:id/generation", handlers.WS.GenerationStream)
		}
	}

	// ─── 4. Static Group (Public catalog) ──────────────────────────────
	if cfg.ServiceEnabled(config.ServiceStatic) {
		static := router.Group("/api/v1/static")
		{
			catalog := static.Group("")
			catalog.Use(middleware.CacheControl(catalogMaxAge))
			{
				catalog.GET("/university", handlers.Catalog.GetUniversities)
				catalog.GET("/profile-questions", handlers.Catalog.GetProfileQuestions)
				catalog.GET("/profile-questions/sections", handlers.Catalog.GetProfileSections)
				catalog.GET("/profile-questions/:id", handlers.Catalog.GetProfileQuestion)
			}

			static.GET("/programs", middleware.OptionalUserJWT(authService), handlers.Catalog.GetPrograms)
			// Anonymous writes that send mail or call the LLM.
			publicLimiter := middleware.NewRateLimiter(cfg.PublicRateLimitPerMinute, time.Minute)
			static.POST("/contact", publicLimiter.Middleware(), handlers.Mail.Contact)
			static.POST("/ai-extract", publicLimiter.Middleware(), handlers.Recommendation.Extract)
			static.POST("/recommendation", append(userAuth, handlers.Recommendation.Recommend)...)
		}
	}

	// ─── 5. Admin Group (JWT + is_admin) ───────────────────────────────
	if cfg.ServiceEnabled(config.ServiceAdmin) {
		adminAPI := router.Group("/api/v1/admin")
		adminAPI.Use(userAuth...)
		adminAPI.Use(middleware.RequireAdmin())
		{
			adminAPI.POST("/university", handlers.Admin.CreateUniversity)
			adminAPI.PUT("/university/:id", handlers.Admin.UpdateUniversity)
			adminAPI.DELETE("/university/:id", handlers.Admin.DeleteUniversity)
			adminAPI.POST("/university/:id/logo", handlers.Admin.UploadUniversityLogo)

			adminAPI.GET("/programs", handlers.Admin.ListPrograms)
			adminAPI.POST("/programs", handlers.Admin.CreateProgram)
			adminAPI.PUT("/programs/:id", handlers.Admin.UpdateProgram)
			adminAPI.DELETE("/programs/:id", handlers.Admin.DeleteProgram)

			adminAPI.POST("/profile-questions/sections", handlers.Admin.CreateProfileSection)
			adminAPI.POST("/profile-questions", handlers.Admin.CreateProfileQuestion)

			adminAPI.GET("/system/metrics", handlers.System.Metrics)
		}
	}

	return router
}
