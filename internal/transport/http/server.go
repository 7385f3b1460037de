package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "studyreels/internal/app"
	"studyreels/internal/bootstrap"
	"studyreels/internal/cache"
	"studyreels/internal/metrics"
	"studyreels/internal/platform/rabbitmq"
	"studyreels/internal/repository"
	"studyreels/internal/transport/http/handler"
	"studyreels/internal/transport/http/middleware"
)

type Handlers struct {
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	Upload *handler.UploadHandler
	Reel   *handler.ReelHandler
	Chat   *handler.ChatHandler
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	cfg := app.Config
	log := app.Log

	userRepo := repository.NewUserRepository(app.DB)
	uploadRepo := repository.NewUploadRepository(app.DB)
	reelRepo := repository.NewReelRepository(app.DB)
	questionRepo := repository.NewQuestionRepository(app.DB)
	answerRepo := repository.NewUserAnswerRepository(app.DB)
	chatRepo := repository.NewChatMessageRepository(app.DB)

	authService := appsvc.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.JWTExpiration())
	ingestService := appsvc.NewIngestService(uploadRepo, app.Blobs, cfg.Generation.MaxUploadBytes, log)
	generationService := appsvc.NewGenerationService(app.LLM, reelRepo, uploadRepo, appsvc.GenerationOptions{
		MaxContentChars: cfg.Generation.MaxContentChars,
		QuestionCount:   cfg.Generation.QuestionCount,
		ExcerptChars:    cfg.Generation.ExcerptChars,
	}, log)
	pipeline := appsvc.NewDocumentPipeline(ingestService, generationService, log)
	reelService := appsvc.NewReelService(reelRepo, questionRepo, answerRepo)
	chatService := appsvc.NewChatService(
		app.LLM,
		chatRepo,
		rabbitmq.NewChatMessagePublisher(app.MQConn, cfg.RabbitMQ.MessagePersistQueue),
		cache.NewHistoryCache(
			app.Redis,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
		),
		cfg.LLM.MaxContextMessage,
		log,
	)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLog(log), metrics.Middleware())
	Register(router, Handlers{
		Health: handler.NewHealthHandler(app),
		Auth:   handler.NewAuthHandler(authService, log),
		Upload: handler.NewUploadHandler(ingestService, pipeline, cfg.Generation.MaxUploadBytes, log),
		Reel:   handler.NewReelHandler(generationService, reelService, log),
		Chat:   handler.NewChatHandler(chatService, log),
	}, cfg.Auth.JWTSecret)
	return router
}

// Register mounts every route on router. Health may be nil when the router
// is built without live dependencies.
func Register(router *gin.Engine, h Handlers, jwtSecret string) {
	if h.Health != nil {
		router.GET("/healthz", h.Health.Check)
	}
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := middleware.AuthJWT(jwtSecret)
	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.GET("/me", auth, h.Auth.Me)

	uploads := v1.Group("/uploads", auth)
	uploads.POST("", h.Upload.Create)
	uploads.GET("", h.Upload.List)
	uploads.DELETE("", h.Upload.DeleteAll)
	uploads.DELETE("/:id", h.Upload.Delete)

	reels := v1.Group("/reels", auth)
	reels.POST("/generate", h.Reel.Generate)
	reels.GET("", h.Reel.List)
	reels.GET("/:id", h.Reel.Get)
	reels.DELETE("/:id", h.Reel.Delete)

	v1.POST("/questions/:id/answers", auth, h.Reel.SubmitAnswer)
	v1.GET("/answers/stats", auth, h.Reel.AnswerStats)

	chat := v1.Group("/chat", auth)
	chat.POST("/messages", h.Chat.SendMessage)
	chat.GET("/messages", h.Chat.GetHistory)
}
