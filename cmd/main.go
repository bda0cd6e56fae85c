package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/database"
	_ "github.com/jumptop/ITOP/docs"
	"github.com/jumptop/ITOP/internal/auth"
	"github.com/jumptop/ITOP/internal/controller"
	accountctrl "github.com/jumptop/ITOP/internal/controller/account"
	adminctrl "github.com/jumptop/ITOP/internal/controller/admin"
	userctrl "github.com/jumptop/ITOP/internal/controller/user"
	"github.com/jumptop/ITOP/internal/logger"
	"github.com/jumptop/ITOP/internal/observability"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/jumptop/ITOP/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title ITOP Certification Practice API
// @version 1.0
// @description Question bank, answer grading, test assembly and study tracking for the 정보처리기능사 practical exam.
// @host localhost:8080
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			config.NewAWSConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewQuestionRepository,
			repository.NewWrongAnswerRepository,
			repository.NewUserRepository,
			repository.NewTestAttemptRepository,
		),

		fx.Provide(
			fx.Annotate(auth.NewJWKSVerifier, fx.As(new(auth.Verifier))),
			auth.NewDenylist,
			auth.NewMiddleware,
		),

		fx.Provide(
			service.NewRandSource,
			service.NewGeminiLLMService,
			service.NewGradingEngine,
			service.NewScoreConverterService,
			func(awsCfg aws.Config) service.KeyPhraseDetector {
				return service.NewComprehendDetector(awsCfg)
			},
			func(llm service.GeminiLLMService) service.KeywordFilter {
				if !llm.Available() {
					return nil
				}
				return llm
			},
			service.NewKeywordService,
			service.NewCognitoProvider,
			service.NewWrongAnswerService,
			service.NewQuestionService,
			service.NewEvaluationService,
			service.NewTestAssemblyService,
			service.NewTestSubmissionService,
			service.NewUserService,
			service.NewAuthService,
		),

		fx.Provide(
			adminctrl.NewAdminQuestionController,
			userctrl.NewQuestionController,
			userctrl.NewUserTestController,
			userctrl.NewProfileController,
			accountctrl.NewAuthController,
		),

		fx.Invoke(observability.InitOTel),
		fx.Invoke(controller.RegisterValidators),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.Otel.ServiceName))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	// Credentials cannot be combined with a wildcard origin.
	if len(cfg.Server.AllowOrigins) == 0 || cfg.Server.AllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.AllowOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	return r
}

// RegisterRoutesAndStartServer mounts every route group and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	mw *auth.Middleware,
	adminQuestionCtrl *adminctrl.AdminQuestionController,
	questionCtrl *userctrl.QuestionController,
	userTestCtrl *userctrl.UserTestController,
	profileCtrl *userctrl.ProfileController,
	authCtrl *accountctrl.AuthController,
) {
	api := router.Group("/api", mw.OptionalAuth())
	questionCtrl.RegisterRoutes(api)
	userTestCtrl.RegisterRoutes(api)

	adminQuestionCtrl.RegisterRoutes(router.Group("/admin", mw.RequireAuth(), mw.RequireAdmin()))
	profileCtrl.RegisterRoutes(router.Group("/users", mw.RequireAuth()))
	authCtrl.RegisterRoutes(router.Group("/auth"))

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("ITOP API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
