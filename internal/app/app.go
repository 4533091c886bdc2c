package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"prepaena_backend/internal/config"
	"prepaena_backend/internal/controller"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/repository"
	"prepaena_backend/internal/service"
	"prepaena_backend/internal/util"
	"prepaena_backend/pkg/configwatcher"
	"prepaena_backend/pkg/database"
	"prepaena_backend/pkg/logger"
	"prepaena_backend/pkg/monitoring"
	"prepaena_backend/pkg/security"
	"prepaena_backend/pkg/tracing"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const subscriptionExpiryInterval = time.Hour

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configPath      string
	repos           *repositories
	services        *services
	tracer          *sdktrace.TracerProvider
	cfgMu           sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	question     *repository.QuestionRepository
	profile      *repository.ProfileRepository
	subscription *repository.SubscriptionRepository
	result       *repository.ResultRepository
	visitor      *repository.VisitorRepository
}

type services struct {
	storage      *service.StorageService
	sessions     *service.SessionManager
	quiz         *service.QuizService
	practice     *service.PracticeTestService
	result       *service.ResultService
	subscription *service.SubscriptionService
	profile      *service.ProfileService
	visitor      *service.VisitorService
	questions    *service.QuestionAdminService
}

type controllers struct {
	quiz    *controller.QuizController
	account *controller.AccountController
	admin   *controller.AdminController
	visitor *controller.VisitorController
	health  *controller.HealthController
}

// RegisterConfigCallback runs callback with every reloaded configuration.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.cfgMu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		question:     repository.NewQuestionRepository(db),
		profile:      repository.NewProfileRepository(db),
		subscription: repository.NewSubscriptionRepository(db),
		result:       repository.NewResultRepository(db),
		visitor:      repository.NewVisitorRepository(db),
	}
}

// questionPool picks the table or the embedded bank per quiz.source.
func questionPool(cfg *config.Config, repos *repositories) (quiz.Pool, error) {
	if cfg.Quiz.Source == config.SourceStatic {
		return quiz.DefaultBank()
	}
	return repos.question, nil
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	pool, err := questionPool(cfg, repos)
	if err != nil {
		return nil, err
	}

	s.storage = service.NewStorageService(cfg.Storage)
	s.result = service.NewResultService(repos.result)
	s.subscription = service.NewSubscriptionService(repos.subscription)
	s.profile = service.NewProfileService(repos.profile)
	s.visitor = service.NewVisitorService(repos.visitor, rdb)
	s.sessions = service.NewSessionManager(s.result, cfg.Quiz.SessionTTL)

	s.quiz, err = service.NewQuizService(cfg.Quiz, pool, rdb, s.sessions, s.subscription, s.storage)
	if err != nil {
		return nil, err
	}
	s.practice = service.NewPracticeTestService(s.quiz)
	s.questions = service.NewQuestionAdminService(repos.question, s.practice)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		quiz:    controller.NewQuizController(s.quiz, s.practice),
		account: controller.NewAccountController(s.profile, s.subscription, s.result),
		admin:   controller.NewAdminController(s.questions, s.practice, s.visitor),
		visitor: controller.NewVisitorController(s.visitor),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) registerConfigCallbacks() {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		if err := a.services.quiz.ApplyConfig(cfg.Quiz); err != nil {
			logger.Log.Error("Rejected quiz settings", zap.Error(err))
			return
		}
		a.services.practice.ClearCache()
		logger.Log.Info("Quiz settings applied",
			zap.Int("daily_count", cfg.Quiz.DailyCount),
			zap.Int("practice_count", cfg.Quiz.PracticeCount),
			zap.Int("mock_count", cfg.Quiz.MockCount),
		)
	})
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	go a.services.sessions.Run(ctx)
	go a.services.subscription.RunExpiry(ctx, subscriptionExpiryInterval)
	go func() {
		path := filepath.Join(a.configPath, "config.yaml")
		if err := configwatcher.WatchConfig(ctx, path, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()
}

// NewApp wires the service. With cfg.MigrateOnly it stops after the
// database is migrated.
func NewApp(cfg *config.Config, configPath string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config:     cfg,
		DB:         db,
		configPath: configPath,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	app.repos = app.initRepositories(db)
	services, err := app.initServices(app.repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.registerConfigCallbacks()
	return app
}

func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.startBackgroundTasks(ctx)

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Persist sessions that finished while shutting down.
	a.services.sessions.Sweep(shutdownCtx)

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	logger.Log.Info("Server exiting")
}
