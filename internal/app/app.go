package app

import (
	"coinbrief_backend/internal/config"
	"coinbrief_backend/internal/controller"
	"coinbrief_backend/internal/middleware"
	"coinbrief_backend/internal/repository"
	"coinbrief_backend/internal/service"
	"coinbrief_backend/pkg/configwatcher"
	"coinbrief_backend/pkg/database"
	"coinbrief_backend/pkg/logger"
	"coinbrief_backend/pkg/monitoring"
	"coinbrief_backend/pkg/security"
	"coinbrief_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Schema          *database.SchemaManager
	tracer          *sdktrace.TracerProvider
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	article  *repository.ArticleRepository
	quiz     *repository.QuizRepository
	profile  *repository.ProfileRepository
	briefing *repository.RedisBriefingCache
}

type services struct {
	ai       *service.AIService
	storage  *service.StorageService
	briefing *service.BriefingService
	quiz     *service.QuizService
}

type controllers struct {
	article *controller.ArticleController
	quiz    *controller.QuizController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	repos := &repositories{
		article: repository.NewArticleRepository(db),
		quiz:    repository.NewQuizRepository(db),
		profile: repository.NewProfileRepository(db),
	}
	if rdb != nil {
		repos.briefing = repository.NewRedisBriefingCache(rdb, cfg.Redis.TTL())
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	if cfg.Storage.ArchiveEnabled {
		s.storage = service.NewStorageService(&cfg.Storage)
	}

	// redis 未启用时必须传入 nil 接口
	var cache service.BriefingCache
	if repos.briefing != nil {
		cache = repos.briefing
	}
	s.briefing = service.NewBriefingService(repos.article, s.ai, cache, s.storage)
	s.quiz = service.NewQuizService(repos.article, repos.quiz, repos.profile)

	// 模型与超时支持热更新
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ai.UpdateConfig(newCfg.AI)
		logger.Log.Info("AI settings reloaded", zap.String("model", newCfg.AI.Model))
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		article: controller.NewArticleController(s.briefing),
		quiz:    controller.NewQuizController(s.quiz),
		health:  controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	// 请求 ID 最先生成，限流拒绝日志也能关联
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter("api", cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp 初始化各组件；建表延迟到首个请求或 -migrate-only
func NewApp(cfg *config.Config, configDir string) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// 缓存不可用时降级为直接读库
			logger.Log.Warn("Redis unavailable, briefing cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
		Redis:     rdb,
		Schema:    database.NewGormSchemaManager(db),
	}

	if cfg.MigrateOnly {
		return app, nil
	}

	repos := app.initRepositories(db, rdb, cfg)
	app.services = app.initServices(repos, cfg)
	ctrls := app.initControllers(app.services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)

	return app, nil
}

// Migrate 执行一次建表后返回
func (a *App) Migrate(ctx context.Context) error {
	return a.Schema.Ensure(ctx)
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.ConfigDir != "" {
		if err := configwatcher.Watch(ctx, a.ConfigDir, time.Second, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		}); err != nil {
			logger.Log.Warn("Config watcher disabled", zap.Error(err))
		}
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	tracing.Shutdown(a.tracer)
	a.Close()

	logger.Log.Info("Server exiting")
}

func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
