package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/controller"
	"skillpath_backend/internal/middleware"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/service"
	"skillpath_backend/pkg/configwatcher"
	"skillpath_backend/pkg/database"
	"skillpath_backend/pkg/logger"
	"skillpath_backend/pkg/monitoring"
	"skillpath_backend/pkg/scheduler"
	"skillpath_backend/pkg/security"
	"skillpath_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leaderboardRefreshSpec = "* * * * *"

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services  *services
	limiter   *security.Limiter
	scheduler *scheduler.Scheduler
	tracer    *sdktrace.TracerProvider
}

type repositories struct {
	user       *repository.UserRepository
	level      *repository.LevelRepository
	badge      *repository.BadgeRepository
	streak     *repository.StreakRepository
	roadmap    *repository.RoadmapRepository
	progress   *repository.ProgressRepository
	submission *repository.SubmissionRepository
	jobQuiz    *repository.JobQuizRepository
}

type services struct {
	identity       *service.IdentityService
	user           *service.UserService
	gamification   *service.GamificationService
	progress       *service.ProgressService
	catalog        *service.CatalogService
	leaderboard    *service.LeaderboardService
	roadmap        *service.RoadmapService
	storage        *service.StorageService
	quizGeneration *service.QuizGenerationService
}

type controllers struct {
	user           *controller.UserController
	progress       *controller.ProgressController
	gamification   *controller.GamificationController
	roadmap        *controller.RoadmapController
	quizGeneration *controller.QuizGenerationController
	health         *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		level:      repository.NewLevelRepository(db),
		badge:      repository.NewBadgeRepository(db),
		streak:     repository.NewStreakRepository(db),
		roadmap:    repository.NewRoadmapRepository(db),
		progress:   repository.NewProgressRepository(db),
		submission: repository.NewSubmissionRepository(db),
		jobQuiz:    repository.NewJobQuizRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.identity = service.NewIdentityService(db, repos.user)
	s.user = service.NewUserService(db, repos.user)
	s.leaderboard = service.NewLeaderboardService(db, repos.user, rdb, cfg.Gamification.LeaderboardTTL())
	s.catalog = service.NewCatalogService(db, repos.level, repos.badge, s.storage, s.leaderboard)
	s.gamification = service.NewGamificationService(db, repos.user, repos.level, repos.badge, repos.streak, cfg.Gamification)
	s.progress = service.NewProgressService(
		db,
		repos.user,
		repos.roadmap,
		repos.progress,
		repos.submission,
		s.gamification,
		service.NewNotifier(cfg.Notify),
		cfg.Gamification,
	)
	s.roadmap = service.NewRoadmapService(db, repos.roadmap)
	s.quizGeneration = service.NewQuizGenerationService(db, repos.jobQuiz, service.NewAIService(cfg.AI))

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		user:           controller.NewUserController(s.user, s.progress),
		progress:       controller.NewProgressController(s.progress),
		gamification:   controller.NewGamificationController(s.catalog, s.leaderboard, cfg),
		roadmap:        controller.NewRoadmapController(s.roadmap),
		quizGeneration: controller.NewQuizGenerationController(s.quizGeneration),
		health:         controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// syncCatalog seeds levels and badges. A missing file only disables seeding.
func (a *App) syncCatalog(ctx context.Context, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Log.Warn("Gamification catalog file not found, skipping sync", zap.String("path", path))
		return nil
	}
	_, err := a.services.catalog.SyncFromFile(ctx, path)
	return err
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	go a.limiter.Run(ctx)

	a.scheduler = scheduler.New(a.Config.Gamification.Location(), 30*time.Second)
	err := a.scheduler.Add("leaderboard-refresh", leaderboardRefreshSpec, func(ctx context.Context) error {
		_, err := a.services.leaderboard.Refresh(ctx, 0, service.DefaultLeaderboardTop)
		return err
	})
	if err != nil {
		logger.Log.Error("Failed to register leaderboard refresh", zap.Error(err))
	}
	a.scheduler.Start()

	if a.Config.Gamification.WatchCatalog {
		go func() {
			err := configwatcher.Watch(ctx, a.Config.Gamification.CatalogPath, configwatcher.DefaultDebounce, a.syncCatalog)
			if err != nil {
				logger.Log.Error("Catalog watcher stopped", zap.Error(err))
			}
		}()
	}
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := logger.InitLogger(cfg); err != nil {
		return nil, err
	}
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, cfg, db, rdb)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Log.Service, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	if err := app.syncCatalog(context.Background(), cfg.Gamification.CatalogPath); err != nil {
		logger.Log.Error("Initial catalog sync failed", zap.Error(err))
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), middleware.RecoveryMiddleware())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, app.services, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.startBackgroundTasks(ctx)

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.scheduler.Stop(shutdownCtx)
	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
