package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/tedrenliv/habit-tracker/internal/catalog"
	"github.com/tedrenliv/habit-tracker/internal/config"
	"github.com/tedrenliv/habit-tracker/internal/domain/repository"
	cronpkg "github.com/tedrenliv/habit-tracker/internal/infrastructure/cron"
	infradb "github.com/tedrenliv/habit-tracker/internal/infrastructure/db"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/kafka"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/memory"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/migrations"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/postgres"
	"github.com/tedrenliv/habit-tracker/internal/infrastructure/redis"
	"github.com/tedrenliv/habit-tracker/internal/logger"
	"github.com/tedrenliv/habit-tracker/internal/middleware"
	"github.com/tedrenliv/habit-tracker/internal/progress"
	"github.com/tedrenliv/habit-tracker/internal/service"
	grpctransport "github.com/tedrenliv/habit-tracker/internal/transport/grpc"
	httptransport "github.com/tedrenliv/habit-tracker/internal/transport/http"
	"github.com/tedrenliv/habit-tracker/pkg/jwt"
)

// App represents the application
type App struct {
	config      *config.Config
	httpServer  *http.Server
	grpcServer  *grpctransport.Server
	sweeper     *cronpkg.AchievementSweeper
	rateLimiter *middleware.RateLimiter

	dbPool      *pgxpool.Pool
	redisClient *goredis.Client
	producer    *kafka.Producer
}

type repositories struct {
	habits       repository.HabitRepository
	checkIns     repository.CheckInRepository
	achievements repository.AchievementRepository
}

// New creates a new application from the configuration file and environment
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
		Prefix:     cfg.Service.Name,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Configuration loaded", "environment", cfg.Service.Environment, "driver", cfg.Database.Driver)

	return NewWithConfig(context.Background(), cfg)
}

// NewWithConfig wires every component from an already loaded configuration
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{config: cfg}

	loc, err := cfg.Progress.Location()
	if err != nil {
		return nil, err
	}

	achievements, err := catalog.Load(cfg.Progress.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement catalog: %w", err)
	}
	engine, err := progress.NewEngine(achievements, cfg.Progress.WindowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress engine: %w", err)
	}
	logger.Info("Achievement catalog loaded", "achievements", len(achievements), "window_days", engine.WindowDays())

	repos, err := app.initStorage(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	var cache service.SnapshotCache
	if cfg.Redis.Enabled {
		app.redisClient, err = redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		cache = redis.NewSnapshotCache(app.redisClient, cfg.Redis.SnapshotTTL)
		logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.Kafka.Enabled {
		app.producer = kafka.NewProducer(&cfg.Kafka)
		events = app.producer
		logger.Info("Kafka producer initialized", "topic", cfg.Kafka.Topic)
	}

	clock := service.RealClock{}
	habitService := service.NewHabitService(repos.habits, repos.checkIns, events, clock, loc)
	progressService := service.NewProgressService(engine, repos.habits, repos.checkIns, repos.achievements, cache, events, clock, loc)

	if cfg.Scheduler.Enabled {
		app.sweeper = cronpkg.NewAchievementSweeper(repos.habits, progressService, cfg.Scheduler.CheckInterval)
	} else {
		logger.Info("Achievement sweeper is disabled in configuration")
	}

	var tokens *jwt.TokenManager
	if cfg.JWT.Enabled {
		tokens = jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, cfg.JWT.Issuer)
	} else {
		logger.Warn("JWT auth is disabled; callers identify themselves with userId")
	}

	if cfg.RateLimit.Enabled {
		app.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
	}

	handler := httptransport.NewHandler(habitService, progressService, middleware.NewAuthMiddleware(tokens))
	app.httpServer = &http.Server{
		Addr: cfg.HTTP.GetAddr(),
		Handler: httptransport.NewRouter(handler, httptransport.RouterOptions{
			RateLimiter:    app.rateLimiter,
			SwaggerEnabled: cfg.HTTP.SwaggerEnabled,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	app.grpcServer = grpctransport.NewServer(cfg.GRPC.Port,
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: cfg.GRPC.MaxConnectionIdle,
			MaxConnectionAge:  cfg.GRPC.MaxConnectionAge,
		}),
		grpc.ConnectionTimeout(cfg.GRPC.Timeout),
	)

	return app, nil
}

func (a *App) initStorage(ctx context.Context) (repositories, error) {
	if a.config.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory storage; data is lost on shutdown")
		store := memory.New()
		return repositories{
			habits:       store.Habits(),
			checkIns:     store.CheckIns(),
			achievements: store.Achievements(),
		}, nil
	}

	dbPool, err := infradb.NewPostgresPool(ctx, &a.config.Database)
	if err != nil {
		return repositories{}, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.dbPool = dbPool
	logger.Info("Connected to PostgreSQL", "host", a.config.Database.Host, "database", a.config.Database.Database)

	sqlDB := infradb.SQLDB(dbPool)
	defer sqlDB.Close()

	if a.config.Database.MigrateOnStart {
		if err := migrations.MigrateUp(sqlDB); err != nil {
			return repositories{}, err
		}
		logger.Info("Database migrations applied")
	} else if err := migrations.CheckStatus(sqlDB); err != nil {
		return repositories{}, fmt.Errorf("%w; run `progressctl migrate up` or set database.migrate_on_start", err)
	}

	return repositories{
		habits:       postgres.NewHabitRepository(dbPool),
		checkIns:     postgres.NewCheckInRepository(dbPool),
		achievements: postgres.NewAchievementRepository(dbPool),
	}, nil
}

// Handler returns the HTTP handler, for in-process use
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the application and blocks until SIGINT or SIGTERM
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	if a.rateLimiter != nil {
		a.rateLimiter.CleanupVisitors(ctx, a.config.RateLimit.Window*5)
	}

	if a.sweeper != nil {
		if err := a.sweeper.Start(); err != nil {
			return fmt.Errorf("failed to start achievement sweeper: %w", err)
		}
	}

	go func() {
		if err := a.grpcServer.Start(); err != nil {
			logger.Error("gRPC server error", "err", err)
			quit <- syscall.SIGTERM
		}
	}()

	go func() {
		logger.Info("Starting HTTP server", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "err", err)
			quit <- syscall.SIGTERM
		}
	}()

	logger.Info("Service started", "name", a.config.Service.Name, "http_port", a.config.HTTP.Port, "grpc_port", a.config.GRPC.Port)

	// Wait for interrupt signal
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "err", err)
	}

	a.grpcServer.Stop()

	if a.sweeper != nil {
		a.sweeper.Stop()
	}

	a.close()

	logger.Info("Server shutdown complete")
	return nil
}

func (a *App) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Error("Failed to close Kafka producer", "err", err)
		}
	}
	if a.redisClient != nil {
		if err := redis.Close(a.redisClient); err != nil {
			logger.Error("Failed to close Redis client", "err", err)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}
}
