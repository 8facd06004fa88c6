package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dysonfactory/internal/adapters/archive"
	"dysonfactory/internal/adapters/cache"
	"dysonfactory/internal/adapters/feed"
	v1 "dysonfactory/internal/adapters/handler/http/v1"
	"dysonfactory/internal/adapters/recipes"
	"dysonfactory/internal/config"
	"dysonfactory/internal/core/domain"
	"dysonfactory/internal/core/port"
	"dysonfactory/internal/core/service/analysis"
	"dysonfactory/internal/core/service/health"
	"dysonfactory/internal/core/service/state"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotStoreInterval = 5 * time.Second
	cacheCleanupInterval  = 30 * time.Second
	cacheRetention        = 10 * time.Minute
)

type App struct {
	cfg         *config.Config
	router      *http.ServeMux
	db          *sql.DB
	redisClient *redis.Client

	feedClient    *feed.Client
	snapshotCache port.SnapshotCache
	recipeDB      port.RecipeDatabase
	selector      *state.Selector
	healthService port.HealthService

	// For graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

func NewApp(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (app *App) Initialize() error {
	slog.Info("Initializing application...")
	app.router = http.NewServeMux()

	// Recipe database connection. Optional: the static table keeps item
	// resolution working without it.
	if app.cfg.RecipeDB.DBHost != "" {
		dbConn, err := recipes.Open(&app.cfg.RecipeDB)
		if err != nil {
			slog.Warn("Recipe database unavailable, using built-in recipe table", "error", err)
			app.recipeDB = recipes.NewDefaultDatabase()
		} else {
			app.db = dbConn
			app.recipeDB = recipes.NewPostgresDatabase(dbConn)
			slog.Info("Recipe database connected successfully")
		}
	} else {
		app.recipeDB = recipes.NewDefaultDatabase()
		slog.Info("No recipe database configured, using built-in recipe table")
	}

	// Redis connection. Optional: analyses work directly off the feed.
	redisClient := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", app.cfg.Cache.RedisHost, app.cfg.Cache.RedisPort),
		Password:     app.cfg.Cache.RedisPassword,
		DB:           app.cfg.Cache.RedisDB,
		PoolSize:     app.cfg.Cache.PoolSize,
		MinIdleConns: app.cfg.Cache.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis connection failed, continuing without snapshot cache", "error", err)
		app.redisClient = nil
		app.snapshotCache = nil
	} else {
		app.redisClient = redisClient
		app.snapshotCache = cache.NewRedisAdapter(redisClient)
		slog.Info("Redis connected successfully")
	}

	// Data sources
	feedURL := fmt.Sprintf("ws://%s:%d", app.cfg.Feed.Host, app.cfg.Feed.Port)
	app.feedClient = feed.NewClient(feedURL)
	archiveReader := archive.NewReader(app.cfg.Archive.SaveDir, archive.UnimplementedDecoder{})
	app.selector = state.NewSelector(app.feedClient, archiveReader)

	// Services
	app.healthService = health.NewHealthService(app.feedClient, app.snapshotCache, app.recipeDB)

	// Handlers
	toolHandler := v1.NewToolHandler(
		app.selector,
		archiveReader,
		analysis.NewBottleneckAnalyzer(app.recipeDB),
		analysis.NewPowerAnalyzer(),
		analysis.NewLogisticsAnalyzer(),
		analysis.NewSnapshotService(),
	)
	healthHandler := v1.NewHealthHandler(app.healthService)
	v1.SetToolRoutes(app.router, toolHandler, healthHandler)

	// Background processing
	go app.startFeedProcessor()

	slog.Info("Application initialized successfully")
	return nil
}

func (app *App) Run() {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.App.Port),
		Handler: app.router,
	}

	slog.Info("Starting server", "port", app.cfg.App.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
		return
	}
}

// startFeedProcessor opens the live feed and mirrors incoming frames into
// the snapshot cache. A failed connect is fine: tools fall back to the save
// archive, and the next CurrentState call retries the feed.
func (app *App) startFeedProcessor() {
	slog.Info("Starting factory feed processor...")

	if err := app.feedClient.Connect(app.ctx); err != nil {
		slog.Warn("Factory feed not reachable, save archive fallback active", "error", err)
	}

	if app.snapshotCache != nil {
		go app.storeSnapshots()
		go app.startCleanupRoutine()
	}
}

// storeSnapshots periodically persists the newest frame to the cache. Only
// the latest frame matters, so a fresh pointer comparison beats a queue.
func (app *App) storeSnapshots() {
	ticker := time.NewTicker(snapshotStoreInterval)
	defer ticker.Stop()

	var lastStored *domain.FactoryState
	for {
		select {
		case <-ticker.C:
			current := app.feedClient.Latest()
			if current == nil || current == lastStored {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := app.snapshotCache.StoreSnapshot(ctx, current); err != nil {
				slog.Error("Failed to store snapshot in cache", "error", err)
			}
			cancel()
			lastStored = current

		case <-app.ctx.Done():
			slog.Info("Snapshot processor stopped")
			return
		}
	}
}

// startCleanupRoutine trims expired samples from the cache.
func (app *App) startCleanupRoutine() {
	ticker := time.NewTicker(cacheCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := app.snapshotCache.CleanupOldData(ctx, cacheRetention); err != nil {
				slog.Error("Failed to cleanup old data", "error", err)
			}
			cancel()

		case <-app.ctx.Done():
			slog.Info("Cleanup routine stopped")
			return
		}
	}
}

// Shutdown gracefully shuts down the application.
func (app *App) Shutdown() error {
	slog.Info("Shutting down application...")

	app.cancel()

	if app.feedClient != nil {
		app.feedClient.Close()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			slog.Error("Failed to close recipe database", "error", err)
		}
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			slog.Error("Failed to close Redis", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}
