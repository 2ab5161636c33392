package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/perfectdish/core/internal/config"
	"github.com/perfectdish/core/internal/database"
	"github.com/perfectdish/core/internal/middleware"
	"github.com/perfectdish/core/internal/modules/storage/blob"
	pkgredis "github.com/perfectdish/core/internal/pkg/redis"
	"github.com/perfectdish/core/internal/pkg/session"
	"github.com/perfectdish/core/internal/repository"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	mongo  *mongo.Client
	rc     *pkgredis.Client
	logger *zap.Logger
}

// New initializes the application: config → Mongo → Redis → blob store →
// sessions → routes.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	client, db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	store := repository.NewMongoStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	blobs, err := newBlobStore(ctx, cfg, db)
	if err != nil {
		return nil, fmt.Errorf("blob storage: %w", err)
	}

	sessions := session.NewManager(rc, cfg.Session.TTL)

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))
	router.LoadHTMLGlob(cfg.Template.Glob)

	app := &App{cfg: cfg, router: router, mongo: client, rc: rc, logger: logger}
	if err := app.registerRoutes(ctx, store, rc, blobs, sessions); err != nil {
		return nil, err
	}

	return app, nil
}

// newBlobStore picks the image backend from config. GridFS rides on the
// primary Mongo connection; S3 talks to whatever bucket is configured.
func newBlobStore(ctx context.Context, cfg *config.AppConfig, db *mongo.Database) (blob.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageS3:
		return blob.NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.S3)
	default:
		return blob.NewGridFSStore(db, cfg.Storage.Bucket)
	}
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases the backing connections.
func (a *App) Shutdown() {
	if err := database.Disconnect(a.mongo); err != nil {
		a.logger.Warn("mongo disconnect failed", zap.Error(err))
	}
	if err := a.rc.Raw().Close(); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
}
