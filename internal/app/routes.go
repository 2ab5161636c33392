package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/perfectdish/core/internal/middleware"
	"github.com/perfectdish/core/internal/modules/auth"
	"github.com/perfectdish/core/internal/modules/recipe"
	"github.com/perfectdish/core/internal/modules/storage/blob"
	pkgredis "github.com/perfectdish/core/internal/pkg/redis"
	"github.com/perfectdish/core/internal/pkg/response"
	"github.com/perfectdish/core/internal/pkg/session"
	"github.com/perfectdish/core/internal/repository"
)

const (
	credentialRateLimit  = 10
	credentialRateWindow = time.Minute
)

func (a *App) registerRoutes(ctx context.Context, store repository.Store, rc *pkgredis.Client, blobs blob.Store, sessions *session.Manager) error {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Every request gets a shot at resolving its session cookie; individual
	// routes opt into enforcement.
	r.Use(middleware.Resolve(sessions, a.cfg.Session.CookieName))
	requireAuth := middleware.RequireAuth()

	// Credential endpoints are the only brute-forceable surface.
	limitMW := middleware.RateLimit(rc, a.logger, credentialRateLimit, credentialRateWindow)

	authSvc := auth.NewService(store)
	authHandler := auth.NewHandler(authSvc, sessions, a.cfg.Session, a.logger)
	authHandler.RegisterRoutes(r, limitMW)

	oauthHandler, err := auth.NewOAuthHandler(ctx, authHandler, authSvc, a.cfg, a.logger)
	if err != nil {
		return err
	}
	oauthHandler.RegisterRoutes(r)

	recipeSvc := recipe.NewService(store, blobs)
	recipe.NewHandler(recipeSvc, blobs, a.logger).RegisterRoutes(r, requireAuth)

	r.GET("/healthz", a.healthz)

	return nil
}

// GET /healthz
func (a *App) healthz(c *gin.Context) {
	ctx := c.Request.Context()
	mongoOK := a.mongo.Ping(ctx, readpref.Primary()) == nil
	redisOK := a.rc.Raw().Ping(ctx).Err() == nil

	status := "ok"
	code := http.StatusOK
	if !mongoOK || !redisOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"mongo":  mongoOK,
		"redis":  redisOK,
	})
}
