package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/perfectdish/core/internal/config"
	"github.com/perfectdish/core/internal/middleware"
	"github.com/perfectdish/core/internal/models"
	"github.com/perfectdish/core/internal/pkg/response"
	"github.com/perfectdish/core/internal/pkg/session"
)

// Handler serves the local register/login/logout surface.
type Handler struct {
	svc      *Service
	sessions *session.Manager
	cookies  config.SessionConfig
	log      *zap.Logger
}

func NewHandler(svc *Service, sessions *session.Manager, cookies config.SessionConfig, log *zap.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, cookies: cookies, log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, limitMW gin.HandlerFunc) {
	r.GET("/register", h.registerForm)
	r.POST("/register", limitMW, h.register)
	r.GET("/login", h.loginForm)
	r.POST("/login", limitMW, h.login)
	r.GET("/logout", h.logout)
}

// GET /register
func (h *Handler) registerForm(c *gin.Context) {
	c.HTML(200, "register.html", gin.H{"Failed": c.Query("error") != ""})
}

// GET /login
func (h *Handler) loginForm(c *gin.Context) {
	c.HTML(200, "login.html", gin.H{"Failed": c.Query("error") != ""})
}

// POST /register
func (h *Handler) register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	u, err := h.svc.Register(c.Request.Context(), username, password)
	if err != nil {
		// A generic rejection: the form must not reveal whether the
		// username is taken or the password was too weak.
		if errors.Is(err, models.ErrDuplicateUsername) || errors.Is(err, models.ErrInvalidCredentials) {
			response.Redirect(c, "/register?error=1")
			return
		}
		h.log.Error("register failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	h.establishSession(c, u.ID)
}

// POST /login
func (h *Handler) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	u, err := h.svc.VerifyLocal(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			response.Redirect(c, "/login?error=1")
			return
		}
		h.log.Error("login failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	h.establishSession(c, u.ID)
}

// GET /logout
func (h *Handler) logout(c *gin.Context) {
	if token := middleware.CurrentSessionToken(c); token != "" {
		if err := h.sessions.Invalidate(c.Request.Context(), token); err != nil {
			h.log.Warn("session invalidate failed", zap.Error(err))
		}
	}
	h.clearCookie(c)
	response.Redirect(c, "/")
}

// establishSession issues a session token, sets the cookie, and sends the
// caller home. Shared with the OAuth callbacks.
func (h *Handler) establishSession(c *gin.Context, userID primitive.ObjectID) {
	token, err := h.sessions.Issue(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("session issue failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.SetCookie(h.cookies.CookieName, token, int(h.cookies.TTL.Seconds()), "/", "", h.cookies.CookieSecure, true)
	response.Redirect(c, "/")
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetCookie(h.cookies.CookieName, "", -1, "/", "", h.cookies.CookieSecure, true)
}
