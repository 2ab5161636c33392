package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/perfectdish/core/internal/config"
	"github.com/perfectdish/core/internal/models"
	"github.com/perfectdish/core/internal/pkg/response"
)

const (
	googleIssuer      = "https://accounts.google.com"
	facebookGraphMe   = "https://graph.facebook.com/v19.0/me?fields=id,name,first_name"
	stateCookieName   = "pd_oauth_state"
	stateCookieMaxAge = 300
)

// OAuthHandler runs the Google and Facebook login flows. The handshake is
// delegated entirely to the providers; once a profile comes back verified it
// is normalized through Service.ResolveExternal.
type OAuthHandler struct {
	local        *Handler
	svc          *Service
	log          *zap.Logger
	cookieSecure bool

	googleOAuth    *oauth2.Config
	googleVerifier *oidc.IDTokenVerifier
	facebookOAuth  *oauth2.Config
}

// NewOAuthHandler wires the configured providers. Google uses OIDC discovery,
// so construction reaches out to the issuer; startup fails fast when the
// provider is configured but unreachable.
func NewOAuthHandler(ctx context.Context, local *Handler, svc *Service, cfg *config.AppConfig, log *zap.Logger) (*OAuthHandler, error) {
	h := &OAuthHandler{local: local, svc: svc, log: log, cookieSecure: cfg.Session.CookieSecure}

	if cfg.OAuth.Google.Enabled() {
		provider, err := oidc.NewProvider(ctx, googleIssuer)
		if err != nil {
			return nil, fmt.Errorf("google oidc discovery: %w", err)
		}
		h.googleOAuth = &oauth2.Config{
			ClientID:     cfg.OAuth.Google.ClientID,
			ClientSecret: cfg.OAuth.Google.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.PublicBaseURL + "/auth/google/callback",
			Scopes:       []string{oidc.ScopeOpenID, "profile"},
		}
		h.googleVerifier = provider.Verifier(&oidc.Config{ClientID: cfg.OAuth.Google.ClientID})
	}

	if cfg.OAuth.Facebook.Enabled() {
		h.facebookOAuth = &oauth2.Config{
			ClientID:     cfg.OAuth.Facebook.ClientID,
			ClientSecret: cfg.OAuth.Facebook.ClientSecret,
			Endpoint:     facebook.Endpoint,
			RedirectURL:  cfg.PublicBaseURL + "/auth/facebook/callback",
			Scopes:       []string{"public_profile"},
		}
	}

	return h, nil
}

func (h *OAuthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/auth/google", h.googleRedirect)
	r.GET("/auth/google/callback", h.googleCallback)
	r.GET("/auth/facebook", h.facebookRedirect)
	r.GET("/auth/facebook/callback", h.facebookCallback)
}

// GET /auth/google
func (h *OAuthHandler) googleRedirect(c *gin.Context) {
	if h.googleOAuth == nil {
		response.NotFound(c)
		return
	}
	h.redirectToProvider(c, h.googleOAuth)
}

// GET /auth/google/callback
func (h *OAuthHandler) googleCallback(c *gin.Context) {
	if h.googleOAuth == nil {
		response.NotFound(c)
		return
	}
	code, ok := h.consumeCallback(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	tok, err := h.googleOAuth.Exchange(ctx, code)
	if err != nil {
		h.providerFailure(c, models.ProviderGoogle, err)
		return
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		h.providerFailure(c, models.ProviderGoogle, fmt.Errorf("token response has no id_token"))
		return
	}
	idToken, err := h.googleVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		h.providerFailure(c, models.ProviderGoogle, err)
		return
	}

	var claims struct {
		Sub       string `json:"sub"`
		Name      string `json:"name"`
		GivenName string `json:"given_name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		h.providerFailure(c, models.ProviderGoogle, err)
		return
	}

	u, err := h.svc.ResolveExternal(ctx, models.ProviderGoogle, claims.Sub, claims.GivenName, claims.Name)
	if err != nil {
		h.log.Error("google identity resolution failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	h.local.establishSession(c, u.ID)
}

// GET /auth/facebook
func (h *OAuthHandler) facebookRedirect(c *gin.Context) {
	if h.facebookOAuth == nil {
		response.NotFound(c)
		return
	}
	h.redirectToProvider(c, h.facebookOAuth)
}

// GET /auth/facebook/callback
func (h *OAuthHandler) facebookCallback(c *gin.Context) {
	if h.facebookOAuth == nil {
		response.NotFound(c)
		return
	}
	code, ok := h.consumeCallback(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	tok, err := h.facebookOAuth.Exchange(ctx, code)
	if err != nil {
		h.providerFailure(c, models.ProviderFacebook, err)
		return
	}

	profile, err := fetchFacebookProfile(ctx, h.facebookOAuth, tok)
	if err != nil {
		h.providerFailure(c, models.ProviderFacebook, err)
		return
	}

	u, err := h.svc.ResolveExternal(ctx, models.ProviderFacebook, profile.ID, profile.FirstName, profile.Name)
	if err != nil {
		h.log.Error("facebook identity resolution failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	h.local.establishSession(c, u.ID)
}

func (h *OAuthHandler) redirectToProvider(c *gin.Context, conf *oauth2.Config) {
	state := uuid.NewString()
	c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusTemporaryRedirect, conf.AuthCodeURL(state))
}

// consumeCallback validates the anti-forgery state and returns the auth code.
func (h *OAuthHandler) consumeCallback(c *gin.Context) (string, bool) {
	expected, err := c.Cookie(stateCookieName)
	c.SetCookie(stateCookieName, "", -1, "/", "", h.cookieSecure, true)
	if err != nil || expected == "" || c.Query("state") != expected {
		response.BadRequest(c, "oauth state mismatch")
		return "", false
	}
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing authorization code")
		return "", false
	}
	return code, true
}

// providerFailure handles UpstreamProviderFailure: log the detail, send the
// caller back to the login form with a generic flag.
func (h *OAuthHandler) providerFailure(c *gin.Context, provider string, err error) {
	h.log.Warn("oauth handshake failed", zap.String("provider", provider), zap.Error(err))
	response.Redirect(c, "/login?error=1")
}

type facebookProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
}

func fetchFacebookProfile(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) (*facebookProfile, error) {
	resp, err := conf.Client(ctx, tok).Get(facebookGraphMe)
	if err != nil {
		return nil, fmt.Errorf("fetch facebook profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook profile endpoint returned %d", resp.StatusCode)
	}
	var p facebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode facebook profile: %w", err)
	}
	return &p, nil
}
