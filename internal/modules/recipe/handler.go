package recipe

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/perfectdish/core/internal/middleware"
	"github.com/perfectdish/core/internal/models"
	"github.com/perfectdish/core/internal/modules/storage/blob"
	"github.com/perfectdish/core/internal/pkg/response"
)

// Handler serves the public browsing surface and the authenticated composer.
type Handler struct {
	svc   *Service
	blobs blob.Store
	log   *zap.Logger
}

func NewHandler(svc *Service, blobs blob.Store, log *zap.Logger) *Handler {
	return &Handler{svc: svc, blobs: blobs, log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	r.GET("/", h.home)
	r.POST("/search", h.search)
	r.GET("/compose", requireAuth, h.composeForm)
	r.POST("/compose", requireAuth, h.compose)
	r.GET("/profile", requireAuth, h.ownProfile)
	r.GET("/user/:userId", h.userProfile)
	r.GET("/delete/:userId/:recipeId", requireAuth, h.remove)
	r.GET("/posts/:userId/:recipeId", h.detail)
	r.GET("/posts/:userId/:recipeId/:filename", h.legacyDetail)
	r.GET("/image/:filename", h.image)
}

// GET /
func (h *Handler) home(c *gin.Context) {
	users, err := h.svc.Home(c.Request.Context())
	if err != nil {
		h.log.Error("home listing failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Users":    users,
		"LoggedIn": middleware.IsAuthenticated(c),
	})
}

// POST /search
func (h *Handler) search(c *gin.Context) {
	query := c.PostForm("query")
	hits, err := h.svc.Search(c.Request.Context(), query)
	if err != nil {
		h.log.Error("search failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.HTML(http.StatusOK, "search.html", gin.H{
		"Query":    query,
		"Hits":     hits,
		"LoggedIn": middleware.IsAuthenticated(c),
	})
}

// GET /compose
func (h *Handler) composeForm(c *gin.Context) {
	c.HTML(http.StatusOK, "compose.html", gin.H{"LoggedIn": true})
}

// POST /compose
func (h *Handler) compose(c *gin.Context) {
	callerID, _ := middleware.CurrentUserID(c)

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		response.BadRequest(c, "malformed form")
		return
	}
	draft := ParseDraft(c.Request.PostForm)

	var upload *Upload
	if fileHeader, err := c.FormFile("file"); err == nil && fileHeader.Size > 0 {
		file, err := fileHeader.Open()
		if err != nil {
			h.log.Error("open upload failed", zap.Error(err))
			response.InternalError(c)
			return
		}
		defer file.Close()
		upload = &Upload{
			Content:     file,
			Filename:    fileHeader.Filename,
			ContentType: blob.DetectContentType(fileHeader.Filename, nil, fileHeader.Header.Get("Content-Type")),
		}
	}

	if _, err := h.svc.Compose(c.Request.Context(), callerID, draft, upload); err != nil {
		switch {
		case errors.Is(err, ErrMissingTitle):
			response.BadRequest(c, err.Error())
		case errors.Is(err, models.ErrOwnerNotFound):
			response.NotFound(c)
		default:
			h.log.Error("compose failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.Redirect(c, "/")
}

// GET /profile
func (h *Handler) ownProfile(c *gin.Context) {
	callerID, _ := middleware.CurrentUserID(c)
	h.renderProfile(c, callerID, true)
}

// GET /user/:userId
func (h *Handler) userProfile(c *gin.Context) {
	userID, ok := parseObjectID(c, "userId")
	if !ok {
		return
	}
	callerID, _ := middleware.CurrentUserID(c)
	h.renderProfile(c, userID, callerID == userID)
}

func (h *Handler) renderProfile(c *gin.Context, userID primitive.ObjectID, own bool) {
	u, err := h.svc.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrOwnerNotFound) {
			response.NotFound(c)
			return
		}
		h.log.Error("profile lookup failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"User":     u,
		"Own":      own,
		"LoggedIn": middleware.IsAuthenticated(c),
	})
}

// GET /delete/:userId/:recipeId
// Destructive and therefore guarded: the session identity must match the
// owner in the path.
func (h *Handler) remove(c *gin.Context) {
	ownerID, ok := parseObjectID(c, "userId")
	if !ok {
		return
	}
	recipeID, ok := parseObjectID(c, "recipeId")
	if !ok {
		return
	}
	callerID, _ := middleware.CurrentUserID(c)

	err := h.svc.Remove(c.Request.Context(), callerID, ownerID, recipeID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotOwner):
			response.Forbidden(c, "you can only delete your own recipes")
		case errors.Is(err, models.ErrOwnerNotFound), errors.Is(err, models.ErrRecipeNotFound):
			response.NotFound(c)
		default:
			h.log.Error("recipe removal failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.Redirect(c, "/profile")
}

// GET /posts/:userId/:recipeId
func (h *Handler) detail(c *gin.Context) {
	ownerID, ok := parseObjectID(c, "userId")
	if !ok {
		return
	}
	recipeID, ok := parseObjectID(c, "recipeId")
	if !ok {
		return
	}

	owner, r, err := h.svc.Detail(c.Request.Context(), ownerID, recipeID)
	if err != nil {
		if errors.Is(err, models.ErrOwnerNotFound) || errors.Is(err, models.ErrRecipeNotFound) {
			response.NotFound(c)
			return
		}
		h.log.Error("recipe detail failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.HTML(http.StatusOK, "post.html", gin.H{
		"Owner":    owner,
		"Recipe":   r,
		"LoggedIn": middleware.IsAuthenticated(c),
	})
}

// GET /posts/:userId/:recipeId/:filename
// Legacy index-addressed links: the middle segment is a zero-based position.
// Resolve it to the stable recipe id and redirect permanently.
func (h *Handler) legacyDetail(c *gin.Context) {
	ownerID, ok := parseObjectID(c, "userId")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("recipeId"))
	if err != nil || index < 0 {
		response.NotFound(c)
		return
	}

	r, err := h.svc.DetailByIndex(c.Request.Context(), ownerID, index)
	if err != nil {
		if errors.Is(err, models.ErrOwnerNotFound) || errors.Is(err, models.ErrRecipeNotFound) {
			response.NotFound(c)
			return
		}
		h.log.Error("legacy detail lookup failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.Redirect(http.StatusMovedPermanently, "/posts/"+ownerID.Hex()+"/"+r.ID.Hex())
}

// GET /image/:filename
func (h *Handler) image(c *gin.Context) {
	filename := c.Param("filename")
	stream, meta, err := h.blobs.Open(c.Request.Context(), filename)
	if err != nil {
		if errors.Is(err, models.ErrBlobNotFound) {
			response.NotFound(c)
			return
		}
		h.log.Error("image fetch failed", zap.Error(err), zap.String("filename", filename))
		response.InternalError(c)
		return
	}
	defer stream.Close()

	c.Header("Cache-Control", "public, max-age=31536000")
	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, meta.Size, contentType, stream, nil)
}

func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		response.NotFound(c)
		return primitive.NilObjectID, false
	}
	return id, true
}
