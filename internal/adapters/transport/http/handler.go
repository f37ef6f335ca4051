package http

import (
	"net/http"
	"strings"

	"github.com/lumehaven/identity/auth-service/internal/adapters/transport/http/dto"
	"github.com/lumehaven/identity/auth-service/internal/app/auth/service"
	authErrors "github.com/lumehaven/identity/auth-service/internal/domain/auth/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// Handler exposes the auth workflow over HTTP.
type Handler struct {
	svc service.Service
	log *zap.Logger
}

func NewHandler(svc service.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the /auth route group on the router.
func (h *Handler) Register(r gin.IRouter) {
	grp := r.Group("/auth")
	grp.POST("/register", h.register)
	grp.POST("/login", h.login)
	grp.POST("/refresh", h.refresh)
	grp.GET("/profile", h.profile)
	grp.POST("/logout", h.logout)
}

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "logged in",
		"accessToken":  session.AccessToken,
		"refreshToken": session.RefreshToken,
		"profile":      session.Profile,
	})
}

// refresh takes the refresh token from the Authorization header. A missing
// or malformed header is a 400 here, unlike the other bearer endpoints.
func (h *Handler) refresh(c *gin.Context) {
	raw, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed authorization header"})
		return
	}

	session, err := h.svc.Refresh(c.Request.Context(), raw)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "token refreshed",
		"accessToken":  session.AccessToken,
		"refreshToken": session.RefreshToken,
		"profile":      session.Profile,
	})
}

func (h *Handler) profile(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) logout(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}

	if err := h.svc.Logout(c.Request.Context(), userID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// authenticate resolves the bearer access token or writes a 401. An absent
// or malformed header counts as "no token".
func (h *Handler) authenticate(c *gin.Context) (int64, bool) {
	raw, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return 0, false
	}
	userID, err := h.svc.Authenticate(c.Request.Context(), raw)
	if err != nil {
		h.handleError(c, err)
		return 0, false
	}
	return userID, true
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	tok := header[len(bearerPrefix):]
	if tok == "" {
		return "", false
	}
	return tok, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case authErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case authErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
