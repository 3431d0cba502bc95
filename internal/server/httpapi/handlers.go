package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/akarpov87/authkeeper/internal/common"
	"github.com/akarpov87/authkeeper/internal/server/models"
	"github.com/akarpov87/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AuthProvider is the slice of the auth service the HTTP layer depends on.
type AuthProvider interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(ctx context.Context, accessToken string) (*models.User, error)
}

type Handler struct {
	auth AuthProvider
}

func NewHandler(auth AuthProvider) *Handler {
	return &Handler{auth: auth}
}

// RegisterRoutes mounts the auth endpoints on the engine. /auth/me sits
// behind the bearer middleware; the rest authenticate by request body.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/logout", h.logout)
		auth.GET("/me", h.requireAccessToken(), h.me)
	}
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, common.ErrInvalidCredentials.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}

	respondOK(c, http.StatusOK, tokenPairData(pair), "Login successful")
}

func (h *Handler) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, common.ErrMissingToken.Error())
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrInvalidOrExpiredToken) {
			respondError(c, http.StatusUnauthorized, common.ErrInvalidOrExpiredToken.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}

	respondOK(c, http.StatusOK, tokenPairData(pair), "Token refreshed successfully")
}

func (h *Handler) logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, common.ErrMissingToken.Error())
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, common.ErrMissingToken) {
			respondError(c, http.StatusBadRequest, common.ErrMissingToken.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}

	respondOK(c, http.StatusOK, nil, "Logout successful")
}

func (h *Handler) me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
		return
	}

	respondOK(c, http.StatusOK, userData(user), "User retrieved successfully")
}

func tokenPairData(pair *services.TokenPair) tokenPairPayload {
	return tokenPairPayload{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         userData(pair.User),
	}
}

func userData(u *models.User) userPayload {
	return userPayload{ID: u.ID, Email: u.Email, Name: u.Name}
}
