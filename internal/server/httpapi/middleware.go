package httpapi

import (
	"net/http"
	"strings"

	"github.com/akarpov87/authkeeper/internal/common"
	"github.com/akarpov87/authkeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const userContextKey = "current_user"

// requireAccessToken resolves the bearer token to a user and stores it in the
// request context. Missing, malformed, expired, and revoked-subject tokens
// all abort with 401.
func (h *Handler) requireAccessToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				Response{Success: false, Error: common.ErrorUnauthorized.Error()})
			return
		}

		user, err := h.auth.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				Response{Success: false, Error: common.ErrInvalidOrExpiredToken.Error()})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, common.BearerPrefix)
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
