package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ostapkoval/photostream-api/internal/service"
	appErrors "github.com/ostapkoval/photostream-api/pkg/errors"
	"github.com/ostapkoval/photostream-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated user.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid access token. The token is
// verified and resolved to a live user record before the handler runs; a
// token whose user no longer exists is rejected.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}
