package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ostapkoval/photostream-api/internal/middleware"
	"github.com/ostapkoval/photostream-api/internal/models"
)

// currentUser pulls the authenticated user from the gin context. It is only
// valid behind the JWT middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
