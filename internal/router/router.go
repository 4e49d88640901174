package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ostapkoval/photostream-api/internal/handler"
	"github.com/ostapkoval/photostream-api/internal/middleware"
	"github.com/ostapkoval/photostream-api/internal/service"
	"github.com/ostapkoval/photostream-api/pkg/config"
	"github.com/ostapkoval/photostream-api/pkg/logger"
	corsmiddleware "github.com/ostapkoval/photostream-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ostapkoval/photostream-api/pkg/middleware/requestid"

	"go.uber.org/zap"
)

// Deps collects everything the router needs to mount the API.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    *service.AuthService
	Metrics *service.MetricsService
	Photos  *handler.PhotoHandler
	Users   *handler.UserHandler
	AuthH   *handler.AuthHandler
}

// New builds the gin engine with all middleware and routes mounted.
func New(d Deps) *gin.Engine {
	if d.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(d.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	if d.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	guard := middleware.JWT(d.Auth)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.AuthH.Register)
			auth.POST("/login", d.AuthH.Login)
			auth.POST("/refresh-token", d.AuthH.Refresh)
			auth.POST("/logout", guard, d.AuthH.Logout)
			auth.GET("/me", guard, d.AuthH.Me)
		}

		photos := v1.Group("/photos")
		{
			photos.GET("", d.Photos.List)
			photos.GET("/:id", d.Photos.Get)
			photos.POST("", guard, d.Photos.Upload)
			photos.PUT("/:id", guard, d.Photos.Update)
			photos.DELETE("/:id", guard, d.Photos.Delete)
			photos.POST("/:id/rate", guard, d.Photos.Rate)
			photos.POST("/:id/comment", guard, d.Photos.Comment)
		}

		users := v1.Group("/users")
		{
			users.PUT("/profile", guard, d.Users.UpdateProfile)
			users.GET("/:id", d.Users.Get)
			users.GET("/:id/photos", d.Users.Photos)
		}
	}

	return r
}
