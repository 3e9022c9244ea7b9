package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/yourusername/clipnest-go/api/handlers"
	"github.com/yourusername/clipnest-go/api/middleware"
	"github.com/yourusername/clipnest-go/internal/app"
	"github.com/yourusername/clipnest-go/internal/domain"
)

// SetupRouter sets up the HTTP router with one route group per platform
func SetupRouter(service *app.MediaService, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	api := router.Group("/api")
	{
		healthHandler := handlers.NewHealthHandler()
		api.GET("/health", healthHandler.Health)

		mediaHandler := handlers.NewMediaHandler(service, log)
		for _, platform := range domain.Platforms {
			group := api.Group("/" + string(platform))
			group.POST("/metadata", mediaHandler.Metadata(platform))
			group.GET("/download/:id/:contentType", mediaHandler.Download(platform))
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

// WithCORS wraps the router with the configured cross-origin policy
func WithCORS(router http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type", "Content-Disposition"},
		MaxAge:         86400,
	})
	return c.Handler(router)
}
