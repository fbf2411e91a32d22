package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/cardfolio-backend/internal/handlers"
	"github.com/yungbote/cardfolio-backend/internal/middleware"
	"github.com/yungbote/cardfolio-backend/internal/utils"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	OrganizationHandler *handlers.OrganizationHandler
	PersonHandler       *handlers.PersonHandler
	PhotoHandler        *handlers.PhotoHandler
	ScanHandler         *handlers.ScanHandler
	EnrichmentHandler   *handlers.EnrichmentHandler
	TagHandler          *handlers.TagHandler
	RealtimeHandler     *handlers.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowedOrigins := strings.Split(utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", nil), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware("cardfolio-backend"))

	// Public
	router.GET("/api/health", handlers.HealthCheck)
	router.POST("/api/auth/login", cfg.AuthHandler.Login)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Realtime
	api.GET("/events", cfg.RealtimeHandler.Stream)

	// Organizations
	api.GET("/organizations", cfg.OrganizationHandler.List)
	api.POST("/organizations", cfg.OrganizationHandler.Create)
	api.GET("/organizations/:id", cfg.OrganizationHandler.Get)
	api.PATCH("/organizations/:id", cfg.OrganizationHandler.Update)
	api.DELETE("/organizations/:id", cfg.OrganizationHandler.Delete)
	api.POST("/organizations/:id/photos", cfg.PhotoHandler.UploadOrganizationPhoto)
	api.POST("/organizations/:id/enrich", cfg.EnrichmentHandler.EnrichOrganization)
	api.POST("/organizations/:id/enrich/revert", cfg.EnrichmentHandler.RevertOrganization)

	// People
	api.GET("/people", cfg.PersonHandler.List)
	api.POST("/people", cfg.PersonHandler.Create)
	api.GET("/people/:id", cfg.PersonHandler.Get)
	api.PATCH("/people/:id", cfg.PersonHandler.Update)
	api.DELETE("/people/:id", cfg.PersonHandler.Delete)
	api.POST("/people/:id/links/:orgID", cfg.PersonHandler.Link)
	api.DELETE("/people/:id/links/:orgID", cfg.PersonHandler.Unlink)
	api.POST("/people/:id/photos", cfg.PhotoHandler.UploadPersonPhoto)
	api.POST("/people/:id/enrich", cfg.EnrichmentHandler.EnrichPerson)
	api.POST("/people/:id/enrich/revert", cfg.EnrichmentHandler.RevertPerson)

	// Card intake
	api.POST("/scan", cfg.ScanHandler.Scan)

	api.GET("/photos/*key", cfg.PhotoHandler.Download)

	// Enrichment + tags
	api.GET("/enrichment/status", cfg.EnrichmentHandler.Status)
	api.GET("/tags", cfg.TagHandler.List)

	return router
}
