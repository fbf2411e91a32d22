package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardfolio-backend/internal/server"
)

func wireRouter(handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:         handlerset.Auth,
		AuthMiddleware:      middlewareset.Auth,
		OrganizationHandler: handlerset.Organization,
		PersonHandler:       handlerset.Person,
		PhotoHandler:        handlerset.Photo,
		ScanHandler:         handlerset.Scan,
		EnrichmentHandler:   handlerset.Enrichment,
		TagHandler:          handlerset.Tag,
		RealtimeHandler:     handlerset.Realtime,
	})
}
