package app

import (
	"github.com/yungbote/cardfolio-backend/internal/handlers"
	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/sse"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Organization *handlers.OrganizationHandler
	Person       *handlers.PersonHandler
	Photo        *handlers.PhotoHandler
	Scan         *handlers.ScanHandler
	Enrichment   *handlers.EnrichmentHandler
	Tag          *handlers.TagHandler
	Realtime     *handlers.RealtimeHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *sse.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:         handlers.NewAuthHandler(serviceset.Auth),
		Organization: handlers.NewOrganizationHandler(serviceset.Directory, serviceset.Avatar, serviceset.Bucket),
		Person:       handlers.NewPersonHandler(serviceset.Directory, serviceset.Avatar, serviceset.Bucket),
		Photo:        handlers.NewPhotoHandler(serviceset.Directory, serviceset.Avatar, serviceset.Bucket),
		Scan:         handlers.NewScanHandler(serviceset.Scan),
		Enrichment:   handlers.NewEnrichmentHandler(serviceset.Enrichment, serviceset.Directory),
		Tag:          handlers.NewTagHandler(serviceset.Directory),
		Realtime:     handlers.NewRealtimeHandler(hub),
	}
}
