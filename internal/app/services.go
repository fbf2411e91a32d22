package app

import (
	"context"

	"github.com/yungbote/cardfolio-backend/internal/clients/gcp"
	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/realtime/bus"
	"github.com/yungbote/cardfolio-backend/internal/services"
	"github.com/yungbote/cardfolio-backend/internal/sse"
)

type Services struct {
	Auth       services.AuthService
	Directory  services.DirectoryService
	Enrichment services.EnrichmentService
	Scan       services.ScanService
	Avatar     services.AvatarService
	Bucket     gcp.BucketService
	Bus        bus.Bus
}

// wireServices builds the service graph. GCP-backed pieces (OCR, structured
// card parsing, photo storage, avatars) degrade to nil when their env is
// absent so the directory itself stays usable without any cloud credentials.
func wireServices(log *logger.Logger, cfg Config, reposet Repos, hub *sse.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	sseBus := wireBus(log, cfg)
	if err := sseBus.StartForwarder(context.Background(), hub.Broadcast); err != nil {
		return Services{}, err
	}
	notifier := services.NewBusNotifier(log, sseBus)

	registry := services.NewTagRegistry()
	directory := services.NewDirectoryService(log, reposet.Organization, reposet.Person, registry, notifier)

	enrichClient := services.NewOpenAIEnrichmentClient(log)
	enrichment := services.NewEnrichmentService(log, directory, enrichClient, notifier, services.EnrichmentConfig{
		SearchSteps:  cfg.SearchSteps,
		StepInterval: cfg.StepInterval,
		CompleteHold: cfg.CompleteHold,
	})

	auth := services.NewAuthService(log, reposet.User, cfg.JWTSecretKey, cfg.TokenTTL)

	var bucketService gcp.BucketService
	if bs, err := gcp.NewBucketService(log); err != nil {
		log.Warn("Photo bucket unavailable, uploads will be metadata-only", "error", err)
	} else {
		bucketService = bs
	}

	var avatarService services.AvatarService
	if cfg.AvatarsEnabled && bucketService != nil {
		av, err := services.NewAvatarService(log, bucketService)
		if err != nil {
			log.Warn("Avatar service unavailable", "error", err)
		} else {
			avatarService = av
		}
	}

	var vision gcp.Vision
	if v, err := gcp.NewVision(log); err != nil {
		log.Warn("Vision OCR unavailable", "error", err)
	} else {
		vision = v
	}
	var document gcp.Document
	if d, err := gcp.NewDocument(log); err != nil {
		log.Warn("Document parsing unavailable", "error", err)
	} else {
		document = d
	}
	scan := services.NewScanService(log, vision, document, directory)

	return Services{
		Auth:       auth,
		Directory:  directory,
		Enrichment: enrichment,
		Scan:       scan,
		Avatar:     avatarService,
		Bucket:     bucketService,
		Bus:        sseBus,
	}, nil
}

func wireBus(log *logger.Logger, cfg Config) bus.Bus {
	if cfg.RedisAddr == "" {
		return bus.NewLocalBus()
	}
	redisBus, err := bus.NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel)
	if err != nil {
		log.Warn("Redis bus unavailable, falling back to in-process bus", "error", err)
		return bus.NewLocalBus()
	}
	return redisBus
}
