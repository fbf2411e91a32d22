package app

import (
	"time"

	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/utils"
)

type Config struct {
	JWTSecretKey   string
	TokenTTL       time.Duration
	RedisAddr      string
	RedisChannel   string
	SearchSteps    int
	StepInterval   time.Duration
	CompleteHold   time.Duration
	ListenAddr     string
	OTelEnabled    bool
	AvatarsEnabled bool
}

func LoadConfig(log *logger.Logger) Config {
	tokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
	stepIntervalMS := utils.GetEnvAsInt("ENRICHMENT_STEP_INTERVAL_MS", 2000, log)
	completeHoldMS := utils.GetEnvAsInt("ENRICHMENT_COMPLETE_HOLD_MS", 1500, log)
	return Config{
		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		TokenTTL:       time.Duration(tokenTTLSeconds) * time.Second,
		RedisAddr:      utils.GetEnv("REDIS_ADDR", "", log),
		RedisChannel:   utils.GetEnv("REDIS_SSE_CHANNEL", "cardfolio:sse", log),
		SearchSteps:    utils.GetEnvAsInt("ENRICHMENT_SEARCH_STEPS", 4, log),
		StepInterval:   time.Duration(stepIntervalMS) * time.Millisecond,
		CompleteHold:   time.Duration(completeHoldMS) * time.Millisecond,
		ListenAddr:     utils.GetEnv("LISTEN_ADDR", ":8080", log),
		OTelEnabled:    utils.GetEnvAsBool("OTEL_ENABLED", false, log),
		AvatarsEnabled: utils.GetEnvAsBool("AVATARS_ENABLED", true, log),
	}
}
