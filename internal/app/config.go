package app

import (
	"time"

	"github.com/dentiqcloud/dentiq-backend/internal/logger"
	"github.com/dentiqcloud/dentiq-backend/internal/utils"
)

type Config struct {
	JWTSecretKey       string
	ServiceTokenSecret string
	AccessTokenTTL     time.Duration
	AIModelID          string

	MembershipCacheProvider string
	MembershipCacheTTL      time.Duration

	RedispatchInterval time.Duration
	RedispatchMinAge   time.Duration
	RedispatchBatch    int
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	serviceTokenSecret := utils.GetEnv("SERVICE_TOKEN_SECRET", "defaultservicesecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	aiModelID := utils.GetEnv("AI_MODEL_ID", "cbct-analyzer-v1", log)
	cacheProvider := utils.GetEnv("MEMBERSHIP_CACHE_PROVIDER", "memory", log)
	cacheTTLSeconds := utils.GetEnvAsInt("MEMBERSHIP_CACHE_TTL", 300, log)
	redispatchIntervalSeconds := utils.GetEnvAsInt("REDISPATCH_INTERVAL", 300, log)
	redispatchMinAgeSeconds := utils.GetEnvAsInt("REDISPATCH_MIN_AGE", 900, log)
	redispatchBatch := utils.GetEnvAsInt("REDISPATCH_BATCH", 50, log)
	return Config{
		JWTSecretKey:            jwtSecretKey,
		ServiceTokenSecret:      serviceTokenSecret,
		AccessTokenTTL:          time.Duration(accessTokenTTLSeconds) * time.Second,
		AIModelID:               aiModelID,
		MembershipCacheProvider: cacheProvider,
		MembershipCacheTTL:      time.Duration(cacheTTLSeconds) * time.Second,
		RedispatchInterval:      time.Duration(redispatchIntervalSeconds) * time.Second,
		RedispatchMinAge:        time.Duration(redispatchMinAgeSeconds) * time.Second,
		RedispatchBatch:         redispatchBatch,
	}
}
