package service

import (
	"time"

	"github.com/google/uuid"
)

const (
	featuredCacheKey = "videos:featured"
	featuredCacheTTL = 60 * time.Second
	videoCacheTTL    = 5 * time.Minute
	userCacheTTL     = 5 * time.Minute
	idempotencyTTL   = 24 * time.Hour
)

func videoCacheKey(id uuid.UUID) string {
	return "video:" + id.String()
}

func userCacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

func idempotencyCacheKey(userID uuid.UUID, key string) string {
	return "vote:idempotency:" + userID.String() + ":" + key
}
