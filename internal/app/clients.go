package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/ayurmap/termbridge-backend/internal/clients/redis"
	"github.com/ayurmap/termbridge-backend/internal/platform/icd"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

type Clients struct {
	Cache    redis.Cache
	Registry icd.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis is optional. Without REDIS_ADDR registry searches go uncached.
	var cache redis.Cache
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		c, err := redis.NewCache(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis cache: %w", err)
		}
		cache = c
	} else {
		log.Info("REDIS_ADDR not set, registry cache disabled")
	}

	registry, err := icd.NewClient(log, cache)
	if err != nil {
		if cache != nil {
			_ = cache.Close()
		}
		return Clients{}, fmt.Errorf("init registry client: %w", err)
	}

	return Clients{
		Cache:    cache,
		Registry: registry,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}
