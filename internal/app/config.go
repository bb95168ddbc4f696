package app

import (
	"time"

	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
	"github.com/ayurmap/termbridge-backend/internal/utils"
)

type Config struct {
	ServerPort     string
	Environment    string
	Version        string
	WhoRelease     string
	WorkerInterval time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		ServerPort:     utils.GetEnv("SERVER_PORT", "8080", log),
		Environment:    utils.GetEnv("ENV", "development", log),
		Version:        utils.GetEnv("SERVICE_VERSION", "dev", log),
		WhoRelease:     utils.GetEnv("WHO_ICD_RELEASE", "release/11/2023-01/mms", log),
		WorkerInterval: utils.GetEnvAsDuration("MAPPING_WORKER_INTERVAL", time.Second, log),
	}
}
