package app

import (
	"github.com/gin-gonic/gin"

	httpserver "github.com/ayurmap/termbridge-backend/internal/http"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers) *gin.Engine {
	return httpserver.NewRouter(httpserver.RouterConfig{
		ServiceName:    serviceName,
		Log:            log,
		MappingHandler: handlers.Mapping,
		HealthHandler:  handlers.Health,
	})
}
