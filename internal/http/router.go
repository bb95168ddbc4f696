package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/ayurmap/termbridge-backend/internal/http/handlers"
	httpMW "github.com/ayurmap/termbridge-backend/internal/http/middleware"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName string
	Log         *logger.Logger

	MappingHandler *httpH.MappingHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "termbridge"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		if cfg.MappingHandler != nil {
			m := api.Group("/mapping")
			m.POST("/trigger", cfg.MappingHandler.TriggerMapping)
			m.POST("/sync", cfg.MappingHandler.TriggerSync)
			m.GET("/status", cfg.MappingHandler.GetStatus)
			m.GET("/runs/:jobID", cfg.MappingHandler.GetRun)
			m.POST("/validate", cfg.MappingHandler.SubmitValidation)
			m.POST("/translate", cfg.MappingHandler.TranslateCode)
			m.GET("/conceptmap", cfg.MappingHandler.GetConceptMap)
			m.GET("/search-suggestions/:display", cfg.MappingHandler.SearchSuggestions)
		}
	}

	return r
}
