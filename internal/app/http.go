package app

import (
	"github.com/gin-gonic/gin"

	httpserver "github.com/yungbote/questionbot-backend/internal/http"
	httpH "github.com/yungbote/questionbot-backend/internal/http/handlers"
	"github.com/yungbote/questionbot-backend/internal/observability"
	"github.com/yungbote/questionbot-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Question *httpH.QuestionHandler
}

func wireHandlers(log *logger.Logger, cfg *Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Question: httpH.NewQuestionHandler(services.Question, cfg.HTTP.MaxRequestBytes),
	}
}

func wireRouter(log *logger.Logger, cfg *Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	if logger.IsProduction(cfg.Env) {
		gin.SetMode(gin.ReleaseMode)
	}
	tracingService := ""
	if cfg.Tracing.Enabled {
		tracingService = cfg.Tracing.ServiceName
	}
	return httpserver.NewRouter(httpserver.RouterConfig{
		Log:             log,
		TracingService:  tracingService,
		Metrics:         metrics,
		HealthHandler:   handlers.Health,
		QuestionHandler: handlers.Question,
	})
}
