package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/questionbot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/questionbot-backend/internal/http/middleware"
	"github.com/yungbote/questionbot-backend/internal/observability"
	"github.com/yungbote/questionbot-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	// TracingService enables otelgin spans under this service name when set.
	TracingService string
	// Metrics exposes GET /metrics and instruments requests when non-nil.
	Metrics *observability.Metrics

	HealthHandler   *httpH.HealthHandler
	QuestionHandler *httpH.QuestionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Questionnaire
	if cfg.QuestionHandler != nil {
		r.POST("/question/", cfg.QuestionHandler.Ask)
	}

	return r
}
