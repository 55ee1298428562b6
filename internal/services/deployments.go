package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/questionbot-backend/internal/observability"
	"github.com/yungbote/questionbot-backend/internal/platform/apierr"
	"github.com/yungbote/questionbot-backend/internal/platform/ctxutil"
	"github.com/yungbote/questionbot-backend/internal/platform/logger"
	"github.com/yungbote/questionbot-backend/internal/platform/orquesta"
)

// Deployments names the provider deployment used by each delegator.
type Deployments struct {
	Rephrase string
	Evaluate string
	Clarify  string
}

// deployer is the shared call path of the three delegators.
type deployer struct {
	log     *logger.Logger
	client  orquesta.Client
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func newDeployer(log *logger.Logger, client orquesta.Client, metrics *observability.Metrics) *deployer {
	return &deployer{
		log:     log,
		client:  client,
		metrics: metrics,
		tracer:  observability.Tracer(),
	}
}

// call invokes key and returns the first choice's text unmodified.
func (d *deployer) call(ctx context.Context, key string, inputs map[string]any) (string, error) {
	ctx, span := d.tracer.Start(ctx, "deployment.invoke", trace.WithAttributes(attribute.String("deployment.key", key)))
	defer span.End()

	start := time.Now()
	dep, err := d.client.Invoke(ctx, key, map[string]any{"environments": []string{}}, inputs)
	var text string
	if err == nil {
		text, err = dep.Content()
	}
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
	}
	d.metrics.ObserveDeployment(key, status, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deployment failed")
		d.log.Error("deployment call failed", "key", key, "request_id", ctxutil.RequestID(ctx), "error", err)
		return "", apierr.UpstreamUnavailable(key, err)
	}
	return text, nil
}
