package app

import (
	"fmt"

	"github.com/yungbote/questionbot-backend/internal/catalog"
	"github.com/yungbote/questionbot-backend/internal/observability"
	"github.com/yungbote/questionbot-backend/internal/platform/logger"
	"github.com/yungbote/questionbot-backend/internal/services"
)

type Services struct {
	Rephraser services.Rephraser
	Evaluator services.Evaluator
	Clarifier services.Clarifier
	Question  services.QuestionService
}

func wireServices(log *logger.Logger, cfg *Config, cat *catalog.Catalog, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	deployments := services.Deployments{
		Rephrase: cfg.Deployments.Rephrase,
		Evaluate: cfg.Deployments.Evaluate,
		Clarify:  cfg.Deployments.Clarify,
	}

	rephraser := services.NewRephraser(log, clients.Provider, metrics, deployments.Rephrase)
	clarifier := services.NewClarifier(log, clients.Provider, metrics, deployments.Clarify)
	evaluator, err := services.NewEvaluator(log, clients.Provider, metrics, deployments.Evaluate, cfg.Evaluation.RejectVerdict)
	if err != nil {
		return Services{}, fmt.Errorf("init evaluator: %w", err)
	}

	question := services.NewQuestionService(
		log,
		cat,
		clients.Sessions,
		evaluator,
		clarifier,
		rephraser,
		metrics,
		services.QuestionServiceConfig{IncludeNextIndex: cfg.Response.IncludeNextIndex},
	)

	return Services{
		Rephraser: rephraser,
		Evaluator: evaluator,
		Clarifier: clarifier,
		Question:  question,
	}, nil
}
