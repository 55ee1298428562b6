package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/questionbot-backend/internal/observability"
	"github.com/yungbote/questionbot-backend/internal/platform/logger"
	"github.com/yungbote/questionbot-backend/internal/platform/orquesta"
)

type Rephraser interface {
	// Rephrase returns a natural-language version of question. previous is the
	// "Vraag/Antwoord" context of the prior turn, or "".
	Rephrase(ctx context.Context, question string, previous string) (string, error)
}

// Verdict is the evaluator's classification of an answer. Raw is the provider
// text exactly as returned.
type Verdict struct {
	Raw      string
	Rejected bool
}

type Evaluator interface {
	Evaluate(ctx context.Context, previousQuestion string, previousAnswer string) (Verdict, error)
}

type Clarifier interface {
	// Clarify produces the follow-up message asking the user to restate an answer.
	Clarify(ctx context.Context, previousAnswer string, previousQuestion string) (string, error)
}

type rephraser struct {
	d   *deployer
	key string
}

func NewRephraser(log *logger.Logger, client orquesta.Client, metrics *observability.Metrics, key string) Rephraser {
	return &rephraser{
		d:   newDeployer(log.With("service", "Rephraser"), client, metrics),
		key: key,
	}
}

func (r *rephraser) Rephrase(ctx context.Context, question string, previous string) (string, error) {
	return r.d.call(ctx, r.key, map[string]any{
		"question": question,
		"previous": previous,
	})
}

type evaluator struct {
	d             *deployer
	key           string
	rejectVerdict string
}

// NewEvaluator builds an Evaluator that rejects an answer when the deployment's
// reply equals rejectVerdict exactly (no trimming or case folding).
func NewEvaluator(log *logger.Logger, client orquesta.Client, metrics *observability.Metrics, key string, rejectVerdict string) (Evaluator, error) {
	if strings.TrimSpace(rejectVerdict) == "" {
		return nil, errors.New("reject verdict required")
	}
	return &evaluator{
		d:             newDeployer(log.With("service", "Evaluator"), client, metrics),
		key:           key,
		rejectVerdict: rejectVerdict,
	}, nil
}

func (e *evaluator) Evaluate(ctx context.Context, previousQuestion string, previousAnswer string) (Verdict, error) {
	raw, err := e.d.call(ctx, e.key, map[string]any{
		"previous_question": previousQuestion,
		"previous_answer":   previousAnswer,
	})
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{Raw: raw, Rejected: raw == e.rejectVerdict}, nil
}

type clarifier struct {
	d   *deployer
	key string
}

func NewClarifier(log *logger.Logger, client orquesta.Client, metrics *observability.Metrics, key string) Clarifier {
	return &clarifier{
		d:   newDeployer(log.With("service", "Clarifier"), client, metrics),
		key: key,
	}
}

func (c *clarifier) Clarify(ctx context.Context, previousAnswer string, previousQuestion string) (string, error) {
	return c.d.call(ctx, c.key, map[string]any{
		"previous_answer":   previousAnswer,
		"previous_question": previousQuestion,
	})
}
