package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/questionbot-backend/internal/catalog"
	"github.com/yungbote/questionbot-backend/internal/domain/question"
	"github.com/yungbote/questionbot-backend/internal/observability"
	"github.com/yungbote/questionbot-backend/internal/platform/apierr"
	"github.com/yungbote/questionbot-backend/internal/platform/logger"
	"github.com/yungbote/questionbot-backend/internal/session"
)

type QuestionService interface {
	// Answer handles one turn of the questionnaire. In order:
	//   - a pending clarification for the user is replayed (and cleared), ignoring the turn's fields
	//   - otherwise the previous answer is evaluated; a rejection records the pending index and
	//     returns a clarification message
	//   - otherwise the catalog question at question_index is rephrased and returned
	Answer(ctx context.Context, turn question.Turn) (*question.Reply, error)
}

type QuestionServiceConfig struct {
	// IncludeNextIndex adds next_question_index to replies.
	IncludeNextIndex bool
}

type questionService struct {
	log       *logger.Logger
	catalog   *catalog.Catalog
	store     session.Store
	evaluator Evaluator
	clarifier Clarifier
	rephraser Rephraser
	metrics   *observability.Metrics
	cfg       QuestionServiceConfig
}

func NewQuestionService(
	log *logger.Logger,
	cat *catalog.Catalog,
	store session.Store,
	evaluator Evaluator,
	clarifier Clarifier,
	rephraser Rephraser,
	metrics *observability.Metrics,
	cfg QuestionServiceConfig,
) QuestionService {
	return &questionService{
		log:       log.With("service", "QuestionService"),
		catalog:   cat,
		store:     store,
		evaluator: evaluator,
		clarifier: clarifier,
		rephraser: rephraser,
		metrics:   metrics,
		cfg:       cfg,
	}
}

func (s *questionService) Answer(ctx context.Context, turn question.Turn) (*question.Reply, error) {
	userID := strings.TrimSpace(turn.UserID)
	if userID == "" {
		return nil, apierr.InvalidRequest("user_id is required")
	}
	s.log.Debug("turn received",
		"user_id", userID,
		"question_index", derefInt(turn.QuestionIndex),
		"previous_answer", turn.PreviousAnswerText(),
	)

	pending, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load pending clarification: %w", err)
	}
	if ok {
		return s.replay(ctx, userID, pending)
	}

	verdict, err := s.evaluator.Evaluate(ctx, turn.PreviousQuestionText(), turn.PreviousAnswerText())
	if err != nil {
		return nil, err
	}
	if verdict.Rejected {
		return s.clarify(ctx, userID, turn)
	}
	return s.advance(ctx, turn)
}

// replay resends the question that was waiting for clarification. The entry is
// cleared on this contact whatever the outcome.
func (s *questionService) replay(ctx context.Context, userID string, index int) (*question.Reply, error) {
	if err := s.store.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear pending clarification: %w", err)
	}
	rec, ok := s.catalog.At(index)
	if !ok {
		s.log.Warn("pending clarification points outside catalog", "user_id", userID, "question_index", index)
		return nil, apierr.InvalidQuestionIndex()
	}
	text, err := s.rephraser.Rephrase(ctx, rec.Text, "")
	if err != nil {
		return nil, err
	}
	s.metrics.IncTurn(string(question.BranchReplay))
	s.log.Info("replaying question after clarification", "user_id", userID, "question_index", index)
	return s.reply(text, rec.QuickReplyOptions, index+1), nil
}

func (s *questionService) clarify(ctx context.Context, userID string, turn question.Turn) (*question.Reply, error) {
	index := derefInt(turn.QuestionIndex)
	if err := s.store.Set(ctx, userID, index); err != nil {
		return nil, fmt.Errorf("store pending clarification: %w", err)
	}
	text, err := s.clarifier.Clarify(ctx, turn.PreviousAnswerText(), turn.PreviousQuestionText())
	if err != nil {
		return nil, err
	}
	s.metrics.IncTurn(string(question.BranchClarify))
	s.log.Info("answer rejected, asking for clarification", "user_id", userID, "question_index", index)

	r := &question.Reply{RephrasedQuestion: text, QuickReplyOptions: []string{}}
	if s.cfg.IncludeNextIndex && turn.QuestionIndex != nil {
		next := *turn.QuestionIndex
		r.NextQuestionIndex = &next
	}
	return r, nil
}

func (s *questionService) advance(ctx context.Context, turn question.Turn) (*question.Reply, error) {
	if turn.QuestionIndex == nil {
		return nil, apierr.InvalidQuestionIndex()
	}
	index := *turn.QuestionIndex
	if index < 1 || index > s.catalog.Len() {
		return nil, apierr.InvalidQuestionIndex()
	}

	index, rec, ok := s.resolve(index, turn.PreviousAnswer)
	if !ok {
		return nil, apierr.NoSuitableQuestion()
	}

	text, err := s.rephraser.Rephrase(ctx, rec.Text, PreviousContext(turn.PreviousQuestionText(), turn.PreviousAnswerText()))
	if err != nil {
		return nil, err
	}
	s.metrics.IncTurn(string(question.BranchAdvance))
	s.log.Info("sending question", "question_index", index, "rephrased_question", text, "quick_reply_options", rec.QuickReplyOptions)
	return s.reply(text, rec.QuickReplyOptions, index+1), nil
}

// resolve walks forward from index past records whose condition does not hold
// for previousAnswer. Imported records carry no condition, so the walk stops
// at index for spreadsheet data.
func (s *questionService) resolve(index int, previousAnswer *string) (int, question.Record, bool) {
	for ; index <= s.catalog.Len(); index++ {
		rec, _ := s.catalog.At(index)
		cond := rec.ConditionText()
		if cond == "" {
			return index, rec, true
		}
		if previousAnswer != nil && IsConditionMet(cond, *previousAnswer) {
			return index, rec, true
		}
		s.log.Debug("condition not met, skipping question", "question_index", index, "condition", cond)
	}
	return index, question.Record{}, false
}

func (s *questionService) reply(text string, options []string, next int) *question.Reply {
	opts := make([]string, len(options))
	copy(opts, options)
	r := &question.Reply{RephrasedQuestion: text, QuickReplyOptions: opts}
	if s.cfg.IncludeNextIndex {
		r.NextQuestionIndex = &next
	}
	return r
}

// PreviousContext renders the prior turn for the rephraser. Both fields must
// be non-empty, otherwise the context is "".
func PreviousContext(previousQuestion string, previousAnswer string) string {
	if previousQuestion == "" || previousAnswer == "" {
		return ""
	}
	return fmt.Sprintf("Vraag: %s\nAntwoord: %s", previousQuestion, previousAnswer)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
