package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/questionbot-backend/internal/domain/question"
	httpMW "github.com/yungbote/questionbot-backend/internal/http/middleware"
	"github.com/yungbote/questionbot-backend/internal/http/response"
	"github.com/yungbote/questionbot-backend/internal/platform/apierr"
	"github.com/yungbote/questionbot-backend/internal/services"
)

type QuestionHandler struct {
	questions       services.QuestionService
	maxRequestBytes int64
}

func NewQuestionHandler(questions services.QuestionService, maxRequestBytes int64) *QuestionHandler {
	return &QuestionHandler{questions: questions, maxRequestBytes: maxRequestBytes}
}

// POST /question/
func (h *QuestionHandler) Ask(c *gin.Context) {
	if h.maxRequestBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	}
	var turn question.Turn
	if err := c.ShouldBindJSON(&turn); err != nil {
		_ = c.Error(err)
		response.RespondError(c, bindError(err))
		return
	}
	if userID := strings.TrimSpace(turn.UserID); userID != "" {
		c.Set(httpMW.ContextUserID, userID)
	}

	reply, err := h.questions.Answer(c.Request.Context(), turn)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, reply)
}

// bindError hides decoder internals from the client; the raw error stays on
// the gin context for the request log.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierr.InvalidRequest("request body too large")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apierr.InvalidRequest("invalid request body: field " + typeErr.Field)
	}
	return apierr.InvalidRequest("invalid request body")
}
