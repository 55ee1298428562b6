package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/questionbot-backend/internal/catalog"
	"github.com/yungbote/questionbot-backend/internal/domain/question"
	httpH "github.com/yungbote/questionbot-backend/internal/http/handlers"
	"github.com/yungbote/questionbot-backend/internal/http/response"
	"github.com/yungbote/questionbot-backend/internal/observability"
	"github.com/yungbote/questionbot-backend/internal/platform/logger"
	"github.com/yungbote/questionbot-backend/internal/platform/orquesta"
	"github.com/yungbote/questionbot-backend/internal/services"
	"github.com/yungbote/questionbot-backend/internal/session"
)

type testServer struct {
	router  *gin.Engine
	mock    *orquesta.Mock
	store   *session.MemoryStore
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, replies map[string]string, maxBytes int64) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	mock := orquesta.NewMock(replies)
	metrics := observability.NewMetrics()
	store := session.NewMemoryStore()
	cat := catalog.New([]question.Record{
		{Text: "Wat is uw naam?", QuickReplyOptions: []string{}},
		{Text: "Heeft u personeel?", QuickReplyOptions: []string{"Ja", "Nee"}},
	})

	eval, err := services.NewEvaluator(log, mock, metrics, "evaluate", "Nee")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	svc := services.NewQuestionService(
		log, cat, store, eval,
		services.NewClarifier(log, mock, metrics, "clarify"),
		services.NewRephraser(log, mock, metrics, "rephrase"),
		metrics,
		services.QuestionServiceConfig{},
	)

	r := NewRouter(RouterConfig{
		Log:             log,
		Metrics:         metrics,
		HealthHandler:   httpH.NewHealthHandler(),
		QuestionHandler: httpH.NewQuestionHandler(svc, maxBytes),
	})
	return &testServer{router: r, mock: mock, store: store, metrics: metrics}
}

func (s *testServer) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/question/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorEnvelope {
	t.Helper()
	var out response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestQuestionEndpointAcceptedAnswer(t *testing.T) {
	s := newTestServer(t, map[string]string{"evaluate": "Ja"}, 0)

	rec := s.post(t, `{"question_index":1,"previous_question":null,"previous_answer":null,"user_id":"u1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	out := decodeReply(t, rec)
	if out["rephrased_question"] != "Wat is uw naam?" {
		t.Fatalf("rephrased_question=%v", out["rephrased_question"])
	}
	opts, ok := out["quick_reply_options"].([]any)
	if !ok || len(opts) != 0 {
		t.Fatalf("quick_reply_options=%#v", out["quick_reply_options"])
	}
	if _, present := out["next_question_index"]; present {
		t.Fatalf("next_question_index should be omitted by default")
	}
}

func TestQuestionEndpointRejectedAnswerStoresPending(t *testing.T) {
	s := newTestServer(t, map[string]string{"evaluate": "Nee", "clarify": "Kunt u dat toelichten?"}, 0)

	rec := s.post(t, `{"question_index":1,"previous_question":"Wat is uw naam?","previous_answer":"?","user_id":"u1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	out := decodeReply(t, rec)
	if out["rephrased_question"] != "Kunt u dat toelichten?" {
		t.Fatalf("rephrased_question=%v", out["rephrased_question"])
	}
	if opts, _ := out["quick_reply_options"].([]any); len(opts) != 0 {
		t.Fatalf("quick_reply_options=%#v", out["quick_reply_options"])
	}

	idx, ok, err := s.store.Get(t.Context(), "u1")
	if err != nil || !ok || idx != 1 {
		t.Fatalf("pending entry: idx=%d ok=%v err=%v", idx, ok, err)
	}

	// Next contact replays question 1 regardless of payload and clears the entry.
	rec = s.post(t, `{"question_index":2,"previous_question":"x","previous_answer":"y","user_id":"u1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeReply(t, rec)["rephrased_question"]; got != "Wat is uw naam?" {
		t.Fatalf("replayed question=%v", got)
	}
	if _, ok, _ := s.store.Get(t.Context(), "u1"); ok {
		t.Fatalf("pending entry should be cleared")
	}
}

func TestQuestionEndpointErrors(t *testing.T) {
	s := newTestServer(t, map[string]string{"evaluate": "Ja"}, 256)

	cases := []struct {
		name   string
		body   string
		status int
		code   string
		detail string
	}{
		{name: "missing index", body: `{"user_id":"u1"}`, status: http.StatusBadRequest, code: "invalid_question_index", detail: "Invalid question index"},
		{name: "zero index", body: `{"question_index":0,"user_id":"u1"}`, status: http.StatusBadRequest, code: "invalid_question_index", detail: "Invalid question index"},
		{name: "index past end", body: `{"question_index":3,"user_id":"u1"}`, status: http.StatusBadRequest, code: "invalid_question_index", detail: "Invalid question index"},
		{name: "malformed json", body: `{"question_index":`, status: http.StatusBadRequest, code: "invalid_request", detail: "invalid request body"},
		{name: "wrong type", body: `{"question_index":"one","user_id":"u1"}`, status: http.StatusBadRequest, code: "invalid_request", detail: "invalid request body: field question_index"},
		{name: "missing user", body: `{"question_index":1}`, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "body too large", body: `{"user_id":"` + strings.Repeat("x", 512) + `"}`, status: http.StatusBadRequest, code: "invalid_request", detail: "request body too large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.post(t, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status=%d want=%d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			env := decodeError(t, rec)
			if env.Code != tc.code {
				t.Fatalf("code=%q want=%q", env.Code, tc.code)
			}
			if tc.detail != "" && env.Detail != tc.detail {
				t.Fatalf("detail=%q want=%q", env.Detail, tc.detail)
			}
			if strings.Contains(env.Detail, "Go struct") || strings.Contains(env.Detail, "json:") {
				t.Fatalf("decoder internals leaked into detail: %q", env.Detail)
			}
		})
	}
}

type failingClient struct{}

func (failingClient) Invoke(context.Context, string, map[string]any, map[string]any) (*orquesta.Deployment, error) {
	return nil, errors.New("boom")
}

func TestQuestionEndpointUpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	client := failingClient{}
	eval, err := services.NewEvaluator(log, client, nil, "evaluate", "Nee")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	svc := services.NewQuestionService(
		log,
		catalog.New([]question.Record{{Text: "Q", QuickReplyOptions: []string{}}}),
		session.NewMemoryStore(),
		eval,
		services.NewClarifier(log, client, nil, "clarify"),
		services.NewRephraser(log, client, nil, "rephrase"),
		nil,
		services.QuestionServiceConfig{},
	)
	r := NewRouter(RouterConfig{Log: log, QuestionHandler: httpH.NewQuestionHandler(svc, 0)})

	req := httptest.NewRequest(http.MethodPost, "/question/", bytes.NewBufferString(`{"question_index":1,"user_id":"u1"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	env := decodeError(t, rec)
	if env.Code != "upstream_unavailable" {
		t.Fatalf("code=%q", env.Code)
	}
	if strings.Contains(env.Detail, "boom") {
		t.Fatalf("provider error leaked into detail: %q", env.Detail)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, map[string]string{"evaluate": "Ja"}, 0)
	_ = s.post(t, `{"question_index":1,"user_id":"u1"}`)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: status=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`questionbot_api_requests_total{method="POST",route="/question/",status="200"} 1`,
		`questionbot_turns_total{branch="advance"} 1`,
		`questionbot_deployment_calls_total{key="rephrase",status="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, nil, 0)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("X-Request-Id=%q", got)
	}
}
