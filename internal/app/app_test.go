package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/yungbote/questionbot-backend/internal/domain/question"
	"github.com/yungbote/questionbot-backend/internal/session"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "questions.csv")
	body := "Wat is uw naam?,\nHeeft u personeel?,Ja; Nee\n,ignored\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cfg := defaultConfig()
	cfg.Env = "test"
	cfg.Catalog.Path = p
	cfg.Provider.Type = ProviderMock
	cfg.Provider.MockReplies = map[string]string{cfg.Deployments.Evaluate: "Ja"}
	cfg.Metrics.Enabled = true
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return cfg
}

func TestNewWiresMockStack(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(ctx)

	if a.Catalog.Len() != 2 {
		t.Fatalf("catalog len=%d", a.Catalog.Len())
	}
	if _, ok := a.Clients.Sessions.(*session.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", a.Clients.Sessions)
	}

	idx := 2
	reply, err := a.Services.Question.Answer(ctx, question.Turn{UserID: "u1", QuestionIndex: &idx})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if reply.RephrasedQuestion != "Heeft u personeel?" {
		t.Fatalf("rephrased=%q", reply.RephrasedQuestion)
	}
	if len(reply.QuickReplyOptions) != 2 || reply.QuickReplyOptions[0] != "Ja" || reply.QuickReplyOptions[1] != "Nee" {
		t.Fatalf("options=%#v", reply.QuickReplyOptions)
	}
}

func TestNewWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Session.Store = StoreRedis
	cfg.Session.Redis.Addr = mr.Addr()

	ctx := context.Background()
	a, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(ctx)

	if _, ok := a.Clients.Sessions.(*session.RedisStore); !ok {
		t.Fatalf("expected redis store, got %T", a.Clients.Sessions)
	}
}

func TestNewFailsOnMissingCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.xlsx")
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected catalog load error")
	}
}

func TestLoadCatalogSkipsHeaderRows(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.HeaderRows = 1

	cat, err := LoadCatalog(cfg)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("catalog len=%d", cat.Len())
	}
	rec, _ := cat.At(1)
	if rec.Text != "Heeft u personeel?" {
		t.Fatalf("first question=%q", rec.Text)
	}
}
