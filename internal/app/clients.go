package app

import (
	"fmt"

	"github.com/yungbote/questionbot-backend/internal/platform/logger"
	"github.com/yungbote/questionbot-backend/internal/platform/orquesta"
	"github.com/yungbote/questionbot-backend/internal/session"
)

type Clients struct {
	Provider orquesta.Client
	Sessions session.Store
}

func wireClients(log *logger.Logger, cfg *Config) (Clients, error) {
	log.Info("Wiring clients...")

	var provider orquesta.Client
	switch cfg.Provider.Type {
	case ProviderMock:
		log.Warn("Using mock provider; replies are canned")
		provider = orquesta.NewMock(cfg.Provider.MockReplies)
	default:
		c, err := orquesta.New(log, orquesta.Config{
			BaseURL:     cfg.Provider.BaseURL,
			APIKey:      cfg.Provider.APIKey,
			Timeout:     cfg.Provider.Timeout.Duration,
			Environment: cfg.Provider.Environment,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init orquesta client: %w", err)
		}
		provider = c
	}

	var store session.Store
	switch cfg.Session.Store {
	case StoreRedis:
		rs, err := session.NewRedisStore(log, session.RedisConfig{
			Addr:      cfg.Session.Redis.Addr,
			Password:  cfg.Session.Redis.Password,
			DB:        cfg.Session.Redis.DB,
			KeyPrefix: cfg.Session.KeyPrefix,
			TTL:       cfg.Session.TTL.Duration,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis session store: %w", err)
		}
		store = rs
	default:
		store = session.NewMemoryStore()
	}

	return Clients{Provider: provider, Sessions: store}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Sessions != nil {
		_ = c.Sessions.Close()
	}
}
