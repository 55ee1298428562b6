package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/questionbot-backend/internal/platform/envutil"
)

const (
	ProviderOrquesta = "orquesta"
	ProviderMock     = "mock"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Duration struct {
	time.Duration
}

// UnmarshalYAML accepts "5s" style strings or integer nanoseconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
}

type CatalogConfig struct {
	// Path to an .xlsx/.xlsm workbook or a .csv file.
	Path string `yaml:"path"`
	// Sheet is optional; the workbook's active sheet is used when empty.
	Sheet string `yaml:"sheet,omitempty"`
	// HeaderRows are skipped before rows are mapped to questions.
	HeaderRows int `yaml:"header_rows,omitempty"`
}

type ProviderConfig struct {
	Type    string   `yaml:"type"`
	BaseURL string   `yaml:"base_url,omitempty"`
	APIKey  string   `yaml:"api_key,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
	// Environment is sent as the default deployment environment.
	Environment string `yaml:"environment,omitempty"`
	// MockReplies maps a deployment key to a fixed reply (mock provider only).
	MockReplies map[string]string `yaml:"mock_replies,omitempty"`
}

type DeploymentsConfig struct {
	Rephrase string `yaml:"rephrase"`
	Evaluate string `yaml:"evaluate"`
	Clarify  string `yaml:"clarify"`
}

type EvaluationConfig struct {
	// RejectVerdict is compared verbatim against the evaluator's reply.
	RejectVerdict string `yaml:"reject_verdict"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	Store     string      `yaml:"store"`
	Redis     RedisConfig `yaml:"redis"`
	KeyPrefix string      `yaml:"key_prefix,omitempty"`
	TTL       Duration    `yaml:"ttl,omitempty"`
}

type ResponseConfig struct {
	IncludeNextIndex bool `yaml:"include_next_index"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Endpoint    string  `yaml:"endpoint,omitempty"`
	Insecure    bool    `yaml:"insecure,omitempty"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	Env         string            `yaml:"env"`
	HTTP        HTTPConfig        `yaml:"http"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Provider    ProviderConfig    `yaml:"provider"`
	Deployments DeploymentsConfig `yaml:"deployments"`
	Evaluation  EvaluationConfig  `yaml:"evaluation"`
	Session     SessionConfig     `yaml:"session"`
	Response    ResponseConfig    `yaml:"response"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8000",
			ReadHeaderTimeout: Duration{5 * time.Second},
			IdleTimeout:       Duration{2 * time.Minute},
			ShutdownTimeout:   Duration{15 * time.Second},
			MaxRequestBytes:   1 << 20,
		},
		Catalog: CatalogConfig{
			Path: filepath.Join("data", "Firm24_lijst.xlsx"),
		},
		Provider: ProviderConfig{
			Type:        ProviderOrquesta,
			Environment: "production",
		},
		Deployments: DeploymentsConfig{
			Rephrase: "Firm24_vragenlijst",
			Evaluate: "Firm24_antwoord_controle",
			Clarify:  "Firm24_verduidelijking",
		},
		Evaluation: EvaluationConfig{
			RejectVerdict: "Nee",
		},
		Session: SessionConfig{
			Store: StoreMemory,
		},
		Tracing: TracingConfig{
			ServiceName: "questionbot",
			SampleRatio: 1,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// LoadConfig reads .env (if present), then the YAML file at path (falling back
// to QB_CONFIG_PATH, then ./config/config.yaml), then applies environment
// overrides.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(path)
	if cfgPath == "" {
		cfgPath = strings.TrimSpace(os.Getenv("QB_CONFIG_PATH"))
	}
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.Addr = envutil.String("QB_HTTP_ADDR", cfg.HTTP.Addr)

	cfg.Catalog.Path = envutil.String("QB_CATALOG_PATH", cfg.Catalog.Path)
	cfg.Catalog.Sheet = envutil.String("QB_CATALOG_SHEET", cfg.Catalog.Sheet)
	cfg.Catalog.HeaderRows = envutil.Int("QB_CATALOG_HEADER_ROWS", cfg.Catalog.HeaderRows)

	cfg.Provider.Type = envutil.String("QB_PROVIDER", cfg.Provider.Type)
	cfg.Provider.APIKey = envutil.String("ORQUESTA_API_KEY", cfg.Provider.APIKey)
	cfg.Provider.BaseURL = envutil.String("ORQUESTA_BASE_URL", cfg.Provider.BaseURL)
	cfg.Provider.Environment = envutil.String("ORQUESTA_ENVIRONMENT", cfg.Provider.Environment)
	cfg.Provider.Timeout.Duration = envutil.Duration("QB_PROVIDER_TIMEOUT", cfg.Provider.Timeout.Duration)

	cfg.Evaluation.RejectVerdict = envutil.String("QB_REJECT_VERDICT", cfg.Evaluation.RejectVerdict)

	cfg.Session.Store = envutil.String("QB_SESSION_STORE", cfg.Session.Store)
	cfg.Session.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Session.Redis.Addr)
	cfg.Session.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Session.Redis.Password)
	cfg.Session.Redis.DB = envutil.Int("REDIS_DB", cfg.Session.Redis.DB)

	cfg.Response.IncludeNextIndex = envutil.Bool("QB_INCLUDE_NEXT_INDEX", cfg.Response.IncludeNextIndex)

	cfg.Tracing.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
}

func (cfg *Config) normalize() error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8000"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if strings.TrimSpace(cfg.Catalog.Path) == "" {
		return errors.New("catalog.path is required")
	}
	if cfg.Catalog.HeaderRows < 0 {
		return errors.New("invalid catalog.header_rows")
	}

	cfg.Provider.Type = strings.ToLower(strings.TrimSpace(cfg.Provider.Type))
	cfg.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Provider.BaseURL), "/")
	cfg.Provider.Environment = strings.TrimSpace(cfg.Provider.Environment)
	switch cfg.Provider.Type {
	case ProviderOrquesta:
		if strings.TrimSpace(cfg.Provider.APIKey) == "" {
			return errors.New("provider.api_key is required for the orquesta provider (ORQUESTA_API_KEY)")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("invalid provider.type=%q", cfg.Provider.Type)
	}
	if cfg.Provider.Timeout.Duration < 0 {
		return errors.New("invalid provider.timeout")
	}

	d := &cfg.Deployments
	if strings.TrimSpace(d.Rephrase) == "" || strings.TrimSpace(d.Evaluate) == "" || strings.TrimSpace(d.Clarify) == "" {
		return errors.New("deployments.rephrase, deployments.evaluate and deployments.clarify are required")
	}
	if strings.TrimSpace(cfg.Evaluation.RejectVerdict) == "" {
		return errors.New("evaluation.reject_verdict is required")
	}

	cfg.Session.Store = strings.ToLower(strings.TrimSpace(cfg.Session.Store))
	switch cfg.Session.Store {
	case "", StoreMemory:
		cfg.Session.Store = StoreMemory
	case StoreRedis:
		if strings.TrimSpace(cfg.Session.Redis.Addr) == "" {
			return errors.New("session.redis.addr is required for the redis store (REDIS_ADDR)")
		}
	default:
		return fmt.Errorf("invalid session.store=%q", cfg.Session.Store)
	}
	if cfg.Session.TTL.Duration < 0 {
		return errors.New("invalid session.ttl")
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return fmt.Errorf("invalid tracing.sample_ratio=%v", cfg.Tracing.SampleRatio)
	}
	if strings.TrimSpace(cfg.Tracing.ServiceName) == "" {
		cfg.Tracing.ServiceName = "questionbot"
	}
	return nil
}
