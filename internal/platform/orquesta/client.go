// Package orquesta invokes prompt deployments on the Orquesta platform.
package orquesta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/questionbot-backend/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://my.orquesta.dev"
	invokePath     = "/v2/deployments/invoke"
)

// Client is the deployment API consumed by the questionnaire services.
type Client interface {
	Invoke(ctx context.Context, key string, invokeContext map[string]any, inputs map[string]any) (*Deployment, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

type Deployment struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

// Content returns the first choice's message text verbatim.
func (d *Deployment) Content() (string, error) {
	if d == nil || len(d.Choices) == 0 {
		return "", ErrNoChoices
	}
	return d.Choices[0].Message.Content, nil
}

type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds one invoke; 0 leaves the call bounded only by ctx.
	Timeout time.Duration
	// Environment fills context "environments" when a caller leaves it unset.
	Environment string
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	timeout     time.Duration
	environment string
	httpClient  *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	return NewWithHTTPClient(log, cfg, nil)
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(log *logger.Logger, cfg Config, httpClient *http.Client) (Client, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("orquesta: api key required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        50,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}}
	}
	return &client{
		log:         log.With("service", "OrquestaClient"),
		baseURL:     baseURL,
		apiKey:      apiKey,
		timeout:     cfg.Timeout,
		environment: strings.TrimSpace(cfg.Environment),
		httpClient:  httpClient,
	}, nil
}

type invokeRequest struct {
	Key     string         `json:"key"`
	Context map[string]any `json:"context,omitempty"`
	Inputs  map[string]any `json:"inputs,omitempty"`
}

func (c *client) Invoke(ctx context.Context, key string, invokeContext map[string]any, inputs map[string]any) (*Deployment, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("orquesta: deployment key required")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(invokeRequest{Key: key, Context: c.withEnvironment(invokeContext), Inputs: inputs})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+invokePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", key, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", key, err)
	}
	c.log.Debug("deployment invoked", "key", key, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(raw)), 512)}
	}

	var out Deployment
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", key, err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrNoChoices
	}
	return &out, nil
}

// withEnvironment returns invokeContext with the client environment added. An
// explicit "environments" entry, even an empty list, is left untouched.
func (c *client) withEnvironment(invokeContext map[string]any) map[string]any {
	if c.environment == "" {
		return invokeContext
	}
	if _, ok := invokeContext["environments"]; ok {
		return invokeContext
	}
	out := make(map[string]any, len(invokeContext)+1)
	for k, v := range invokeContext {
		out[k] = v
	}
	out["environments"] = []string{c.environment}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
