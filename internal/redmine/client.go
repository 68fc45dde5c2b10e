package redmine

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-gateway/internal/config"
	"github.com/spec-kit/helpdesk-gateway/internal/observability"
	"github.com/spec-kit/helpdesk-gateway/pkg/util"
)

const apiKeyHeader = "X-Redmine-API-Key"

// Client issues authenticated requests against the upstream Redmine API and
// normalizes transport and HTTP failures into DomainError values. It is safe
// for concurrent use; the underlying transport pools connections.
type Client struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewClient builds a client for the configured upstream.
//
// When the base URL is https the transport skips certificate verification:
// the gateway targets internal, often self-hosted deployments running
// self-signed certificates. This is a deliberate trust relaxation, accepted
// as a security trade-off for those environments.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Secure() {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Transport: transport},
		logger:     logger,
		metrics:    metrics,
	}
}

// Call performs a JSON request against the upstream API. endpoint carries its
// own leading slash and query string. payload, when non-nil, is marshaled as
// the request body. headers override the defaults (API key, content type).
//
// The returned error is always a *util.DomainError; no transport or HTTP
// failure escapes this boundary in any other shape.
func (c *Client) Call(ctx context.Context, method, endpoint string, payload any, headers map[string]string) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		body = bytes.NewReader(encoded)
	}
	return c.do(ctx, method, endpoint, body, headers)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, headers map[string]string) (json.RawMessage, error) {
	if c.cfg.BaseURL == "" || c.cfg.APIKey == "" {
		c.logger.Error("upstream call rejected: missing configuration",
			zap.String("endpoint", endpoint),
			zap.String("base_url", c.cfg.BaseURL))
		return nil, util.NewConfigurationError("upstream base URL or API key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, body)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	for key, val := range headers {
		req.Header.Set(key, val)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logFailure(endpoint, 0, err.Error())
		c.record(method, endpoint, "transport_error")
		return nil, util.NewUpstreamError(err.Error(), 0, nil)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logFailure(endpoint, resp.StatusCode, err.Error())
		c.record(method, endpoint, "read_error")
		return nil, util.NewUpstreamError(err.Error(), 0, nil)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logFailure(endpoint, resp.StatusCode, string(respBody))
		c.record(method, endpoint, "http_error")
		details := json.RawMessage(respBody)
		if !json.Valid(respBody) {
			details, _ = json.Marshal(string(respBody))
		}
		return nil, util.NewUpstreamError("upstream request failed", resp.StatusCode, details)
	}

	c.record(method, endpoint, "ok")
	if len(respBody) == 0 {
		return nil, nil
	}
	return json.RawMessage(respBody), nil
}

func (c *Client) logFailure(endpoint string, status int, detail string) {
	c.logger.Error("upstream call failed",
		zap.String("endpoint", endpoint),
		zap.String("base_url", c.cfg.BaseURL),
		zap.Int("status", status),
		zap.String("detail", detail))
}

func (c *Client) record(method, endpoint, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamCall(method, endpoint, outcome)
	}
}
