package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Config holds the settings shared by the platform clients.
type Config struct {
	// BaseURL is the platform gateway, e.g. "http://localhost:8080".
	// Service prefixes (/auth, /event, /user) are appended per call.
	BaseURL string

	// Timeout applies per request when no http.Client is supplied.
	Timeout time.Duration
}

// httpDoer issues requests. Satisfied by *http.Client; injected so protected
// calls can run through the authenticating transport.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// caller is the shared request plumbing for both platform clients.
type caller struct {
	baseURL    string
	httpClient httpDoer
	logger     zerolog.Logger
}

func newCaller(cfg Config, httpClient httpDoer, logger zerolog.Logger) caller {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return caller{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// doJSON issues a JSON request and decodes the response into out (which may
// be nil for endpoints whose bodies the console ignores). Non-2xx responses
// come back as *APIError with any {"error": "..."} body message attached.
func (c caller) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	c.logger.Debug().Str("method", method).Str("path", path).Msg("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errBody) == nil {
			apiErr.Message = errBody.Error
			if apiErr.Message == "" {
				apiErr.Message = errBody.Message
			}
		}
		c.logger.Warn().Str("method", method).Str("path", path).
			Int("status", resp.StatusCode).Str("error", apiErr.Message).
			Msg("request failed")
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%s %s: unmarshal response: %w", method, path, err)
		}
	}

	c.logger.Debug().Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Msg("request successful")
	return nil
}

// Client talks to the protected platform endpoints (events, categories,
// token revocation). Its http.Client should carry the authenticating
// transport so expired access tokens are refreshed and retried transparently.
type Client struct {
	caller
}

func NewClient(cfg Config, httpClient *http.Client, logger zerolog.Logger) *Client {
	var doer httpDoer
	if httpClient != nil {
		doer = httpClient
	}
	return &Client{caller: newCaller(cfg, doer, logger.With().Str("component", "aggregator-client").Logger())}
}

// Revoke invalidates the current access token server-side.
func (c *Client) Revoke(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, authServicePrefix+"/api/v1/auth/revoke", nil, nil)
}
