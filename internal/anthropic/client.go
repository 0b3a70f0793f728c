/*
Package anthropic is a small client for the Anthropic Messages API.
It only covers the non-streaming text request/response shape used for
meal plan generation.
*/
package anthropic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// --- Messages API Configuration ---
const (
	DefaultBaseURL        = "https://api.anthropic.com"
	DefaultVersion        = "2023-06-01"
	DefaultTimeout        = 60 * time.Second
	DefaultMaxRetries     = 2
	DefaultInitialBackoff = 1 * time.Second

	messagesPath    = "/v1/messages"
	maxErrorBodyLen = 64 << 10
)

// ErrMissingAPIKey is returned by CreateMessage when the client was built without a credential.
var ErrMissingAPIKey = errors.New("anthropic: API key is not configured")

// Options configures a Client. Zero values fall back to the package defaults,
// except MaxRetries where zero means a single attempt.
type Options struct {
	APIKey         string
	BaseURL        string
	Version        string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration

	// HTTPClient overrides the transport. Tests point it at httptest servers.
	HTTPClient *http.Client
}

// Client sends Messages API requests. It is safe for concurrent use.
type Client struct {
	apiKey         string
	baseURL        string
	version        string
	timeout        time.Duration
	maxRetries     int
	initialBackoff time.Duration
	httpClient     *http.Client
}

// NewClient builds a Client from opts. A missing API key is not an error here;
// it surfaces as ErrMissingAPIKey on the first call.
func NewClient(opts Options) *Client {
	c := &Client{
		apiKey:         strings.TrimSpace(opts.APIKey),
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		version:        opts.Version,
		timeout:        opts.Timeout,
		maxRetries:     opts.MaxRetries,
		initialBackoff: opts.InitialBackoff,
		httpClient:     opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = DefaultInitialBackoff
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// CreateMessage sends req and returns the decoded response.
// Transport failures, 429 and 5xx responses are retried with exponential backoff;
// every other failure is returned immediately.
func (c *Client) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	log := zerolog.Ctx(ctx)

	if !c.Configured() {
		log.Error().Msg("ANTHROPIC_API_KEY is not set, refusing to call the Messages API")
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.initialBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		log.Debug().Int("attempt", attempt+1).Str("model", req.Model).Msg("Calling Messages API")

		resp, retry, err := c.send(ctx, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retry {
			return nil, err
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("Messages API attempt failed")
	}

	return nil, fmt.Errorf("failed to call Messages API after %d attempts: %w", c.maxRetries+1, lastErr)
}

// send performs one attempt. The bool reports whether the failure may be retried.
func (c *Client) send(ctx context.Context, payload []byte) (*MessageResponse, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", c.version)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		apiErr := parseAPIError(resp.StatusCode, body)
		return nil, apiErr.Retryable(), apiErr
	}

	var out MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, false, nil
}
