package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gw2sdk/gw2sdk-go/internal/logger"
	"github.com/gw2sdk/gw2sdk-go/pkg/auth"
)

const (
	DefaultBaseURL       = "https://api.guildwars2.com"
	DefaultSchemaVersion = "2023-03-09T00:00:00Z"
	DefaultTimeout       = 5 * time.Second

	AuthorizationHeader = "Authorization"
	SchemaVersionHeader = "X-Schema-Version"
)

// RequestError reports a request that could not be built at all.
type RequestError struct {
	Path string
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("build request for path %q: %v", e.Path, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Options configures an APIClient. Zero values select the defaults.
type Options struct {
	Client        Client
	BaseURL       string
	APIKey        *auth.APIKey
	SchemaVersion string
	Timeout       time.Duration
	Logger        logger.Logger
}

// APIClient issues GET requests against the API. Transport failures and
// timeouts never surface as errors: the returned Future settles to a nil
// RawResponse instead.
type APIClient struct {
	mu            sync.RWMutex
	client        Client
	baseURL       string
	apiKey        *auth.APIKey
	schemaVersion string
	timeout       time.Duration
	log           logger.Logger
}

// NewAPIClient validates opts and builds a client.
func NewAPIClient(opts Options) (*APIClient, error) {
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("invalid timeout %v (must be positive)", opts.Timeout)
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", base, err)
	}

	if strings.TrimSpace(opts.SchemaVersion) == "" {
		opts.SchemaVersion = DefaultSchemaVersion
	}
	if opts.Client == nil {
		opts.Client = NewRestyClient(0)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	return &APIClient{
		client:        opts.Client,
		baseURL:       base,
		apiKey:        opts.APIKey,
		schemaVersion: opts.SchemaVersion,
		timeout:       opts.Timeout,
		log:           opts.Logger,
	}, nil
}

// FetchAsync starts a GET request for path (which must begin with '/', or be
// empty for the API root) and returns its pending Future.
func (c *APIClient) FetchAsync(ctx context.Context, path string) (*Future, error) {
	if path != "" && !strings.HasPrefix(path, "/") {
		return nil, &RequestError{Path: path, Err: errors.New("path must begin with '/'")}
	}

	c.mu.RLock()
	client := c.client
	target := c.baseURL + path
	headers := c.headersLocked()
	timeout := c.timeout
	c.mu.RUnlock()

	if _, err := url.ParseRequestURI(target); err != nil {
		c.log.ErrorObj("invalid request url", "request", map[string]any{"url": target})
		return nil, &RequestError{Path: path, Err: err}
	}

	c.log.DebugObj("dispatching GET request", "request", map[string]any{"url": target})

	return Go(ctx, func(ctx context.Context) (*RawResponse, error) {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp, err := client.Get(reqCtx, target, headers)
		if err == nil {
			return NewRawResponse(resp), nil
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			c.log.WarnObj("request timed out, treating as no answer", "request_timeout", map[string]any{
				"url":             target,
				"timeout_seconds": timeout.Seconds(),
			})
			return nil, nil
		}
		c.log.WarnObj("transport failed, treating as no answer", "request_error", map[string]any{
			"url":   target,
			"error": err.Error(),
		})
		return nil, nil
	}), nil
}

func (c *APIClient) headersLocked() map[string]string {
	headers := map[string]string{SchemaVersionHeader: c.schemaVersion}
	if c.apiKey != nil {
		headers[AuthorizationHeader] = "Bearer " + c.apiKey.Token()
	}
	return headers
}

// SetAPIKey replaces the API key; nil sends unauthenticated requests.
func (c *APIClient) SetAPIKey(key *auth.APIKey) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// APIKey returns the configured key, if any.
func (c *APIClient) APIKey() (*auth.APIKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey, c.apiKey != nil
}

// SetTimeout changes the per-request timeout.
func (c *APIClient) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("invalid timeout %v (must be positive)", timeout)
	}
	c.mu.Lock()
	c.timeout = timeout
	c.mu.Unlock()
	return nil
}

// Timeout returns the per-request timeout.
func (c *APIClient) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

// SetClient replaces the underlying transport. A nil client is ignored.
func (c *APIClient) SetClient(client Client) {
	if client == nil {
		return
	}
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
}

// SchemaVersion returns the schema version sent with every request.
func (c *APIClient) SchemaVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schemaVersion
}
