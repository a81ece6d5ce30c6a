// Package upstream is the HTTP boundary to the remote commerce API. Every
// response is expected to be a JSON object with a success envelope; failures
// come back as tagged domain errors so callers match on kind instead of
// probing response shapes.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"storefront-gateway/internal/domain"
)

const requestTimeout = 20 * time.Second

// TokenSource supplies the bearer token attached to outgoing requests. An
// empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	storePath      string
	tokens         TokenSource
	onUnauthorized func()
	logger         *log.Logger
}

// New builds a Client for the API rooted at baseURL. Store-scoped paths are
// built with Scoped using storePath.
func New(baseURL, storePath string, logger *log.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		storePath:  storePath,
		logger:     logger,
	}
}

// SetTokenSource installs the token provider. Kept separate from New because
// the session that owns tokens is itself constructed with this client.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// SetUnauthorizedHook installs the callback fired once per 401 response,
// whatever request triggered it.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// Scoped prefixes a path with the store segment: "/cart" becomes
// "/api/{store}/cart".
func (c *Client) Scoped(path string) string {
	return "/api/" + c.storePath + path
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.E(domain.KindFetch, "encode request: "+err.Error())
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.E(domain.KindFetch, "build request: "+err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("upstream %s %s: %v", method, path, err)
		return domain.E(domain.KindFetch, "upstream unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.E(domain.KindFetch, "read response: "+err.Error())
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return domain.E(domain.KindAuth, messageFrom(raw, "unauthorized"))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Printf("upstream %s %s: status %d, undecodable body", method, path, resp.StatusCode)
		return domain.E(domain.KindFetch, "unexpected upstream response")
	}
	if !env.Success {
		kind := domain.KindFetch
		if resp.StatusCode == http.StatusNotFound {
			kind = domain.KindNotFound
		}
		return domain.E(kind, messageOrDefault(env.Message, "upstream request failed"))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return domain.E(domain.KindFetch, "decode response: "+err.Error())
		}
	}
	return nil
}

func messageFrom(raw []byte, fallback string) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fallback
}

func messageOrDefault(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
