// Package graphql talks to the photo service's GraphQL endpoint. All album
// and entry metadata arrives through the three query operations defined in
// operations.go; binary thumbnail data goes through the REST surface instead
// (see internal/thumbs).
package graphql

import (
	"bytes"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shoeboxapp/shoebox-client/internal/errors"
	"github.com/shoeboxapp/shoebox-client/internal/ratelimit"
)

const (
	defaultTimeout = 30 * time.Second
	defaultBurst   = 3

	limiterKey = "graphql"
)

// Client is a rate-limited GraphQL client for one photo service instance.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a client for the service at baseURL. qps bounds the outbound
// query rate; timeout caps each round trip (zero means the default 30s).
func New(baseURL string, qps float64, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: ratelimit.New(qps, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	OperationName string `json:"operationName"`
	Query         string `json:"query"`
	Variables     any    `json:"variables,omitempty"`
}

type responseError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

func (e responseError) String() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s (at %s)", e.Message, strings.Join(parts, "."))
}

// query posts one GraphQL operation and decodes the data envelope into out.
// Field errors alongside data are logged and tolerated; field errors without
// data reject the whole operation.
func (c *Client) query(ctx context.Context, token, operation, document string, variables, out any) error {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return errors.Transportf("rate limit wait: %v", err).WithCause(err)
	}

	body, err := json.Marshal(request{
		OperationName: operation,
		Query:         document,
		Variables:     variables,
	})
	if err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "marshal %s request", operation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return errors.Validationf("create %s request: %v", operation, err).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	c.logger.Debug("graphql request", "operation", operation)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Transportf("execute %s: %v", operation, err).WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Transportf("read %s response: %v", operation, err).WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Transportf("%s returned status %d", operation, resp.StatusCode).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var envelope struct {
		Data   jsontext.Value  `json:"data"`
		Errors []responseError `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return errors.Transportf("decode %s response: %v", operation, err).WithCause(err)
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		if len(envelope.Errors) > 0 {
			messages := make([]string, len(envelope.Errors))
			for i, e := range envelope.Errors {
				messages[i] = e.String()
			}
			return errors.ServerRejectedf("%s rejected: %s", operation, strings.Join(messages, "; ")).
				WithDetails(map[string]any{"errors": messages})
		}
		return errors.ServerRejectedf("%s returned no data", operation)
	}

	// Partial results are still results.
	for _, e := range envelope.Errors {
		c.logger.Warn("graphql field error", "operation", operation, "error", e.String())
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return errors.Transportf("decode %s data: %v", operation, err).WithCause(err)
	}
	return nil
}
