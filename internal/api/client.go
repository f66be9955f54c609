// Package api wraps the remote REST endpoints with centralized auth, retry,
// logging, and error mapping. Response payloads are treated as opaque JSON
// shapes owned by the server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kopisenja/pos-client/pkg/config"
	pkgerrors "github.com/kopisenja/pos-client/pkg/errors"
	"github.com/kopisenja/pos-client/pkg/logger"
)

// TokenSource supplies the bearer token attached to every request. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Client talks to the ordering API.
type Client struct {
	baseURL       string
	http          *http.Client
	timeout       time.Duration
	retryAttempts int
	retryDelay    time.Duration
	tokens        TokenSource
	logg          *logger.Logger

	onUnauthenticated func()

	Orders     *OrdersService
	Products   *ProductsService
	Categories *CategoriesService
	Users      *UsersService
	Reports    *ReportsService
}

// Params configures the client.
type Params struct {
	Config config.APIConfig
	Tokens TokenSource
	Logger *logger.Logger

	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
	// OnUnauthenticated fires once per 401 response, after the error is
	// mapped but before it returns to the caller.
	OnUnauthenticated func()
}

// NewClient validates the parameters and builds the endpoint groups.
func NewClient(params Params) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(params.Config.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api base url required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := params.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	delay := params.Config.RetryDelay
	if delay < 0 {
		delay = 0
	}

	c := &Client{
		baseURL:           baseURL,
		http:              httpClient,
		timeout:           timeout,
		retryAttempts:     params.Config.RetryAttempts,
		retryDelay:        delay,
		tokens:            params.Tokens,
		logg:              params.Logger,
		onUnauthenticated: params.OnUnauthenticated,
	}
	c.Orders = &OrdersService{client: c}
	c.Products = &ProductsService{client: c}
	c.Categories = &CategoriesService{client: c}
	c.Users = &UsersService{client: c}
	c.Reports = &ReportsService{client: c}
	return c, nil
}

// do runs one API call with the configured timeout, bounded fixed-delay
// retries for the transient class, and JSON decoding into dest.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode request body")
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return pkgerrors.Wrap(pkgerrors.CodeTimeout, ctx.Err(), "request canceled")
			case <-time.After(c.retryDelay):
			}
		}

		lastErr = c.doOnce(ctx, method, path, query, payload, dest)
		if lastErr == nil {
			return nil
		}
		if !pkgerrors.Retryable(lastErr) {
			return lastErr
		}
		c.logg.Warn(ctx, fmt.Sprintf("%s %s failed (attempt %d/%d), retrying", method, path, attempt+1, c.retryAttempts+1))
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, dest any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return c.mapStatusError(resp)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if raw, ok := dest.(*[]byte); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read response body")
		}
		*raw = data
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode response body")
	}
	return nil
}

func (c *Client) mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "request timed out")
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "request timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "request failed")
}

func (c *Client) mapStatusError(resp *http.Response) error {
	message := serverMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthenticated != nil {
			c.onUnauthenticated()
		}
		return pkgerrors.New(pkgerrors.CodeUnauthenticated, orDefault(message, "session expired"))
	case resp.StatusCode == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeForbidden, orDefault(message, "access denied"))
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, orDefault(message, "resource not found"))
	case resp.StatusCode == http.StatusConflict:
		return pkgerrors.New(pkgerrors.CodeConflict, orDefault(message, "conflict"))
	case resp.StatusCode == http.StatusRequestTimeout:
		return pkgerrors.New(pkgerrors.CodeTimeout, orDefault(message, "request timed out"))
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusGatewayTimeout:
		return pkgerrors.New(pkgerrors.CodeDependency, orDefault(message, "service unavailable"))
	case resp.StatusCode >= 500:
		return pkgerrors.New(pkgerrors.CodeInternal, orDefault(message, "server error"))
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, orDefault(message, "request rejected"))
	}
}

// serverMessage extracts the human-readable text most endpoints return as
// {"message": ...} or {"error": ...}.
func serverMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

func orDefault(message, fallback string) string {
	if strings.TrimSpace(message) == "" {
		return fallback
	}
	return message
}
