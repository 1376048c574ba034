package fmp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/metrics"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
)

// Client handles communication with the Financial Modeling Prep v3 API
// ⭐ SSOT: FMP API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	metrics    *metrics.Registry
	breaker    *gobreaker.CircuitBreaker

	baseURL  string
	apiKey   string
	exchange string
}

// NewClient creates a new FMP client. metrics may be nil.
func NewClient(httpClient *httputil.Client, cfg config.FMPConfig, m *metrics.Registry, log *logger.Logger) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log.Module("fmp"),
		metrics:    m,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		exchange:   cfg.Exchange,
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 10
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fmp",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 취소된 요청은 제공자 장애가 아님
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.metrics.SetBreakerState(name, int(to))
			c.logger.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return c
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Fetch performs one GET against path and returns the raw JSON body.
// apikey is appended to every request. Any failure is a *contracts.DataSourceError.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	op, symbol, _ := strings.Cut(path, "/")

	if c.apiKey == "" {
		return nil, &contracts.DataSourceError{Op: op, Symbol: symbol, Message: "API key is not configured"}
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apikey", c.apiKey)
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, path, q.Encode())

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, fullURL)
	})
	c.metrics.ObserveFetch(op, err, time.Since(start))

	if err != nil {
		var dsErr *contracts.DataSourceError
		if errors.As(err, &dsErr) {
			dsErr.Op, dsErr.Symbol = op, symbol
			return nil, dsErr
		}
		// gobreaker.ErrOpenState, ErrTooManyRequests
		return nil, &contracts.DataSourceError{Op: op, Symbol: symbol, Err: err}
	}

	return result.(json.RawMessage), nil
}

func (c *Client) do(ctx context.Context, fullURL string) (json.RawMessage, error) {
	status, body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, &contracts.DataSourceError{Err: err}
	}

	if status != http.StatusOK {
		return nil, &contracts.DataSourceError{
			Message: fmt.Sprintf("the API returned a non-200 response. Code: %d", status),
		}
	}

	if msg := providerError(body); msg != "" {
		return nil, &contracts.DataSourceError{Message: msg}
	}

	return json.RawMessage(body), nil
}

// providerError extracts {"Error Message": ...} or [{"Error Message": ...}]
func providerError(body []byte) string {
	type errorBody struct {
		Message string `json:"Error Message"`
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '{':
		var e errorBody
		if json.Unmarshal(trimmed, &e) == nil {
			return e.Message
		}
	case '[':
		var list []json.RawMessage
		if json.Unmarshal(trimmed, &list) == nil && len(list) > 0 {
			var e errorBody
			if json.Unmarshal(list[0], &e) == nil {
				return e.Message
			}
		}
	}
	return ""
}
