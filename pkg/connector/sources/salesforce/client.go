package salesforce

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Mykobyhub/kibana-connectors/pkg/clients"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/base"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
	"github.com/Mykobyhub/kibana-connectors/pkg/json"
	"github.com/Mykobyhub/kibana-connectors/pkg/metrics"
	"github.com/Mykobyhub/kibana-connectors/pkg/observability"
)

// Endpoint labels used for metrics and spans.
const (
	endpointQuery    = "query"
	endpointDescribe = "describe"
	endpointDownload = "download"
	endpointPing     = "ping"
)

// Client executes authenticated REST calls against one Salesforce org.
// Every call is retried according to its error class, and an expired
// session is renewed once per attempt without spending the retry budget.
type Client struct {
	config     *Config
	baseURL    string
	httpClient *http.Client
	tokens     *clients.TokenManager
	retry      *base.RetryPolicy
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// NewClient creates a client. collector may be nil.
func NewClient(cfg *Config, httpClient *http.Client, retry *base.RetryPolicy, collector *metrics.Collector, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if retry == nil {
		retry = base.DefaultRetryPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "salesforce_client"))

	c := &Client{
		config:     cfg,
		baseURL:    cfg.InstanceURL(),
		httpClient: httpClient,
		metrics:    collector,
		logger:     logger,
	}
	c.retry = retry.WithOnRetry(func(attempt int, err error) {
		reason := string(errors.GetType(err))
		if c.metrics != nil {
			c.metrics.Retry(reason)
		}
		c.logger.Debug("retrying request", zap.Int("attempt", attempt), zap.String("reason", reason), zap.Error(err))
	})
	c.tokens = newTokenManager(cfg, httpClient, retry, collector, logger)
	return c
}

// Tokens returns the token manager used by the client.
func (c *Client) Tokens() *clients.TokenManager {
	return c.tokens
}

// BaseURL returns the instance URL every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestOptions struct {
	method   string
	endpoint string
	// notFound makes a 404 final instead of retryable
	notFound bool
}

// errNotFound is returned for a 404 when requestOptions.notFound is set.
var errNotFound = errors.New(errors.ErrorTypeNotFound, "resource not found")

// Ping checks that the instance URL answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.retry.ExecuteWithCondition(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid instance url")
		}
		timer := metrics.NewTimer()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.observe(endpointPing, 0, timer)
			return transportError(ctx, err)
		}
		defer resp.Body.Close()
		c.observe(endpointPing, resp.StatusCode, timer)
		if resp.StatusCode >= http.StatusBadRequest {
			return classify(&APIError{StatusCode: resp.StatusCode, Messages: []string{http.StatusText(resp.StatusCode)}})
		}
		return nil
	}, errors.IsRetryable)
}

// get issues a GET against path, which may be absolute or relative to the
// instance URL, and returns the response body.
func (c *Client) get(ctx context.Context, path string, params url.Values, opts requestOptions) ([]byte, error) {
	opts.method = http.MethodGet
	target := c.resolve(path, params)

	var body []byte
	err := c.retry.ExecuteWithCondition(ctx, func() error {
		b, err := c.attempt(ctx, target, opts)
		if err != nil {
			return err
		}
		body = b
		return nil
	}, errors.IsRetryable)
	return body, err
}

// attempt sends one request. A 401 reporting an invalid session invalidates
// the token and the request is sent once more with a fresh one.
func (c *Client) attempt(ctx context.Context, target string, opts requestOptions) (body []byte, err error) {
	ctx, span := observability.StartSpan(ctx, "salesforce."+opts.endpoint,
		attribute.String("http.method", opts.method),
		attribute.String("salesforce.endpoint", opts.endpoint))
	defer func() { observability.EndSpan(span, err) }()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := c.send(ctx, target, token, opts)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		if apiErr := parseAPIError(status, body); isSessionExpired(apiErr) {
			c.logger.Debug("session expired, fetching a new token")
			c.tokens.InvalidateIfCurrent(token)
			if token, err = c.tokens.Token(ctx); err != nil {
				return nil, err
			}
			if status, body, err = c.send(ctx, target, token, opts); err != nil {
				return nil, err
			}
		}
	}

	switch {
	case status >= 200 && status < 300:
		return body, nil
	case status == http.StatusNotFound && opts.notFound:
		return nil, errNotFound
	default:
		return nil, classify(parseAPIError(status, body))
	}
}

func (c *Client) send(ctx context.Context, target, token string, opts requestOptions) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, opts.method, target, nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if opts.endpoint != endpointDownload {
		req.Header.Set("Accept", "application/json")
	}

	timer := metrics.NewTimer()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(opts.endpoint, 0, timer)
		return 0, nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(opts.endpoint, resp.StatusCode, timer)
	if err != nil {
		return 0, nil, transportError(ctx, err)
	}

	c.logger.Debug("request completed",
		zap.String("endpoint", opts.endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))
	return resp.StatusCode, body, nil
}

func (c *Client) observe(endpoint string, status int, timer *metrics.Timer) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(endpoint, status, timer.Stop())
	}
}

func (c *Client) resolve(path string, params url.Values) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	return target
}

func (c *Client) dataPath(suffix string) string {
	return "/services/data/" + c.config.APIVersion + suffix
}

// getJSON issues a GET and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, endpoint string, v interface{}) error {
	body, err := c.get(ctx, path, params, requestOptions{endpoint: endpoint})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to decode "+endpoint+" response")
	}
	return nil
}

// queryPages runs soql and calls fn once per page, following continuation
// URLs until the server reports the result set done. Only one page is held
// in memory at a time.
func queryPages[T any](ctx context.Context, c *Client, soql string, fn func([]T) error) error {
	path := c.dataPath("/query")
	params := url.Values{"q": {soql}}

	for page := 1; ; page++ {
		var result QueryResult[T]
		if err := c.getJSON(ctx, path, params, endpointQuery, &result); err != nil {
			return err
		}
		c.logger.Debug("query page received", zap.Int("page", page), zap.Int("records", len(result.Records)))

		if err := fn(result.Records); err != nil {
			return err
		}
		if !result.hasMore() {
			return nil
		}
		path, params = result.NextRecordsURL, nil
	}
}

// download fetches the bytes of a content version. found is false when the
// server answers 404.
func (c *Client) download(ctx context.Context, versionID string) (data []byte, found bool, err error) {
	path := c.dataPath("/sobjects/ContentVersion/" + url.PathEscape(versionID) + "/VersionData")
	data, err = c.get(ctx, path, nil, requestOptions{endpoint: endpointDownload, notFound: true})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
