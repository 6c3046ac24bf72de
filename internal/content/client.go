package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/folio-studio/folio-web/internal/logging"
	"github.com/folio-studio/folio-web/internal/metrics"
)

const (
	DefaultPageSize = 100
	DefaultTimeout  = 10 * time.Second

	opConnect = "connect"
	opQuery   = "query"

	maxErrorBody = 512
)

// ResultStore caches query responses. Get returns ErrCacheMiss when the key
// is absent.
type ResultStore interface {
	Get(ctx context.Context, key string) (*Response, error)
	Set(ctx context.Context, key string, resp *Response) error
}

// ClientOptions configures a Client.
type ClientOptions struct {
	Endpoint    string
	AccessToken string
	Timeout     time.Duration
	// RateLimit is the sustained number of upstream calls per second; zero
	// disables pacing.
	RateLimit float64
	RateBurst int
	PageSize  int
	Cache     ResultStore
	Logger    *zap.Logger
}

// Client talks to the headless content API.
type Client struct {
	endpoint   *url.URL
	token      string
	pageSize   int
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      ResultStore
	logger     *zap.Logger
}

// NewClient creates a content API client
func NewClient(opts ClientOptions) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse content endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("content endpoint %q must be an absolute URL", opts.Endpoint)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	httpClient := &http.Client{Timeout: timeout}
	if opts.AccessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken})
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = timeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   u,
		token:      opts.AccessToken,
		pageSize:   pageSize,
		timeout:    timeout,
		httpClient: httpClient,
		limiter:    limiter,
		cache:      opts.Cache,
		logger:     logger,
	}, nil
}

// Ref is one content version advertised by the API document.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

type apiDocument struct {
	Refs []Ref `json:"refs"`
}

// API is an authenticated handle bound to the published (master) ref.
type API struct {
	client *Client
	Ref    string
}

// Connect fetches the API document and resolves the master ref. It is the
// per-request authentication step.
func (c *Client) Connect(ctx context.Context) (*API, error) {
	var doc apiDocument
	if err := c.getJSON(ctx, opConnect, c.endpoint.String(), nil, &doc); err != nil {
		return nil, err
	}

	for _, r := range doc.Refs {
		if r.IsMasterRef && r.Ref != "" {
			return &API{client: c, Ref: r.Ref}, nil
		}
	}
	return nil, ErrNoMasterRef
}

// QueryOptions tunes a query. A zero PageSize uses the client default.
type QueryOptions struct {
	PageSize int
}

// Response is one page of query results.
type Response struct {
	Page             int     `json:"page"`
	ResultsPerPage   int     `json:"results_per_page"`
	ResultsSize      int     `json:"results_size"`
	TotalResultsSize int     `json:"total_results_size"`
	TotalPages       int     `json:"total_pages"`
	Results          []Entry `json:"results"`
}

// Query runs q against the bound ref. An empty q fetches every entry.
func (a *API) Query(ctx context.Context, q string, opts QueryOptions) (*Response, error) {
	c := a.client
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = c.pageSize
	}

	key := CacheKey(a.Ref, pageSize, q)
	if c.cache != nil {
		resp, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			metrics.CacheHit()
			return resp, nil
		case errors.Is(err, ErrCacheMiss):
			metrics.CacheMiss()
		default:
			metrics.CacheError()
			logging.FromContext(ctx, c.logger).Warn("result cache lookup failed", zap.String("key", key), zap.Error(err))
		}
	}

	params := url.Values{}
	params.Set("ref", a.Ref)
	params.Set("pageSize", strconv.Itoa(pageSize))
	if q != "" {
		params.Set("q", q)
	}

	var resp Response
	if err := c.getJSON(ctx, opQuery, c.endpoint.String()+"/documents/search", params, &resp); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, &resp); err != nil {
			logging.FromContext(ctx, c.logger).Warn("result cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
	return &resp, nil
}

// Entries is a convenience wrapper fetching every entry with the default
// page size.
func (a *API) Entries(ctx context.Context) ([]Entry, error) {
	resp, err := a.Query(ctx, "", QueryOptions{})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, params url.Values, out any) error {
	logger := logging.FromContext(ctx, c.logger)

	// The timeout covers the rate limiter wait as well as the call itself.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: wait for rate limiter: %w", ErrUpstream, op, err)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse %s url: %w", op, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if c.token != "" {
		q.Set("access_token", c.token)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rid := logging.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(op, time.Since(start), err)
		logger.Error("content api call failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := statusError(resp.StatusCode, body)
		metrics.ObserveUpstream(op, time.Since(start), err)
		logger.Warn("content api returned error status", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ObserveUpstream(op, time.Since(start), err)
		logger.Error("content api response undecodable", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %s: decode JSON: %w", ErrUpstream, op, err)
	}

	d := time.Since(start)
	metrics.ObserveUpstream(op, d, nil)
	logger.Debug("content api call", zap.String("op", op), zap.Duration("latency", d))
	return nil
}

func statusError(code int, body []byte) error {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	}
	return fmt.Errorf("%w: status %d: %s", ErrUpstream, code, strings.TrimSpace(string(body)))
}
