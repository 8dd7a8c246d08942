// Package registry searches the Smithery MCP server registry.
//
// Search never fails: transport errors, unexpected statuses and malformed
// bodies produce an empty result whose Unavailable field says why, so an
// assistant can tell "no matches" apart from "registry unreachable".
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/thoreinstein/smartmcp/internal/config"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
)

// Search limits.
const (
	DefaultLimit = 10
	MaxLimit     = 20
)

// DefaultTimeout bounds a single registry request.
const DefaultTimeout = 30 * time.Second

// Server is one registry search hit. Optional upstream fields stay nil when
// the registry omits them.
type Server struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	QualifiedName string  `json:"qualifiedName"`
	UseCount      *int    `json:"useCount,omitempty"`
	Remote        *bool   `json:"remote,omitempty"`
	Homepage      *string `json:"homepage,omitempty"`
}

// Unavailable explains why a search returned no data.
type Unavailable struct {
	Reason     string `json:"reason"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// SearchResult is the outcome of Search. Servers is never nil.
type SearchResult struct {
	Servers     []Server     `json:"servers"`
	TotalCount  *int         `json:"totalCount,omitempty"`
	Unavailable *Unavailable `json:"unavailable,omitempty"`
}

// OK reports whether the registry answered.
func (r SearchResult) OK() bool {
	return r.Unavailable == nil
}

// Client queries the registry over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	group      singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the registry endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient returns a Client for the public Smithery registry.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    config.DefaultRegistryURL,
		userAgent:  "smartmcp",
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig returns a Client configured by cfg, then by opts. The API key
// is read from the environment variable named by cfg.APIKeyEnv.
func FromConfig(cfg config.RegistryConfig, opts ...Option) *Client {
	var key string
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	return NewClient(append([]Option{
		WithBaseURL(cfg.BaseURL),
		WithAPIKey(key),
		WithTimeout(cfg.Timeout),
	}, opts...)...)
}

// upstreamResponse is the subset of the registry response that is mapped.
type upstreamResponse struct {
	Servers []struct {
		QualifiedName string  `json:"qualifiedName"`
		DisplayName   string  `json:"displayName"`
		Description   *string `json:"description"`
		UseCount      *int    `json:"useCount"`
		Remote        *bool   `json:"remote"`
		Homepage      *string `json:"homepage"`
	} `json:"servers"`
	Pagination *struct {
		TotalCount int `json:"totalCount"`
	} `json:"pagination"`
}

// Search queries the registry for query, returning at most limit servers.
// A limit outside 1..MaxLimit is clamped. Concurrent identical searches
// share one request, and a caller whose ctx ends stops waiting without
// failing the others.
func (c *Client) Search(ctx context.Context, query string, limit int) SearchResult {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	key := query + "\x00" + strconv.Itoa(limit)
	ch := c.group.DoChan(key, func() (any, error) {
		// The request outlives any one caller; the client timeout bounds it.
		sctx := context.WithoutCancel(ctx)
		if c.httpClient.Timeout <= 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, DefaultTimeout)
			defer cancel()
		}
		return c.search(sctx, query, limit), nil
	})

	var (
		res    SearchResult
		shared bool
	)
	select {
	case r := <-ch:
		res, shared = r.Val.(SearchResult), r.Shared
	case <-ctx.Done():
		res = SearchResult{Unavailable: &Unavailable{
			Reason: errors.Wrap(ctx.Err(), "registry search abandoned").Error(),
		}}
	}

	logger := logging.FromContext(ctx)
	if res.Unavailable != nil {
		logger.Warn("registry unavailable",
			slog.String("query", query),
			slog.String("reason", res.Unavailable.Reason),
		)
	} else {
		logger.Debug("registry search",
			slog.String("query", query),
			slog.Int("results", len(res.Servers)),
			slog.Bool("shared", shared),
		)
	}

	// each caller gets its own slice
	out := res
	out.Servers = append([]Server(nil), res.Servers...)
	if out.Servers == nil {
		out.Servers = []Server{}
	}
	return out
}

func (c *Client) search(ctx context.Context, query string, limit int) SearchResult {
	var body upstreamResponse
	if err := c.apiRequest(ctx, query, limit, &body); err != nil {
		u := &Unavailable{Reason: err.Error()}
		var se *statusError
		if errors.As(err, &se) {
			u.StatusCode = se.code
		}
		return SearchResult{Servers: []Server{}, Unavailable: u}
	}

	servers := make([]Server, 0, len(body.Servers))
	for _, s := range body.Servers {
		servers = append(servers, Server{
			ID:            s.QualifiedName,
			Name:          s.DisplayName,
			Description:   s.Description,
			QualifiedName: s.QualifiedName,
			UseCount:      s.UseCount,
			Remote:        s.Remote,
			Homepage:      s.Homepage,
		})
	}

	res := SearchResult{Servers: servers}
	if body.Pagination != nil {
		total := body.Pagination.TotalCount
		res.TotalCount = &total
	}
	return res
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("registry returned status %d", e.code)
}

// apiRequest performs GET /servers and decodes the JSON body into result.
func (c *Client) apiRequest(ctx context.Context, query string, limit int, result any) error {
	u, err := url.Parse(c.baseURL + "/servers")
	if err != nil {
		return errors.Wrap(err, "building registry URL")
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("pageSize", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "registry request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return errors.Wrap(err, "parsing registry response")
	}
	return nil
}
