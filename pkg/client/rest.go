package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/vast-data/vast-admin-mcp/pkg/config"
	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
)

const (
	apiPrefix    = "/api/latest/"
	tenantHeader = "X-Tenant-Name"
	paramTenant  = "tenant_id"

	// maxErrorBody caps how much of a failed response is kept in errors.
	maxErrorBody = 512
)

// RESTCaller talks to one cluster's REST API with basic authentication.
type RESTCaller struct {
	base       *url.URL
	client     *http.Client
	username   string
	password   string
	tenant     string
	limiter    *rate.Limiter
	retries    uint64
	retryDelay time.Duration
}

// RESTOption configures a RESTCaller.
type RESTOption func(*RESTCaller)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(r *RESTCaller) {
		r.client = c
	}
}

// WithBaseURL overrides the URL derived from the cluster address.
func WithBaseURL(u *url.URL) RESTOption {
	return func(r *RESTCaller) {
		r.base = u
	}
}

// WithRateLimit bounds the request rate to one cluster.
func WithRateLimit(limit rate.Limit, burst int) RESTOption {
	return func(r *RESTCaller) {
		r.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithRetry sets the retry budget and the constant delay between attempts.
func WithRetry(retries uint64, delay time.Duration) RESTOption {
	return func(r *RESTCaller) {
		r.retries = retries
		r.retryDelay = delay
	}
}

// NewRESTCaller returns a caller for cl. The address may carry a scheme;
// https is assumed otherwise.
func NewRESTCaller(cl config.Cluster, opts ...RESTOption) (*RESTCaller, error) {
	addr := cl.Address
	if !strings.Contains(addr, "://") {
		addr = "https://" + addr
	}
	base, err := url.Parse(addr)
	if err != nil {
		return nil, vaerrors.Wrap(vaerrors.ErrCodeConfig, fmt.Sprintf("invalid cluster address %q", cl.Address), err)
	}

	r := &RESTCaller{
		base:       base,
		username:   cl.Username,
		password:   cl.Password,
		tenant:     cl.SessionTenant(),
		retries:    defaults.MaxRetries,
		retryDelay: defaults.RetryDelay,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: defaults.ConnectTimeout,
				}).DialContext,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: cl.SkipVerify(),
				},
				TLSHandshakeTimeout:   defaults.ConnectTimeout,
				ResponseHeaderTimeout: defaults.ReadTimeout,
				MaxIdleConnsPerHost:   4,
			},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Do issues req, retrying transport failures and 5xx responses within the
// retry budget. Other 4xx responses fail immediately.
func (r *RESTCaller) Do(ctx context.Context, req Request) (any, error) {
	var body any
	op := func() error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		var err error
		body, err = r.once(ctx, req)
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.retryDelay), r.retries), ctx)
	notify := func(err error, d time.Duration) {
		apiRetriesTotal.Inc()
		slog.Debug("retrying upstream request",
			"endpoint", req.Endpoint,
			"method", req.Method,
			"delay", d,
			"error", err)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (r *RESTCaller) once(ctx context.Context, req Request) (any, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	u := r.endpointURL(req.Endpoint)
	query := url.Values{}
	if req.Tenant != "" {
		query.Set(paramTenant, req.Tenant)
	}

	var payload io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete:
		encodeQuery(query, req.Params)
	default:
		data, err := json.Marshal(req.Params)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to encode request body: %w", err))
		}
		payload = bytes.NewReader(data)
	}
	u.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	httpReq.SetBasicAuth(r.username, r.password)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if r.tenant != "" {
		httpReq.Header.Set(tenantHeader, r.tenant)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := vaerrors.WrapWithContext(statusCode(resp.StatusCode),
			fmt.Sprintf("%s %s returned %d: %s", method, u.Path, resp.StatusCode, truncate(data)),
			nil, map[string]any{"status": resp.StatusCode})
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode response from %s: %w", u.Path, err))
	}
	return body, nil
}

// endpointURL maps a dotted endpoint name to its URL path:
// monitors.12.query becomes /api/latest/monitors/12/query/.
func (r *RESTCaller) endpointURL(endpoint string) *url.URL {
	u := *r.base
	u.Path = strings.TrimSuffix(u.Path, "/") + apiPrefix + strings.ReplaceAll(endpoint, ".", "/") + "/"
	return &u
}

// encodeQuery adds params in key order. Lists become repeated keys.
func encodeQuery(q url.Values, params map[string]any) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
		case []string:
			for _, it := range v {
				q.Add(k, it)
			}
		case []any:
			for _, it := range v {
				q.Add(k, filter.ToString(it))
			}
		default:
			q.Add(k, filter.ToString(v))
		}
	}
}

func statusCode(status int) vaerrors.ErrorCode {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return vaerrors.ErrCodeUnauthorized
	case http.StatusNotFound:
		return vaerrors.ErrCodeNotFound
	default:
		return vaerrors.ErrCodeUpstream
	}
}

func truncate(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

// A Dialer opens a Caller for a configured cluster.
type Dialer func(ctx context.Context, cl config.Cluster) (Caller, error)

// DialREST returns a Dialer building RESTCallers with opts.
func DialREST(opts ...RESTOption) Dialer {
	return func(_ context.Context, cl config.Cluster) (Caller, error) {
		return NewRESTCaller(cl, opts...)
	}
}
