package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/time/rate"

	"github.com/hugr-lab/emsquery/internal/metrics"
	"github.com/hugr-lab/emsquery/internal/reqcontext"
)

// DefaultMaxReconnects bounds silent re-authentications per request.
const DefaultMaxReconnects = 3

const (
	userAgent       = "emsquery-go"
	maxErrorBodyLen = 2048
)

// Config contains configuration for the HTTP transport.
type Config struct {
	// BaseURL is the API root (e.g., "https://ems.efoqa.com/api").
	// OPTIONAL: Uses DefaultBaseURL if empty.
	BaseURL string

	// User and Password are used for the password grant.
	// REQUIRED for any call other than RouteAuth.
	User     string
	Password string

	// HTTPClient performs requests.
	// OPTIONAL: A client with Timeout is created if nil.
	HTTPClient *http.Client

	// Timeout applies to the created HTTP client. Ignored when HTTPClient is set.
	Timeout time.Duration

	// IgnoreTLSErrors disables certificate verification.
	// Only for beta endpoints without a proper certificate.
	IgnoreTLSErrors bool

	// MaxReconnects bounds re-authentications per request.
	// OPTIONAL: Uses DefaultMaxReconnects if 0. Negative disables reconnects.
	MaxReconnects int

	// RequestsPerSecond limits the request rate. 0 means unlimited.
	RequestsPerSecond float64

	// Logger for transport events.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}

// Client is the authenticated EMS API transport. It is safe for concurrent use.
type Client struct {
	baseURL       string
	user          string
	password      string
	http          *http.Client
	maxReconnects int
	limiter       *rate.Limiter
	logger        *slog.Logger

	mu    sync.Mutex
	token *token
}

// NewClient creates a transport. No network activity happens until the first request.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		// gzip is requested and decoded explicitly
		tr.DisableCompression = true
		if cfg.IgnoreTLSErrors {
			tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		httpClient = &http.Client{Transport: tr, Timeout: cfg.Timeout}
	}

	maxReconnects := cfg.MaxReconnects
	switch {
	case maxReconnects == 0:
		maxReconnects = DefaultMaxReconnects
	case maxReconnects < 0:
		maxReconnects = 0
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:       base,
		user:          cfg.User,
		password:      cfg.Password,
		http:          httpClient,
		maxReconnects: maxReconnects,
		logger:        logger,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// Connect acquires a fresh token with the configured credentials.
func (c *Client) Connect(ctx context.Context) error {
	if c.user == "" || c.password == "" {
		return ErrNoCredentials
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.user},
		"password":   {c.password},
	}
	path, err := RouteAuth.Path()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.send(ctx, RouteAuth, req)
	if err != nil {
		return err
	}

	var tok token
	if err := json.Unmarshal(resp.Body, &tok); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if err := tok.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.token = &tok
	c.mu.Unlock()

	c.logger.Debug("Connected to EMS API", "base_url", c.baseURL, "user", c.user)
	return nil
}

// Request implements Requester.
//
// A request failing with a network error or HTTP 401 triggers a re-authentication
// followed by a resend, at most MaxReconnects times. Certificate verification
// failures and other statuses are returned as-is.
func (c *Client) Request(ctx context.Context, call Call) (*Response, error) {
	if c.currentToken() == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.do(ctx, call)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil || !sessionExpired(err) {
			return nil, err
		}
		if attempt >= c.maxReconnects {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrReconnectLimit, attempt, err)
		}

		c.logger.Warn("Request failed, reconnecting to EMS API",
			"route", call.Route,
			"attempt", attempt+1,
			"error", err,
		)
		metrics.TransportReconnects.Inc()
		if cerr := c.Connect(ctx); cerr != nil {
			return nil, fmt.Errorf("reconnect: %w", cerr)
		}
	}
}

func (c *Client) currentToken() *token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) do(ctx context.Context, call Call) (*Response, error) {
	path, err := call.Route.Path(call.Args...)
	if err != nil {
		return nil, err
	}
	target := c.baseURL + path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		data, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if call.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.currentToken(); tok != nil {
		req.Header.Set("Authorization", tok.authorizationHeader())
	}

	return c.send(ctx, call.Route, req)
}

// send performs the HTTP exchange and decodes the body.
func (c *Client) send(ctx context.Context, route Route, req *http.Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	reqcontext.SetHeader(ctx, req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.TransportDuration.WithLabelValues(string(route)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TransportRequests.WithLabelValues(string(route), "error").Inc()
		if isCertificateError(err) {
			c.logger.Error("Certificate verification failed; set IgnoreTLSErrors only for trusted beta endpoints",
				"url", req.URL.String(),
			)
		}
		return nil, &RemoteRequestError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()
	metrics.TransportRequests.WithLabelValues(string(route), strconv.Itoa(resp.StatusCode)).Inc()

	data, err := readBody(resp)
	if err != nil {
		return nil, &RemoteRequestError{Method: req.Method, URL: req.URL.String(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBodyLen {
			data = data[:maxErrorBodyLen]
		}
		return nil, &RemoteRequestError{
			Method: req.Method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Body:   string(data),
		}
	}

	c.logger.Debug("EMS API request completed",
		"route", route,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return &Response{Header: resp.Header, Body: data}, nil
}

// readBody reads the response body, transparently decoding gzip.
func readBody(resp *http.Response) ([]byte, error) {
	if !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return io.ReadAll(resp.Body)
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("open gzip body: %w", err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
