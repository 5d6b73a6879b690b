// SPDX-License-Identifier: MIT

// Package httpclient implements engine.Fetcher: it turns an
// engine.EngineRequest into a real outbound HTTP call, wrapped in the
// circuit breaker and retry helpers from internal/retry, and classifies
// whatever comes back (or fails) into an *engine.Error per spec.md §4.5.
//
// Grounded on src/server/service/engine/engine.go's BaseEngine
// (MakeRequestWithMod's retry-wrapped Do, createHTTPClient's browser-like
// TLS transport, classifyHTTPError) and
// src/server/service/utls/utls.go's fingerprint-spoofing transport, both
// generalized from a single per-engine client into one shared Fetcher all
// engines in internal/engines call through.
package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/proxy"

	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/retry"
)

// DefaultUserAgent is used whenever Config.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Fingerprint selects which browser's TLS ClientHello uTLS mimics.
type Fingerprint string

const (
	FingerprintNone    Fingerprint = ""
	FingerprintChrome  Fingerprint = "chrome"
	FingerprintFirefox Fingerprint = "firefox"
	FingerprintSafari  Fingerprint = "safari"
)

// Config configures the shared Client every engine fetches through.
type Config struct {
	Timeout     time.Duration
	UserAgent   string
	Fingerprint Fingerprint
	// ProxyDialer, when set, routes every outbound connection through it
	// (the Tor SOCKS5 dialer from internal/torproxy is the intended use).
	ProxyDialer proxy.Dialer
	Retry       *retry.Config
	Breakers    *retry.Registry
}

// Client is the shared engine.Fetcher. One Client is constructed at
// startup and shared by every engine; per-engine resilience state lives in
// the circuit breaker registry, not in the Client itself.
type Client struct {
	cfg      Config
	plain    *http.Client
	spoofed  *http.Client
	breakers *retry.Registry
	retryCfg *retry.Config
}

// New builds a Client from cfg, applying spec.md defaults for any zero
// fields.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Retry == nil {
		cfg.Retry = &retry.Config{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
			Jitter:       0.1,
			RetryableErrors: []error{
				retry.ErrTemporary, retry.ErrTimeout,
				retry.ErrNetworkError, retry.ErrServerError,
			},
		}
	}
	if cfg.Breakers == nil {
		cfg.Breakers = retry.NewRegistry(nil)
	}

	c := &Client{cfg: cfg, breakers: cfg.Breakers, retryCfg: cfg.Retry}
	c.plain = newBrowserClient(cfg.Timeout, cfg.ProxyDialer)
	if cfg.Fingerprint != FingerprintNone {
		c.spoofed = newSpoofedClient(cfg.Timeout, cfg.Fingerprint, cfg.ProxyDialer)
	}
	return c
}

func (c *Client) httpClient() *http.Client {
	if c.spoofed != nil {
		return c.spoofed
	}
	return c.plain
}

// Do implements engine.Fetcher: it applies headers/query/cookies/body from
// req, runs the call through this engine's circuit breaker and retry
// policy, and returns a classified *engine.Error on any failure.
func (c *Client) Do(ctx context.Context, req *engine.EngineRequest) (*engine.EngineResponse, error) {
	breaker := c.breakers.Get(engineNameFromContext(ctx))
	if !breaker.AllowRequest() {
		return nil, engine.NewError(engine.ErrNetworkError, retry.ErrCircuitOpen)
	}

	var resp *engine.EngineResponse
	err := retry.Do(ctx, c.retryCfg, func() error {
		r, doErr := c.doOnce(ctx, req)
		if doErr != nil {
			return doErr
		}
		resp = r
		return nil
	})

	if err != nil {
		breaker.RecordFailure()
		return nil, classify(ctx, err)
	}
	breaker.RecordSuccess()
	return resp, nil
}

func (c *Client) doOnce(ctx context.Context, req *engine.EngineRequest) (*engine.EngineResponse, error) {
	httpReq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	if httpReq.Header.Get("Accept-Language") == "" {
		httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 500 {
		return nil, retry.ErrServerError
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, retry.ErrRateLimit
	}
	if resp.StatusCode == http.StatusForbidden {
		return nil, errAccessDenied
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &engine.EngineResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		FinalURL:   finalURL,
	}, nil
}

// errAccessDenied marks an HTTP 403 response; classify maps it to
// engine.ErrAccessDenied.
var errAccessDenied = errors.New("access denied")

// classify maps a retry-layer error (including one that survived every
// attempt) onto spec.md §4.5's engine.Error taxonomy.
func classify(ctx context.Context, err error) *engine.Error {
	switch {
	case ctx.Err() != nil:
		return engine.NewError(engine.ErrTimeout, ctx.Err())
	case err == errAccessDenied:
		return engine.NewError(engine.ErrAccessDenied, err)
	case err == retry.ErrRateLimit:
		return engine.NewError(engine.ErrTooManyRequests, err)
	case err == retry.ErrServerError:
		return engine.NewError(engine.ErrServerError, err)
	case err == retry.ErrTimeout:
		return engine.NewError(engine.ErrTimeout, err)
	case err == retry.ErrNetworkError:
		return engine.NewError(engine.ErrNetworkError, err)
	default:
		return engine.NewError(engine.ErrUnknown, err)
	}
}

// classifyTransportError mirrors the teacher's classifyHTTPError: it
// inspects the error text for well-known substrings since net/http wraps
// the underlying net.Error without a stable sentinel.
func classifyTransportError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return fmt.Errorf("%w: %v", retry.ErrTimeout, err)
	case strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "no such host"),
		strings.Contains(errStr, "network is unreachable"),
		strings.Contains(errStr, "connection reset"):
		return fmt.Errorf("%w: %v", retry.ErrNetworkError, err)
	case retry.IsTemporaryError(err):
		return fmt.Errorf("%w: %v", retry.ErrTemporary, err)
	default:
		return err
	}
}

type engineNameKey struct{}

// WithEngineName attaches the current engine's name to ctx so Do can look
// up its dedicated circuit breaker.
func WithEngineName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, engineNameKey{}, name)
}

func engineNameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(engineNameKey{}).(string); ok {
		return name
	}
	return "unknown"
}

func newBrowserClient(timeout time.Duration, dialer proxy.Dialer) *http.Client {
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
		},
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if dialer != nil {
		transport.DialContext = dialContextFromDialer(dialer)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		Jar:       jar,
		CheckRedirect: capRedirects,
	}
}

func newSpoofedClient(timeout time.Duration, fp Fingerprint, dialer proxy.Dialer) *http.Client {
	jar, _ := cookiejar.New(nil)

	helloID := utls.HelloChrome_120
	switch fp {
	case FingerprintFirefox:
		helloID = utls.HelloFirefox_120
	case FingerprintSafari:
		helloID = utls.HelloSafari_16_0
	}

	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialUTLS(ctx, network, addr, helloID, dialer)
		},
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Timeout:       timeout,
		Transport:     transport,
		Jar:           jar,
		CheckRedirect: capRedirects,
	}
}

func capRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("too many redirects")
	}
	for key, val := range via[0].Header {
		if _, ok := req.Header[key]; !ok {
			req.Header[key] = val
		}
	}
	return nil
}

func dialUTLS(ctx context.Context, network, addr string, helloID utls.ClientHelloID, dialer proxy.Dialer) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialPlain(ctx, network, addr, dialer)
	if err != nil {
		return nil, err
	}

	tlsConfig := &utls.Config{ServerName: host}
	uconn := utls.UClient(conn, tlsConfig, helloID)
	if err := uconn.Handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return uconn, nil
}

func dialPlain(ctx context.Context, network, addr string, dialer proxy.Dialer) (net.Conn, error) {
	if dialer != nil {
		return dialer.Dial(network, addr)
	}
	d := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	return d.DialContext(ctx, network, addr)
}

func dialContextFromDialer(dialer proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}
}
