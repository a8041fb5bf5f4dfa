package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const defaultUserAgent = "suno-forge/1.0"

type Options struct {
	PreferIPv4 bool
	Timeout    time.Duration
	UserAgent  string
	Logger     *slog.Logger

	// Transport overrides the dialing transport, mainly for tests.
	Transport http.RoundTripper
}

func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	base := opts.Transport
	if base == nil {
		base = newTransport(opts.PreferIPv4)
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &loggingTransport{
			next:      base,
			userAgent: ua,
			logger:    logger,
		},
	}
}

func newTransport(preferIPv4 bool) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if preferIPv4 {
				return dialer.DialContext(ctx, "tcp4", addr)
			}
			return dialer.DialContext(ctx, network, addr)
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// loggingTransport stamps the User-Agent and logs each round trip at debug
// level. Only the host is logged; bot API paths carry the token.
type loggingTransport struct {
	next      http.RoundTripper
	userAgent string
	logger    *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	dur := time.Since(start).Milliseconds()
	if err != nil {
		t.logger.Debug("http out", "method", req.Method, "host", req.URL.Host, "dur_ms", dur, "err", err)
		return nil, err
	}
	t.logger.Debug("http out", "method", req.Method, "host", req.URL.Host, "status", resp.StatusCode, "dur_ms", dur)
	return resp, nil
}
