package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"newspaper-etl/internal/config"
	"newspaper-etl/internal/observability"
)

// ErrUnexpectedStatus wraps every non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Fetcher issues single GET requests through one shared http.Client. It never
// retries: a failed request is reported once and the caller records it.
type Fetcher struct {
	client    *http.Client
	cfg       *config.Config
	logger    *observability.Logger
	hostLimit *HostLimiter
}

type FetchResponse struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
}

func NewFetcher(cfg *config.Config, logger *observability.Logger) *Fetcher {
	dialer := &net.Dialer{Timeout: cfg.GetConnectTimeout()}
	client := &http.Client{
		Timeout: cfg.GetTotalTimeout(),
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: cfg.GetConnectTimeout(),
			MaxIdleConns:        cfg.HTTP.MaxIdleConnections,
			MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnectionsPerHost,
			IdleConnTimeout:     cfg.GetIdleConnectionTimeout(),
		},
	}

	return &Fetcher{
		client:    client,
		cfg:       cfg,
		logger:    logger,
		hostLimit: NewHostLimiter(cfg.Concurrency.MaxConcurrentPerHost),
	}
}

func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL %q: unsupported scheme", urlStr)
	}

	release, err := f.hostLimit.Acquire(ctx, parsedURL.Host)
	if err != nil {
		return nil, fmt.Errorf("host limiter: %w", err)
	}
	defer release()

	resp, err := f.fetchOnce(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp.StatusCode, urlStr); err != nil {
		return nil, err
	}
	return resp, nil
}

func checkStatus(code int, urlStr string) error {
	if code < 200 || code > 299 {
		return fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, code, urlStr)
	}
	return nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, urlStr string) (*FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.cfg.HTTP.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("Failed to close response body", "url", urlStr, "error", err.Error())
		}
	}()

	reader := resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	f.logger.Debug("Response received",
		"url", urlStr,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"body_bytes", len(body),
		"elapsed", time.Since(start).String(),
	)

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        resp.Request.URL.String(),
		Headers:    resp.Header,
	}, nil
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return u.Host
}
