package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"newspaper-etl/internal/config"
	"newspaper-etl/internal/observability"
)

// Browser renders pages in headless Chrome for sites whose article lists are
// built by JavaScript. It satisfies the same Fetch contract as Fetcher.
type Browser struct {
	browser   *rod.Browser
	cfg       *config.Config
	logger    *observability.Logger
	hostLimit *HostLimiter
}

func NewBrowser(cfg *config.Config, logger *observability.Logger) (*Browser, error) {
	controlURL, err := launcher.New().
		Bin(cfg.Rod.ChromePath).
		Headless(true).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{
		browser:   b,
		cfg:       cfg,
		logger:    logger,
		hostLimit: NewHostLimiter(cfg.Concurrency.MaxConcurrentPerHost),
	}, nil
}

func (b *Browser) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	release, err := b.hostLimit.Acquire(ctx, hostOf(urlStr))
	if err != nil {
		return nil, fmt.Errorf("host limiter: %w", err)
	}
	defer release()

	page, err := b.browser.Context(ctx).Timeout(b.cfg.GetRodPageTimeout()).
		Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			b.logger.Debug("Failed to close page", "url", urlStr, "error", err.Error())
		}
	}()

	// status of the main document, so an error page is not taken for an article
	status := 0
	waitResponse := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})

	if err := page.Navigate(urlStr); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	waitResponse()
	if err := checkStatus(status, urlStr); err != nil {
		return nil, err
	}

	if err := page.Timeout(b.cfg.GetRodWaitLoadTimeout()).WaitLoad(); err != nil {
		return nil, fmt.Errorf("page did not load: %w", err)
	}

	if delay := b.cfg.GetRodLazyLoadDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page html: %w", err)
	}

	return &FetchResponse{
		StatusCode: status,
		Body:       []byte(html),
		URL:        urlStr,
		Headers:    http.Header{},
	}, nil
}

func (b *Browser) Close() error {
	return b.browser.Close()
}
