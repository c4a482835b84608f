package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"spice-scraper/internal/types"
)

// Session drives a single browser tab. Operations share the tab's state,
// so a Navigate followed by SelectOption and Text reads the re-rendered
// price of the selected variant. Callers own the session and must Close
// it on every exit path.
type Session interface {
	Navigate(url, waitSelector string) error
	WaitVisible(selector string) error
	Text(selector string) (string, error)
	HTML() (string, error)
	Dismiss(selector string) bool
	SelectOption(selector, value string) error
	Close()
}

// BrowserClient owns a shared headless Chrome process and hands out page
// sessions bound to it. The process starts lazily on the first session
// request, so purely static crawls never pay the launch cost.
type BrowserClient struct {
	config *types.Config
	logger types.Logger

	mu          sync.Mutex
	browserCtx  context.Context
	browserStop context.CancelFunc
	allocCancel context.CancelFunc
}

// NewBrowserClient creates a new browser client
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

func (b *BrowserClient) ensureBrowser() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil && b.browserCtx.Err() == nil {
		return b.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(b.config.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserStop := chromedp.NewContext(allocCtx)

	// Start the process now so launch failures surface here instead of
	// midway through a crawl.
	if err := chromedp.Run(browserCtx); err != nil {
		browserStop()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b.browserCtx = browserCtx
	b.browserStop = browserStop
	b.allocCancel = allocCancel

	b.logger.Debug("Headless browser launched")
	return browserCtx, nil
}

// NewSession opens a fresh tab for one page.
func (b *BrowserClient) NewSession(ctx context.Context) (Session, error) {
	browserCtx, err := b.ensureBrowser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(browserCtx)
	return &PageSession{
		parent:  ctx,
		ctx:     tabCtx,
		cancel:  cancel,
		timeout: b.config.Timeout,
		logger:  b.logger,
	}, nil
}

// Close shuts down the shared browser process if it was started.
func (b *BrowserClient) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserStop != nil {
		b.browserStop()
		b.browserStop = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.browserCtx = nil
}

// PageSession is the chromedp-backed Session implementation. Every
// operation runs under its own deadline so a stalled page load or
// variant re-render cannot hang a crawl.
type PageSession struct {
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  types.Logger
	once    sync.Once
}

func (s *PageSession) run(actions ...chromedp.Action) error {
	if err := s.parent.Err(); err != nil {
		return err
	}
	opCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// Navigate loads the URL and blocks until waitSelector is visible.
func (s *PageSession) Navigate(url, waitSelector string) error {
	err := s.run(
		chromedp.Navigate(url),
		chromedp.WaitVisible(waitSelector),
	)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until the selector matches a visible element.
func (s *PageSession) WaitVisible(selector string) error {
	if err := s.run(chromedp.WaitVisible(selector)); err != nil {
		return fmt.Errorf("failed to wait for element %s: %w", selector, err)
	}
	return nil
}

// Text retrieves the text content of the first element matching selector.
func (s *PageSession) Text(selector string) (string, error) {
	var text string
	if err := s.run(chromedp.Text(selector, &text)); err != nil {
		return "", fmt.Errorf("failed to get element text for %s: %w", selector, err)
	}
	return text, nil
}

// HTML retrieves the full rendered markup of the current page.
func (s *PageSession) HTML() (string, error) {
	var html string
	if err := s.run(chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return html, nil
}

// Dismiss clicks the first element matching selector, if present. Used
// for cookie banners and promo popups that cover the page; absence is
// not an error.
func (s *PageSession) Dismiss(selector string) bool {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) { return false; }
		el.click();
		return true;
	})()`, selector)

	var clicked bool
	if err := s.run(chromedp.Evaluate(script, &clicked)); err != nil {
		s.logger.Debugf("Dismiss %s: %v", selector, err)
		return false
	}
	return clicked
}

// SelectOption sets a <select> control to value and fires a change event
// so the storefront script re-renders the dependent price.
func (s *PageSession) SelectOption(selector, value string) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) { return false; }
		el.value = %q;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, selector, value)

	var found bool
	if err := s.run(chromedp.Evaluate(script, &found)); err != nil {
		return fmt.Errorf("failed to select option %s on %s: %w", value, selector, err)
	}
	if !found {
		return fmt.Errorf("no element matches selector %s", selector)
	}
	return nil
}

// Close releases the tab. Safe to call more than once.
func (s *PageSession) Close() {
	s.once.Do(func() {
		s.cancel()
	})
}
