// Package playwright implements browser.Tab on top of a Playwright-driven Chromium page.
package playwright

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

const (
	// ToolElementID is the id of the overlay the clipper injects into pages.
	ToolElementID = "webclipper-tool"

	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	DefaultTimeout        = 30 * time.Second
)

var (
	hideToolScript = toolDisplayScript("none")
	showToolScript = toolDisplayScript("")

	removeToolScript = fmt.Sprintf(`() => {
  const el = document.getElementById(%q);
  if (!el) { return false; }
  el.remove();
  return true;
}`, ToolElementID)
)

// toolDisplayScript sets the overlay's CSS display, so repeating it is harmless.
func toolDisplayScript(display string) string {
	return fmt.Sprintf(`() => {
  const el = document.getElementById(%q);
  if (!el) { return false; }
  el.style.display = %q;
  return true;
}`, ToolElementID, display)
}

// Options configures the Chromium session.
type Options struct {
	Headless bool
	Install  bool // download browsers on first start
	Timeout  time.Duration
	Width    int
	Height   int
}

// Session owns one browser, one context and the page used as the current tab.
type Session struct {
	mu      sync.Mutex
	pw      *pw.Playwright
	browser pw.Browser
	context pw.BrowserContext
	page    pw.Page
	logger  logger.Logger
}

var _ browser.Tab = (*Session)(nil)

// Start launches Playwright and opens a blank page.
func Start(opts Options, log logger.Logger) (*Session, error) {
	runOpts := &pw.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if opts.Install {
		if err := pw.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	runner, err := pw.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	b, err := runner.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
	})
	if err != nil {
		_ = runner.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultViewportWidth
	}
	if height <= 0 {
		height = DefaultViewportHeight
	}
	bctx, err := b.NewContext(pw.BrowserNewContextOptions{
		Viewport: &pw.Size{Width: width, Height: height},
	})
	if err != nil {
		_ = b.Close()
		_ = runner.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = b.Close()
		_ = runner.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))

	log.Info("browser session started",
		logger.Bool("headless", opts.Headless),
		logger.Int("width", width),
		logger.Int("height", height))

	return &Session{
		pw:      runner,
		browser: b,
		context: bctx,
		page:    page,
		logger:  log,
	}, nil
}

// Navigate opens url in the current tab and returns the page title and final URL.
func (s *Session) Navigate(ctx context.Context, url string) (title, finalURL string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return "", "", domain.ErrNoActiveTab
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if _, err := s.page.Goto(url); err != nil {
		return "", "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	title, err = s.page.Title()
	if err != nil {
		return "", "", fmt.Errorf("failed to read page title: %w", err)
	}
	return title, s.page.URL(), nil
}

// SendAction evaluates the script behind action in the page.
func (s *Session) SendAction(ctx context.Context, action browser.Action) (any, error) {
	var script string
	switch action.Type {
	case browser.ActionRunScript:
		script = action.Script
	case browser.ActionHideTool:
		script = hideToolScript
	case browser.ActionShowTool:
		script = showToolScript
	case browser.ActionRemoveTool:
		script = removeToolScript
	default:
		return nil, fmt.Errorf("unsupported action %q", action.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return nil, domain.ErrNoActiveTab
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}
	return result, nil
}

// CaptureVisibleTab screenshots the viewport as a PNG data URL.
func (s *Session) CaptureVisibleTab(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return "", domain.ErrNoActiveTab
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	png, err := s.page.Screenshot(pw.PageScreenshotOptions{
		Type: pw.ScreenshotTypePng,
	})
	if err != nil {
		return "", fmt.Errorf("failed to capture tab: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Close tears the session down; errors are collected, cleanup continues.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.page != nil {
		keep(s.page.Close())
		s.page = nil
	}
	if s.context != nil {
		keep(s.context.Close())
	}
	if s.browser != nil {
		keep(s.browser.Close())
	}
	if s.pw != nil {
		keep(s.pw.Stop())
	}
	if firstErr == nil {
		s.logger.Info("browser session closed")
	}
	return firstErr
}
