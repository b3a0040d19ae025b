// Playwright session management. One Session per scraper instance; sessions
// are never shared.

package browser

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Options configure a browser session. Engine must be one of the supported
// engine families.
type Options struct {
	Engine         string //"chromium" or "firefox"
	Headless       bool
	WindowWidth    int
	WindowHeight   int
	UserAgent      string
	ExecutablePath string //optional binary override
	TimeoutMs      float64
}

// Session owns a playwright driver, a browser, one context and one page.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// NewSession launches a browser and opens a single page. On any failure the
// partially built session is torn down before returning.
func NewSession(opts Options) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	s := &Session{pw: pw}

	var browserType playwright.BrowserType
	switch strings.ToLower(opts.Engine) {
	case "", "chromium":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	default:
		s.Close()
		return nil, fmt.Errorf("unsupported browser engine %q", opts.Engine)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}
	if opts.TimeoutMs > 0 {
		launchOpts.Timeout = playwright.Float(opts.TimeoutMs)
	}

	s.browser, err = browserType.Launch(launchOpts)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("launch %s: %w", opts.Engine, err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: opts.WindowWidth, Height: opts.WindowHeight}
	}

	s.context, err = s.browser.NewContext(ctxOpts)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	s.page, err = s.context.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	return s, nil
}

// Page returns the session's single page.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Close releases everything the session acquired. Safe to call on a
// partially constructed or already closed session; the first error is
// returned but teardown always runs to the end.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.context != nil {
		if err := s.context.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.context = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.browser = nil
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.pw = nil
	}
	s.page = nil
	return firstErr
}
