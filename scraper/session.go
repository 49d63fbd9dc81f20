package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/harvest"
	"github.com/use-agent/harvest/models"
	"github.com/ysmood/gson"
)

// Pauses of the page-load protocol. Lazily rendered sections only mount
// once they have been scrolled past.
const (
	bodySettle  = 3 * time.Second
	scrollPause = 2 * time.Second
)

// Session is one browser with one loaded research page. It owns the browser
// process; call Close when done.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	router  *rod.HijackRouter
	dir     string
	timeout time.Duration
	log     *slog.Logger
}

// Open launches the browser, points its downloads at hcfg.OutputDir and
// loads hcfg.URL. Every error it returns is a *models.HarvestError and is
// fatal to the run.
func Open(ctx context.Context, bcfg config.BrowserConfig, hcfg config.HarvestConfig, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}

	dir, err := filepath.Abs(hcfg.OutputDir)
	if err != nil {
		return nil, models.NewHarvestError(models.ErrCodeInvalidInput, "invalid output directory", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, models.NewHarvestError(models.ErrCodeInvalidInput, "cannot create output directory", err)
	}

	browser, err := launch(bcfg, log)
	if err != nil {
		return nil, err
	}
	s := &Session{browser: browser, dir: dir, timeout: hcfg.ActionTimeout, log: log}

	err = proto.BrowserSetDownloadBehavior{
		Behavior:      proto.BrowserSetDownloadBehaviorBehaviorAllow,
		DownloadPath:  dir,
		EventsEnabled: true,
	}.Call(browser)
	if err != nil {
		s.Close()
		return nil, models.NewHarvestError(models.ErrCodeBrowserLaunch, "failed to set download directory", err)
	}
	log.Info("browser ready", "downloads", dir)

	if err := s.load(ctx, bcfg, hcfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// launch starts Chromium with the automation fingerprints removed.
func launch(cfg config.BrowserConfig, log *slog.Logger) (*rod.Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("window-size"), "1920,1080")
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewHarvestError(models.ErrCodeBrowserLaunch, "failed to launch browser", err)
	}
	log.Info("browser launched", "controlURL", controlURL, "headless", cfg.Headless)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewHarvestError(models.ErrCodeBrowserLaunch, "failed to connect to browser", err)
	}
	return browser, nil
}

// load opens the tab and runs the page-load protocol:
//
//  1. stealth script, user agent, headers and request blocking (before navigation)
//  2. navigate
//  3. wait for <body> and a stable DOM
//  4. scroll to the bottom and back to the top
func (s *Session) load(ctx context.Context, bcfg config.BrowserConfig, hcfg config.HarvestConfig) error {
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return models.NewHarvestError(models.ErrCodeBrowserLaunch, "failed to open tab", err)
	}
	s.page = page

	if bcfg.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			s.log.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}
	if bcfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: bcfg.UserAgent}); err != nil {
			s.log.Warn("user agent override failed", "error", err)
		}
	}
	if headers := referrerHeaders(hcfg.URL); len(headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)
	}
	s.router = setupHijack(page, bcfg.BlockedResourceTypes, bcfg.BlockAds, s.log)

	loadCtx, cancel := context.WithTimeout(ctx, hcfg.PageLoadTimeout)
	defer cancel()
	p := page.Context(loadCtx)

	s.log.Info("loading page", "url", hcfg.URL)
	if err := p.Navigate(hcfg.URL); err != nil {
		return categorizeError(err, "navigation to research page failed")
	}
	if _, err := p.Element("body"); err != nil {
		return categorizeError(err, "page body never appeared")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		s.log.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}
	if err := sleep(loadCtx, bodySettle); err != nil {
		return categorizeError(err, "page load interrupted")
	}

	for _, js := range []string{
		`() => window.scrollTo(0, document.body.scrollHeight)`,
		`() => window.scrollTo(0, 0)`,
	} {
		if _, err := p.Eval(js); err != nil {
			s.log.Debug("warm-up scroll failed", "error", err)
		}
		if err := sleep(loadCtx, scrollPause); err != nil {
			return categorizeError(err, "page load interrupted")
		}
	}

	s.log.Info("page loaded", "title", evalStringOrEmpty(p, `() => document.title`))
	return nil
}

// Page returns the loaded page as seen by the harvester.
func (s *Session) Page() harvest.Page {
	return &rodPage{page: s.page, timeout: s.timeout, log: s.log}
}

// DownloadDir is the absolute path the browser saves downloads to.
func (s *Session) DownloadDir() string {
	return s.dir
}

// Close stops request interception and kills the browser process.
func (s *Session) Close() {
	if s.router != nil {
		_ = s.router.Stop()
	}
	if err := s.browser.Close(); err != nil {
		s.log.Warn("closing browser failed", "error", err)
		return
	}
	s.log.Info("browser closed")
}

// referrerHeaders makes the visit look like it came from a search result.
func referrerHeaders(target string) map[string]string {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	return map[string]string{
		"Referer":         "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname()),
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

func evalStringOrEmpty(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("wait %s: %w", d, ctx.Err())
	case <-time.After(d):
		return nil
	}
}
