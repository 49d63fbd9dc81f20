// Package fetch retrieves a page over plain HTTP with a Chrome TLS
// fingerprint. It backs the browserless dry run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/models"
)

// maxBody caps the response body.
const maxBody = 10 << 20

// chromeH1Spec is a Chrome ClientHello with ALPN limited to http/1.1, since
// net/http cannot speak h2 over a utls connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// Result is a fetched page.
type Result struct {
	URL        string
	StatusCode int
	HTML       []byte
	Title      string

	// NeedsBrowser is set when the static HTML looks like a script-rendered
	// shell, so controls found in it may be incomplete.
	NeedsBrowser bool
}

// Fetcher performs GET requests that look like desktop Chrome.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New creates a Fetcher. An http(s) proxy URL is honoured; other schemes
// are ignored.
func New(cfg config.BrowserConfig, timeout time.Duration) *Fetcher {
	transport := &http.Transport{
		DialTLSContext:    dialTLSChrome,
		ForceAttemptHTTP2: false,
	}
	if cfg.DefaultProxy != "" {
		if u, err := url.Parse(cfg.DefaultProxy); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: ua,
	}
}

// Get fetches target. Non-HTML responses and HTTP errors are reported as
// *models.HarvestError with ErrCodeFetch.
func (f *Fetcher) Get(ctx context.Context, target string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, models.NewHarvestError(models.ErrCodeInvalidInput, "invalid url", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, models.NewHarvestError(models.ErrCodeFetch, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, models.NewHarvestError(models.ErrCodeFetch, "read body", err)
	}

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 400 || !isHTMLContentType(ct) {
		return nil, models.NewHarvestError(models.ErrCodeFetch,
			fmt.Sprintf("unexpected response: status %d, content-type %q", resp.StatusCode, ct), nil)
	}

	return &Result{
		URL:          resp.Request.URL.String(),
		StatusCode:   resp.StatusCode,
		HTML:         body,
		Title:        extractTitle(body),
		NeedsBrowser: needsBrowser(body),
	}, nil
}

func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("fetch: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
