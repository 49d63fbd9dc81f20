package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultUserAgent is the desktop Chrome UA presented by the browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds all application configuration.
type Config struct {
	Browser   BrowserConfig
	Harvest   HarvestConfig
	Server    ServerConfig
	Viewer    ViewerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for the browser and the static fetcher.
	DefaultProxy string

	// UserAgent overrides the browser user agent.
	UserAgent string

	// Stealth injects navigator.webdriver masking before navigation.
	Stealth bool // default: true

	// BlockedResourceTypes lists resource types to block while harvesting.
	// default: ["Image", "Media", "Font"]
	BlockedResourceTypes []string

	// BlockAds drops requests to known ad/tracking hosts.
	BlockAds bool // default: true
}

// HarvestConfig controls the download-session controller.
type HarvestConfig struct {
	// URL is the research-data page to harvest.
	URL string

	// OutputDir is the browser download directory (the watched location).
	OutputDir string

	// PageLoadTimeout bounds navigation plus the initial settle scroll.
	PageLoadTimeout time.Duration // default: 30s

	// ActionTimeout is the per-browser-action deadline.
	ActionTimeout time.Duration // default: 10s

	// SettleDelay follows every scroll and every selection.
	SettleDelay time.Duration // default: 500ms

	// PollInterval is the download-directory polling tick.
	PollInterval time.Duration // default: 1s

	// DownloadTimeout bounds the wait for a new artifact per combination.
	DownloadTimeout time.Duration // default: 15s

	ComboPauseMin   time.Duration // default: 2s
	ComboPauseMax   time.Duration // default: 4s
	SectionPauseMin time.Duration // default: 5s
	SectionPauseMax time.Duration // default: 10s

	// MaxCombinations caps combinations per section. 0 means unlimited.
	MaxCombinations int

	// PartialSuffixes mark files that are still being written.
	PartialSuffixes []string
}

// ServerConfig controls the viewer HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// ViewerConfig controls the read-only CSV viewer.
type ViewerConfig struct {
	// DataDir is the directory whose CSV files are served.
	DataDir string // default: "zillow_data"

	// MaxPreviewRows caps the rows returned by the preview endpoint.
	MaxPreviewRows int // default: 100

	// SeriesCacheEntries bounds the series cache. 0 disables it.
	SeriesCacheEntries int // default: 64

	SeriesCacheTTL time.Duration // default: 10m
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// WebhookConfig controls the run-completed notification.
type WebhookConfig struct {
	// URL receives a POST when a run finishes. Empty disables delivery.
	URL string

	// Secret signs the payload with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:     envBoolOr("HARVEST_HEADLESS", true),
			NoSandbox:    envBoolOr("HARVEST_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("HARVEST_BROWSER_BIN"),
			DefaultProxy: os.Getenv("HARVEST_PROXY"),
			UserAgent:    envOr("HARVEST_USER_AGENT", DefaultUserAgent),
			Stealth:      envBoolOr("HARVEST_STEALTH", true),
			BlockedResourceTypes: envSliceOr("HARVEST_BLOCKED_RESOURCES", []string{
				"Image", "Media", "Font",
			}),
			BlockAds: envBoolOr("HARVEST_BLOCK_ADS", true),
		},
		Harvest: HarvestConfig{
			URL:             envOr("HARVEST_URL", "https://www.zillow.com/research/data/"),
			OutputDir:       envOr("HARVEST_OUTPUT_DIR", "zillow_data_complete"),
			PageLoadTimeout: envDurationOr("HARVEST_PAGE_LOAD_TIMEOUT", 30*time.Second),
			ActionTimeout:   envDurationOr("HARVEST_ACTION_TIMEOUT", 10*time.Second),
			SettleDelay:     envDurationOr("HARVEST_SETTLE_DELAY", 500*time.Millisecond),
			PollInterval:    envDurationOr("HARVEST_POLL_INTERVAL", time.Second),
			DownloadTimeout: envDurationOr("HARVEST_DOWNLOAD_TIMEOUT", 15*time.Second),
			ComboPauseMin:   envDurationOr("HARVEST_COMBO_PAUSE_MIN", 2*time.Second),
			ComboPauseMax:   envDurationOr("HARVEST_COMBO_PAUSE_MAX", 4*time.Second),
			SectionPauseMin: envDurationOr("HARVEST_SECTION_PAUSE_MIN", 5*time.Second),
			SectionPauseMax: envDurationOr("HARVEST_SECTION_PAUSE_MAX", 10*time.Second),
			MaxCombinations: envIntOr("HARVEST_MAX_COMBINATIONS", 0),
			PartialSuffixes: envSliceOr("HARVEST_PARTIAL_SUFFIXES", []string{
				".crdownload", ".tmp", ".part", ".download",
			}),
		},
		Server: ServerConfig{
			Host: envOr("HARVEST_HOST", "0.0.0.0"),
			Port: envIntOr("HARVEST_PORT", 8080),
			Mode: envOr("HARVEST_MODE", "release"),
		},
		Viewer: ViewerConfig{
			DataDir:            envOr("HARVEST_DATA_DIR", "zillow_data"),
			MaxPreviewRows:     envIntOr("HARVEST_MAX_PREVIEW_ROWS", 100),
			SeriesCacheEntries: envIntOr("HARVEST_SERIES_CACHE_ENTRIES", 64),
			SeriesCacheTTL:     envDurationOr("HARVEST_SERIES_CACHE_TTL", 10*time.Minute),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("HARVEST_AUTH_ENABLED", false),
			APIKeys: envSliceOr("HARVEST_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("HARVEST_RATE_RPS", 5.0),
			Burst:             envIntOr("HARVEST_RATE_BURST", 10),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("HARVEST_WEBHOOK_URL"),
			Secret: os.Getenv("HARVEST_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("HARVEST_LOG_LEVEL", "info"),
			Format: envOr("HARVEST_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
