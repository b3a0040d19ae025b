// Load envs from .env
// Validate settings
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EngineChromium = "chromium"
	EngineFirefox  = "firefox"
)

// Settings holds the environment-derived runtime configuration. It is read
// once at startup and never mutated afterwards.
type Settings struct {
	//Browser
	BrowserEngine  string
	Headless       bool
	BrowserTimeout float64 //seconds
	WindowWidth    int
	WindowHeight   int
	ChromiumPath   string
	FirefoxPath    string
	UserAgent      string

	//Orchestration
	MaxConcurrentScrapers int

	//Paths
	ResultsPath string
	CachePath   string

	//Reporting (optional)
	TelegramToken  string
	TelegramChatID int64
}

// LoadSettings reads settings from the environment, applying defaults and
// failing on values that cannot be used.
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		BrowserEngine:         envOr("BROWSER_ENGINE", EngineChromium),
		Headless:              true,
		BrowserTimeout:        30,
		WindowWidth:           1920,
		WindowHeight:          1080,
		ChromiumPath:          os.Getenv("CHROMIUM_BINARY_PATH"),
		FirefoxPath:           os.Getenv("FIREFOX_BINARY_PATH"),
		UserAgent:             envOr("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"),
		MaxConcurrentScrapers: 3,
		ResultsPath:           envOr("RESULTS_PATH", "results"),
		CachePath:             envOr("CACHE_PATH", ".cache"),
		TelegramToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	s.BrowserEngine = strings.ToLower(s.BrowserEngine)
	if s.BrowserEngine != EngineChromium && s.BrowserEngine != EngineFirefox {
		return nil, fmt.Errorf("unsupported BROWSER_ENGINE %q (chromium or firefox)", s.BrowserEngine)
	}

	if v := os.Getenv("BROWSER_HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BROWSER_HEADLESS: %w", err)
		}
		s.Headless = headless
	}

	if v := os.Getenv("BROWSER_TIMEOUT_SECONDS"); v != "" {
		timeout, err := strconv.ParseFloat(v, 64)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("invalid BROWSER_TIMEOUT_SECONDS %q", v)
		}
		s.BrowserTimeout = timeout
	}

	if v := os.Getenv("BROWSER_WINDOW_SIZE"); v != "" {
		w, h, err := parseWindowSize(v)
		if err != nil {
			return nil, err
		}
		s.WindowWidth, s.WindowHeight = w, h
	}

	if v := os.Getenv("MAX_CONCURRENT_SCRAPERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("MAX_CONCURRENT_SCRAPERS must be a positive integer, got %q", v)
		}
		s.MaxConcurrentScrapers = n
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		s.TelegramChatID = id
	}

	return s, nil
}

// parseWindowSize parses "1920x1080" style values.
func parseWindowSize(v string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(v), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid BROWSER_WINDOW_SIZE %q, expected WIDTHxHEIGHT", v)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid window width in %q", v)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid window height in %q", v)
	}
	return w, h, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
