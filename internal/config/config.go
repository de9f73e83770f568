// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default viewport bounds per profile. The two observed policy variants
// (1920x1080 ceiling vs. 3840x2160) are both kept and selected by the
// deployment profile rather than merged.
const (
	hardenedMaxWidth    = 1920
	hardenedMaxHeight   = 1080
	permissiveMaxWidth  = 3840
	permissiveMaxHeight = 2160
	minViewportEdge     = 100
)

// DefaultConfig returns a complete configuration for the given profile.
func DefaultConfig(profile Profile) *ServiceConfig {
	cfg := &ServiceConfig{
		Name:     "pagesnap",
		Profile:  profile,
		LogLevel: "info",
		Server: ServerConfig{
			ListenAddress:  ":8080",
			ReadTimeoutMs:  10000,
			WriteTimeoutMs: 60000,
			IdleTimeoutMs:  120000,
			EnableCORS:     true,
		},
		Capture: CaptureConfig{
			MinWidth:  minViewportEdge,
			MaxWidth:  hardenedMaxWidth,
			MinHeight: minViewportEdge,
			MaxHeight: hardenedMaxHeight,

			DefaultWidth:   1280,
			DefaultHeight:  720,
			DefaultFormat:  "png",
			DefaultQuality: 80,

			MaxDelayMs:          10000,
			LaunchTimeoutMs:     10000,
			NavigationTimeoutMs: 15000,
			FallbackTimeoutMs:   8000,
			SelectorTimeoutMs:   5000,
			PageTimeoutMs:       25000,
			RequestTimeoutMs:    30000,

			BlockFonts: true,
			BlockMedia: true,
			BlockedDomains: []string{
				"doubleclick.net",
				"googlesyndication.com",
				"google-analytics.com",
				"googletagmanager.com",
				"adsystem.com",
				"facebook.net",
				"hotjar.com",
			},
		},
		Browser: BrowserConfig{
			NoSandbox:  true,
			DisableGPU: true,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 1,
			Burst:             5,
		},
		History: HistoryConfig{
			Enabled: false,
			Driver:  "sqlite",
			Table:   "captures",
		},
	}

	if profile == ProfilePermissive {
		cfg.Capture.MaxWidth = permissiveMaxWidth
		cfg.Capture.MaxHeight = permissiveMaxHeight
	}

	return cfg
}

// SetProfile switches the deployment profile. Viewport ceilings that
// still carry the previous profile's defaults are re-derived for the
// new profile; explicitly narrowed bounds are kept.
func (sc *ServiceConfig) SetProfile(profile Profile) {
	prev := DefaultConfig(sc.Profile)
	next := DefaultConfig(profile)

	sc.Profile = profile
	if sc.Capture.MaxWidth == prev.Capture.MaxWidth && sc.Capture.MaxHeight == prev.Capture.MaxHeight {
		sc.Capture.MaxWidth = next.Capture.MaxWidth
		sc.Capture.MaxHeight = next.Capture.MaxHeight
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(filename string) (*ServiceConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. Environment
// variables are substituted before parsing, defaults are applied for
// unset fields, and the result is validated.
func LoadFromBytes(data []byte) (*ServiceConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expanded := os.ExpandEnv(string(data))

	var config ServiceConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*ServiceConfig, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}

	return LoadFromBytes(data)
}

// applyDefaults fills unset fields from the profile defaults.
func applyDefaults(config *ServiceConfig) {
	if config.Profile == "" {
		config.Profile = ProfileHardened
	}

	def := DefaultConfig(config.Profile)

	if config.Name == "" {
		config.Name = def.Name
	}
	if config.LogLevel == "" {
		config.LogLevel = def.LogLevel
	}

	if config.Server.ListenAddress == "" {
		config.Server.ListenAddress = def.Server.ListenAddress
	}
	if config.Server.ReadTimeoutMs == 0 {
		config.Server.ReadTimeoutMs = def.Server.ReadTimeoutMs
	}
	if config.Server.WriteTimeoutMs == 0 {
		config.Server.WriteTimeoutMs = def.Server.WriteTimeoutMs
	}
	if config.Server.IdleTimeoutMs == 0 {
		config.Server.IdleTimeoutMs = def.Server.IdleTimeoutMs
	}

	c := &config.Capture
	d := def.Capture
	if c.MinWidth == 0 {
		c.MinWidth = d.MinWidth
	}
	if c.MaxWidth == 0 {
		c.MaxWidth = d.MaxWidth
	}
	if c.MinHeight == 0 {
		c.MinHeight = d.MinHeight
	}
	if c.MaxHeight == 0 {
		c.MaxHeight = d.MaxHeight
	}
	if c.DefaultWidth == 0 {
		c.DefaultWidth = d.DefaultWidth
	}
	if c.DefaultHeight == 0 {
		c.DefaultHeight = d.DefaultHeight
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = d.DefaultFormat
	}
	if c.DefaultQuality == 0 {
		c.DefaultQuality = d.DefaultQuality
	}
	if c.MaxDelayMs == 0 {
		c.MaxDelayMs = d.MaxDelayMs
	}
	if c.LaunchTimeoutMs == 0 {
		c.LaunchTimeoutMs = d.LaunchTimeoutMs
	}
	if c.NavigationTimeoutMs == 0 {
		c.NavigationTimeoutMs = d.NavigationTimeoutMs
	}
	if c.FallbackTimeoutMs == 0 {
		c.FallbackTimeoutMs = d.FallbackTimeoutMs
	}
	if c.SelectorTimeoutMs == 0 {
		c.SelectorTimeoutMs = d.SelectorTimeoutMs
	}
	if c.PageTimeoutMs == 0 {
		c.PageTimeoutMs = d.PageTimeoutMs
	}
	if c.RequestTimeoutMs == 0 {
		c.RequestTimeoutMs = d.RequestTimeoutMs
	}
	if c.BlockedDomains == nil {
		c.BlockedDomains = d.BlockedDomains
	}

	if config.RateLimit.RequestsPerSecond == 0 {
		config.RateLimit.RequestsPerSecond = def.RateLimit.RequestsPerSecond
	}
	if config.RateLimit.Burst == 0 {
		config.RateLimit.Burst = def.RateLimit.Burst
	}

	if config.History.Driver == "" {
		config.History.Driver = def.History.Driver
	}
	if config.History.Table == "" {
		config.History.Table = def.History.Table
	}
}

// Validate checks configuration consistency, in particular the nested
// timeout budget invariant: launch < page < request, with the
// navigation, fallback and selector waits fitting inside the page
// budget.
func (sc *ServiceConfig) Validate() error {
	switch sc.Profile {
	case ProfileHardened, ProfilePermissive:
	default:
		return fmt.Errorf("unknown profile %q (must be hardened or permissive)", sc.Profile)
	}

	switch strings.ToLower(sc.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", sc.LogLevel)
	}

	c := sc.Capture
	if c.MinWidth <= 0 || c.MinHeight <= 0 {
		return fmt.Errorf("viewport minimums must be positive (got %dx%d)", c.MinWidth, c.MinHeight)
	}
	if c.MaxWidth < c.MinWidth || c.MaxHeight < c.MinHeight {
		return fmt.Errorf("viewport maximums %dx%d below minimums %dx%d",
			c.MaxWidth, c.MaxHeight, c.MinWidth, c.MinHeight)
	}
	if c.DefaultWidth < c.MinWidth || c.DefaultWidth > c.MaxWidth {
		return fmt.Errorf("default width %d outside [%d,%d]", c.DefaultWidth, c.MinWidth, c.MaxWidth)
	}
	if c.DefaultHeight < c.MinHeight || c.DefaultHeight > c.MaxHeight {
		return fmt.Errorf("default height %d outside [%d,%d]", c.DefaultHeight, c.MinHeight, c.MaxHeight)
	}

	switch c.DefaultFormat {
	case "png", "jpeg", "webp":
	default:
		return fmt.Errorf("default format %q is not one of png, jpeg, webp", c.DefaultFormat)
	}
	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return fmt.Errorf("default quality %d outside [1,100]", c.DefaultQuality)
	}

	if c.LaunchTimeoutMs <= 0 || c.PageTimeoutMs <= 0 || c.RequestTimeoutMs <= 0 {
		return fmt.Errorf("timeout budgets must be positive")
	}
	if c.LaunchTimeoutMs >= c.PageTimeoutMs {
		return fmt.Errorf("launch timeout %dms must be below page timeout %dms",
			c.LaunchTimeoutMs, c.PageTimeoutMs)
	}
	if c.PageTimeoutMs >= c.RequestTimeoutMs {
		return fmt.Errorf("page timeout %dms must be below request timeout %dms",
			c.PageTimeoutMs, c.RequestTimeoutMs)
	}
	if c.NavigationTimeoutMs <= 0 || c.NavigationTimeoutMs > c.PageTimeoutMs {
		return fmt.Errorf("navigation timeout %dms must fit inside page timeout %dms",
			c.NavigationTimeoutMs, c.PageTimeoutMs)
	}
	if c.FallbackTimeoutMs <= 0 || c.FallbackTimeoutMs > c.NavigationTimeoutMs {
		return fmt.Errorf("fallback timeout %dms must not exceed navigation timeout %dms",
			c.FallbackTimeoutMs, c.NavigationTimeoutMs)
	}
	if c.SelectorTimeoutMs <= 0 || c.SelectorTimeoutMs > c.PageTimeoutMs {
		return fmt.Errorf("selector timeout %dms must fit inside page timeout %dms",
			c.SelectorTimeoutMs, c.PageTimeoutMs)
	}
	if c.MaxDelayMs < 0 || c.MaxDelayMs >= c.RequestTimeoutMs {
		return fmt.Errorf("max delay %dms must stay inside the request budget %dms",
			c.MaxDelayMs, c.RequestTimeoutMs)
	}

	if sc.RateLimit.Enabled {
		if sc.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate limit requests_per_second must be positive")
		}
		if sc.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit burst must be positive")
		}
	}

	if sc.History.Enabled {
		switch sc.History.Driver {
		case "sqlite", "postgres", "mysql":
		default:
			return fmt.Errorf("unknown history driver %q", sc.History.Driver)
		}
		if sc.History.DSN == "" {
			return fmt.Errorf("history is enabled but dsn is empty")
		}
	}

	return nil
}
