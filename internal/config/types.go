// internal/config/types.go
package config

import "time"

// Profile selects the bounds and policies governing validation and
// navigation. Hardened deployments block private targets and hide raw
// error detail; permissive deployments widen the viewport bounds and
// accept internal hosts.
type Profile string

const (
	ProfileHardened   Profile = "hardened"
	ProfilePermissive Profile = "permissive"
)

// ServiceConfig is the root configuration for the capture service.
type ServiceConfig struct {
	Name      string          `yaml:"name" json:"name"`
	Profile   Profile         `yaml:"profile" json:"profile"`
	LogLevel  string          `yaml:"log_level" json:"log_level"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Capture   CaptureConfig   `yaml:"capture" json:"capture"`
	Browser   BrowserConfig   `yaml:"browser" json:"browser"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	History   HistoryConfig   `yaml:"history" json:"history"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddress  string `yaml:"listen_address" json:"listen_address"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms" json:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms" json:"write_timeout_ms"`
	IdleTimeoutMs  int    `yaml:"idle_timeout_ms" json:"idle_timeout_ms"`
	EnableCORS     bool   `yaml:"enable_cors" json:"enable_cors"`
}

// CaptureConfig carries the per-profile bounds and the nested timeout
// budgets of the capture pipeline. All timeouts are milliseconds; the
// nesting invariant launch < page < request is enforced by Validate.
type CaptureConfig struct {
	MinWidth  int `yaml:"min_width" json:"min_width"`
	MaxWidth  int `yaml:"max_width" json:"max_width"`
	MinHeight int `yaml:"min_height" json:"min_height"`
	MaxHeight int `yaml:"max_height" json:"max_height"`

	DefaultWidth   int    `yaml:"default_width" json:"default_width"`
	DefaultHeight  int    `yaml:"default_height" json:"default_height"`
	DefaultFormat  string `yaml:"default_format" json:"default_format"`
	DefaultQuality int    `yaml:"default_quality" json:"default_quality"`

	MaxDelayMs          int `yaml:"max_delay_ms" json:"max_delay_ms"`
	LaunchTimeoutMs     int `yaml:"launch_timeout_ms" json:"launch_timeout_ms"`
	NavigationTimeoutMs int `yaml:"navigation_timeout_ms" json:"navigation_timeout_ms"`
	FallbackTimeoutMs   int `yaml:"fallback_timeout_ms" json:"fallback_timeout_ms"`
	SelectorTimeoutMs   int `yaml:"selector_timeout_ms" json:"selector_timeout_ms"`
	PageTimeoutMs       int `yaml:"page_timeout_ms" json:"page_timeout_ms"`
	RequestTimeoutMs    int `yaml:"request_timeout_ms" json:"request_timeout_ms"`

	BlockFonts     bool     `yaml:"block_fonts" json:"block_fonts"`
	BlockMedia     bool     `yaml:"block_media" json:"block_media"`
	BlockedDomains []string `yaml:"blocked_domains,omitempty" json:"blocked_domains,omitempty"`

	ExtractTitle bool `yaml:"extract_title" json:"extract_title"`
}

// BrowserConfig is environment policy for locating and launching the
// headless browser. It is not part of the pipeline algorithm.
type BrowserConfig struct {
	ExecPath        string   `yaml:"exec_path,omitempty" json:"exec_path,omitempty"`
	NoSandbox       bool     `yaml:"no_sandbox" json:"no_sandbox"`
	DisableGPU      bool     `yaml:"disable_gpu" json:"disable_gpu"`
	UserAgent       string   `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	MobileUserAgent string   `yaml:"mobile_user_agent,omitempty" json:"mobile_user_agent,omitempty"`
	ExtraFlags      []string `yaml:"extra_flags,omitempty" json:"extra_flags,omitempty"`
}

// RateLimitConfig configures the per-client admission limiter in front
// of the capture endpoint. Health, docs and metrics are exempt.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" json:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// HistoryConfig configures the optional capture-history store. Only
// request metadata is recorded, never image bytes.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Driver  string `yaml:"driver,omitempty" json:"driver,omitempty"`
	DSN     string `yaml:"dsn,omitempty" json:"dsn,omitempty"`
	Table   string `yaml:"table,omitempty" json:"table,omitempty"`
}

// Duration accessors. Config files carry millisecond integers; the rest
// of the code works in time.Duration.

func (c CaptureConfig) MaxDelay() time.Duration          { return ms(c.MaxDelayMs) }
func (c CaptureConfig) LaunchTimeout() time.Duration     { return ms(c.LaunchTimeoutMs) }
func (c CaptureConfig) NavigationTimeout() time.Duration { return ms(c.NavigationTimeoutMs) }
func (c CaptureConfig) FallbackTimeout() time.Duration   { return ms(c.FallbackTimeoutMs) }
func (c CaptureConfig) SelectorTimeout() time.Duration   { return ms(c.SelectorTimeoutMs) }
func (c CaptureConfig) PageTimeout() time.Duration       { return ms(c.PageTimeoutMs) }
func (c CaptureConfig) RequestTimeout() time.Duration    { return ms(c.RequestTimeoutMs) }

func (c ServerConfig) ReadTimeout() time.Duration  { return ms(c.ReadTimeoutMs) }
func (c ServerConfig) WriteTimeout() time.Duration { return ms(c.WriteTimeoutMs) }
func (c ServerConfig) IdleTimeout() time.Duration  { return ms(c.IdleTimeoutMs) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// Hardened reports whether the hardened profile is active.
func (sc *ServiceConfig) Hardened() bool {
	return sc.Profile == ProfileHardened
}
