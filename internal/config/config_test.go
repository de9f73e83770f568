// internal/config/config_test.go
package config

import (
	"os"
	"strings"
	"testing"
)

func TestDefaultConfigProfiles(t *testing.T) {
	hardened := DefaultConfig(ProfileHardened)
	if hardened.Capture.MaxWidth != 1920 || hardened.Capture.MaxHeight != 1080 {
		t.Errorf("hardened bounds = %dx%d, want 1920x1080",
			hardened.Capture.MaxWidth, hardened.Capture.MaxHeight)
	}

	permissive := DefaultConfig(ProfilePermissive)
	if permissive.Capture.MaxWidth != 3840 || permissive.Capture.MaxHeight != 2160 {
		t.Errorf("permissive bounds = %dx%d, want 3840x2160",
			permissive.Capture.MaxWidth, permissive.Capture.MaxHeight)
	}

	for _, cfg := range []*ServiceConfig{hardened, permissive} {
		if err := cfg.Validate(); err != nil {
			t.Errorf("default %s config does not validate: %v", cfg.Profile, err)
		}
	}
}

func TestSetProfileRederivesBounds(t *testing.T) {
	cfg := DefaultConfig(ProfileHardened)
	cfg.SetProfile(ProfilePermissive)

	if cfg.Profile != ProfilePermissive {
		t.Errorf("profile = %q, want permissive", cfg.Profile)
	}
	if cfg.Capture.MaxWidth != 3840 || cfg.Capture.MaxHeight != 2160 {
		t.Errorf("bounds after switch = %dx%d, want 3840x2160",
			cfg.Capture.MaxWidth, cfg.Capture.MaxHeight)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("switched config does not validate: %v", err)
	}

	narrowed := DefaultConfig(ProfileHardened)
	narrowed.Capture.MaxWidth = 1280
	narrowed.Capture.MaxHeight = 720
	narrowed.SetProfile(ProfilePermissive)
	if narrowed.Capture.MaxWidth != 1280 || narrowed.Capture.MaxHeight != 720 {
		t.Errorf("explicit bounds changed to %dx%d, want 1280x720 kept",
			narrowed.Capture.MaxWidth, narrowed.Capture.MaxHeight)
	}
}

func TestLoadFromBytes(t *testing.T) {
	yaml := `
profile: permissive
log_level: debug
server:
  listen_address: ":9000"
capture:
  default_width: 1920
  default_height: 1080
rate_limit:
  enabled: true
  requests_per_second: 2
  burst: 10
`
	cfg, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if cfg.Profile != ProfilePermissive {
		t.Errorf("profile = %q, want permissive", cfg.Profile)
	}
	if cfg.Server.ListenAddress != ":9000" {
		t.Errorf("listen address = %q, want :9000", cfg.Server.ListenAddress)
	}
	if cfg.Capture.DefaultWidth != 1920 {
		t.Errorf("default width = %d, want 1920", cfg.Capture.DefaultWidth)
	}
	// Unset fields come from profile defaults.
	if cfg.Capture.RequestTimeoutMs != 30000 {
		t.Errorf("request timeout = %d, want default 30000", cfg.Capture.RequestTimeoutMs)
	}
	if cfg.Capture.MaxWidth != 3840 {
		t.Errorf("max width = %d, want permissive default 3840", cfg.Capture.MaxWidth)
	}
}

func TestLoadFromBytesEnvExpansion(t *testing.T) {
	os.Setenv("PAGESNAP_TEST_ADDR", ":7777")
	defer os.Unsetenv("PAGESNAP_TEST_ADDR")

	cfg, err := LoadFromBytes([]byte("server:\n  listen_address: \"${PAGESNAP_TEST_ADDR}\"\n"))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if cfg.Server.ListenAddress != ":7777" {
		t.Errorf("listen address = %q, want expanded :7777", cfg.Server.ListenAddress)
	}
}

func TestValidateTimeoutNesting(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServiceConfig)
		errSub string
	}{
		{
			name:   "launch above page",
			mutate: func(c *ServiceConfig) { c.Capture.LaunchTimeoutMs = c.Capture.PageTimeoutMs + 1 },
			errSub: "launch timeout",
		},
		{
			name:   "page above request",
			mutate: func(c *ServiceConfig) { c.Capture.PageTimeoutMs = c.Capture.RequestTimeoutMs + 1 },
			errSub: "page timeout",
		},
		{
			name:   "navigation above page",
			mutate: func(c *ServiceConfig) { c.Capture.NavigationTimeoutMs = c.Capture.PageTimeoutMs + 1 },
			errSub: "navigation timeout",
		},
		{
			name:   "fallback above navigation",
			mutate: func(c *ServiceConfig) { c.Capture.FallbackTimeoutMs = c.Capture.NavigationTimeoutMs + 1 },
			errSub: "fallback timeout",
		},
		{
			name:   "delay swallows request budget",
			mutate: func(c *ServiceConfig) { c.Capture.MaxDelayMs = c.Capture.RequestTimeoutMs },
			errSub: "max delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(ProfileHardened)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q does not mention %q", err, tt.errSub)
			}
		})
	}
}

func TestValidateRejectsUnknownProfile(t *testing.T) {
	cfg := DefaultConfig(ProfileHardened)
	cfg.Profile = "paranoid"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestValidateHistory(t *testing.T) {
	cfg := DefaultConfig(ProfileHardened)
	cfg.History.Enabled = true
	cfg.History.DSN = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for history without dsn")
	}

	cfg.History.DSN = "captures.db"
	cfg.History.Driver = "oracle"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown history driver")
	}

	cfg.History.Driver = "sqlite"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid history config rejected: %v", err)
	}
}
