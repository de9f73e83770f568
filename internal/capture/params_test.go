// internal/capture/params_test.go
package capture

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/pagesnap/pagesnap/internal/config"
)

func testCaptureConfig() config.CaptureConfig {
	return config.DefaultConfig(config.ProfileHardened).Capture
}

func TestParseRequestDefaults(t *testing.T) {
	q := url.Values{"url": {"https://example.com"}}
	cfg := testCaptureConfig()

	req, err := ParseRequest(q, cfg, NewURLValidator(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Width != cfg.DefaultWidth {
		t.Errorf("width = %d, want %d", req.Width, cfg.DefaultWidth)
	}
	if req.Height != cfg.DefaultHeight {
		t.Errorf("height = %d, want %d", req.Height, cfg.DefaultHeight)
	}
	if req.Format != Format(cfg.DefaultFormat) {
		t.Errorf("format = %s, want %s", req.Format, cfg.DefaultFormat)
	}
	if req.Quality != cfg.DefaultQuality {
		t.Errorf("quality = %d, want %d", req.Quality, cfg.DefaultQuality)
	}
	if req.Delay != 0 {
		t.Errorf("delay = %v, want 0", req.Delay)
	}
	if req.FullPage || req.Mobile || req.DarkMode {
		t.Error("boolean flags should default to false")
	}
}

func TestParseRequestExplicitValues(t *testing.T) {
	q := url.Values{
		"url":      {"https://example.com/page"},
		"width":    {"800"},
		"height":   {"600"},
		"format":   {"JPEG"},
		"quality":  {"55"},
		"delay":    {"1500"},
		"fullPage": {"TRUE"},
		"mobile":   {"true"},
		"darkMode": {"false"},
		"selector": {" #main "},
	}

	req, err := ParseRequest(q, testCaptureConfig(), NewURLValidator(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Width != 800 || req.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600", req.Width, req.Height)
	}
	if req.Format != FormatJPEG {
		t.Errorf("format = %s, want jpeg", req.Format)
	}
	if req.Quality != 55 {
		t.Errorf("quality = %d, want 55", req.Quality)
	}
	if req.Delay != 1500*time.Millisecond {
		t.Errorf("delay = %v, want 1.5s", req.Delay)
	}
	if !req.FullPage || !req.Mobile || req.DarkMode {
		t.Errorf("flags = fullPage:%v mobile:%v darkMode:%v", req.FullPage, req.Mobile, req.DarkMode)
	}
	if req.Selector != "#main" {
		t.Errorf("selector = %q, want #main", req.Selector)
	}
}

func TestParseRequestRejections(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{"width below minimum", "width", "50", "width"},
		{"width above maximum", "width", "99999", "width"},
		{"width not an integer", "width", "wide", "width"},
		{"height above maximum", "height", "4000", "height"},
		{"quality zero", "quality", "0", "quality"},
		{"quality above 100", "quality", "101", "quality"},
		{"delay negative", "delay", "-1", "delay"},
		{"delay above maximum", "delay", "60000", "delay"},
		{"format unknown", "format", "gif", "format"},
		{"fullPage not boolean", "fullPage", "yes", "fullPage"},
		{"mobile numeric", "mobile", "1", "mobile"},
		{"darkMode garbage", "darkMode", "dark", "darkMode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{"url": {"https://example.com"}, tt.key: {tt.value}}

			_, err := ParseRequest(q, testCaptureConfig(), NewURLValidator(true))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var pe *ParamError
			if !errors.As(err, &pe) {
				t.Fatalf("error type = %T, want *ParamError", err)
			}
			if pe.Field != tt.field {
				t.Errorf("field = %s, want %s", pe.Field, tt.field)
			}
		})
	}
}

func TestParseRequestURLCheckedFirst(t *testing.T) {
	// A bad URL must be reported even when other parameters are also
	// invalid.
	q := url.Values{"url": {"ftp://example.com"}, "width": {"nope"}}

	_, err := ParseRequest(q, testCaptureConfig(), NewURLValidator(true))

	var ue *URLError
	if !errors.As(err, &ue) {
		t.Fatalf("error type = %T, want *URLError", err)
	}
}
