// internal/capture/params.go
package capture

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pagesnap/pagesnap/internal/config"
)

// ParamError reports a query parameter that failed bounds or syntax
// validation. It carries the offending field and the received value.
type ParamError struct {
	Field   string
	Value   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Field, e.Value, e.Message)
}

func paramErrorf(field, value, format string, args ...interface{}) *ParamError {
	return &ParamError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// ParseRequest builds a validated Request from raw query values. Bounds
// come from the capture configuration; the URL policy comes from the
// supplied validator. No I/O is performed. On failure the returned
// error is a *ParamError or *URLError describing the first violation.
func ParseRequest(q url.Values, cfg config.CaptureConfig, urls *URLValidator) (*Request, error) {
	rawURL := q.Get("url")
	if err := urls.Validate(rawURL); err != nil {
		return nil, err
	}

	width, err := parseBoundedInt(q, "width", cfg.DefaultWidth, cfg.MinWidth, cfg.MaxWidth)
	if err != nil {
		return nil, err
	}
	height, err := parseBoundedInt(q, "height", cfg.DefaultHeight, cfg.MinHeight, cfg.MaxHeight)
	if err != nil {
		return nil, err
	}

	format := Format(strings.ToLower(strings.TrimSpace(q.Get("format"))))
	if format == "" {
		format = Format(cfg.DefaultFormat)
	}
	if !format.IsValid() {
		return nil, paramErrorf("format", q.Get("format"),
			"must be one of png, jpeg, webp")
	}

	quality, err := parseBoundedInt(q, "quality", cfg.DefaultQuality, 1, 100)
	if err != nil {
		return nil, err
	}

	delayMs, err := parseBoundedInt(q, "delay", 0, 0, cfg.MaxDelayMs)
	if err != nil {
		return nil, err
	}

	fullPage, err := parseStrictBool(q, "fullPage")
	if err != nil {
		return nil, err
	}
	mobile, err := parseStrictBool(q, "mobile")
	if err != nil {
		return nil, err
	}
	darkMode, err := parseStrictBool(q, "darkMode")
	if err != nil {
		return nil, err
	}

	return &Request{
		URL:      rawURL,
		Width:    width,
		Height:   height,
		Format:   format,
		Quality:  quality,
		Delay:    time.Duration(delayMs) * time.Millisecond,
		FullPage: fullPage,
		Mobile:   mobile,
		DarkMode: darkMode,
		Selector: strings.TrimSpace(q.Get("selector")),
	}, nil
}

// parseBoundedInt parses an optional integer parameter and checks it
// against an inclusive range.
func parseBoundedInt(q url.Values, field string, def, min, max int) (int, error) {
	raw := q.Get(field)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, paramErrorf(field, raw, "must be an integer")
	}
	if v < min || v > max {
		return 0, paramErrorf(field, raw, "must be between %d and %d", min, max)
	}
	return v, nil
}

// parseStrictBool accepts only the literal tokens true/false,
// case-insensitive. Any other token is a validation failure, never a
// silent default.
func parseStrictBool(q url.Values, field string) (bool, error) {
	raw := q.Get(field)
	if raw == "" {
		return false, nil
	}

	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, paramErrorf(field, raw, "must be true or false")
}
