// internal/capture/urlcheck.go
package capture

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// URLRule identifies which URL policy rule a target violated.
type URLRule string

const (
	RuleMissing           URLRule = "missing"
	RuleMalformed         URLRule = "malformed"
	RuleDisallowedScheme  URLRule = "disallowed-scheme"
	RuleDisallowedHost    URLRule = "disallowed-host"
	RuleSuspiciousPattern URLRule = "suspicious-pattern"
)

// URLError reports a target URL rejected by policy, carrying the
// specific rule violated.
type URLError struct {
	Rule    URLRule
	Value   string
	Message string
}

func (e *URLError) Error() string {
	return fmt.Sprintf("invalid url %q (%s): %s", e.Value, e.Rule, e.Message)
}

func urlError(rule URLRule, value, message string) *URLError {
	return &URLError{Rule: rule, Value: value, Message: message}
}

// Scheme tokens that must never appear anywhere in a target URL,
// regardless of profile.
var dangerousSchemeTokens = []string{
	"javascript:",
	"data:",
	"file:",
	"vbscript:",
}

// URLValidator checks target URLs against the active profile policy.
// It is a pure lexical check: hostnames are matched as text, never
// resolved, so a private IP behind a public DNS name is not caught
// here.
type URLValidator struct {
	blockPrivateHosts bool
}

// NewURLValidator builds a validator. Hardened deployments block
// loopback, link-local and RFC1918 targets.
func NewURLValidator(hardened bool) *URLValidator {
	return &URLValidator{blockPrivateHosts: hardened}
}

// Validate returns nil when raw is an acceptable capture target, or a
// *URLError naming the violated rule.
func (v *URLValidator) Validate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return urlError(RuleMissing, raw, "url parameter is required")
	}

	// Dangerous scheme tokens are rejected wherever they occur in the
	// string, before any other classification, so javascript: targets
	// report suspicious-pattern rather than disallowed-scheme.
	lower := strings.ToLower(raw)
	for _, token := range dangerousSchemeTokens {
		if strings.Contains(lower, token) {
			return urlError(RuleSuspiciousPattern, raw,
				fmt.Sprintf("embedded %s scheme is not allowed", strings.TrimSuffix(token, ":")))
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return urlError(RuleMalformed, raw, "not a parseable absolute URI")
	}
	if u.Scheme == "" || u.Host == "" {
		return urlError(RuleMalformed, raw, "must be an absolute URI with scheme and host")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return urlError(RuleDisallowedScheme, raw,
			fmt.Sprintf("scheme %q is not allowed (http and https only)", u.Scheme))
	}

	if v.blockPrivateHosts {
		if err := checkHost(u.Hostname(), raw); err != nil {
			return err
		}
	}

	return nil
}

// checkHost rejects literal hostnames and IP addresses that point at
// loopback, link-local, unspecified or RFC1918 private space.
func checkHost(host, raw string) error {
	h := strings.ToLower(strings.TrimSuffix(host, "."))

	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return urlError(RuleDisallowedHost, raw, "loopback host is not allowed")
	}

	ip := net.ParseIP(h)
	if ip == nil {
		return nil
	}

	switch {
	case ip.IsLoopback():
		return urlError(RuleDisallowedHost, raw, "loopback address is not allowed")
	case ip.IsUnspecified():
		return urlError(RuleDisallowedHost, raw, "unspecified address is not allowed")
	case ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast():
		return urlError(RuleDisallowedHost, raw, "link-local address is not allowed")
	case ip.IsPrivate():
		return urlError(RuleDisallowedHost, raw, "private address is not allowed")
	}

	return nil
}
