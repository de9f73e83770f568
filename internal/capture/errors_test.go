// internal/capture/errors_test.go
package capture

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestClassifyTaxonomy(t *testing.T) {
	c := NewClassifier(true)

	tests := []struct {
		name   string
		err    error
		stage  Stage
		status int
		kind   Kind
	}{
		{
			"parameter error",
			paramErrorf("width", "abc", "must be an integer"),
			StageValidate, http.StatusBadRequest, KindInvalidParameter,
		},
		{
			"url error",
			urlError(RuleDisallowedHost, "http://localhost", "loopback host is not allowed"),
			StageValidate, http.StatusBadRequest, KindInvalidURL,
		},
		{
			"element not found",
			&ElementNotFoundError{Selector: "#missing"},
			StageCapture, http.StatusNotFound, KindElementNotFound,
		},
		{
			"wrapped element not found",
			fmt.Errorf("capture: %w", &ElementNotFoundError{Selector: ".x"}),
			StageCapture, http.StatusNotFound, KindElementNotFound,
		},
		{
			"deadline during launch",
			fmt.Errorf("browser launch failed: %w", context.DeadlineExceeded),
			StageLaunch, http.StatusRequestTimeout, KindLaunchTimeout,
		},
		{
			"deadline during navigation",
			context.DeadlineExceeded,
			StageNavigate, http.StatusRequestTimeout, KindNavigationTimeout,
		},
		{
			"deadline during capture",
			context.DeadlineExceeded,
			StageCapture, http.StatusRequestTimeout, KindNavigationTimeout,
		},
		{
			"dns failure",
			errors.New("page load error net::ERR_NAME_NOT_RESOLVED"),
			StageNavigate, http.StatusBadRequest, KindUnreachableHost,
		},
		{
			"connection refused",
			errors.New("page load error net::ERR_CONNECTION_REFUSED"),
			StageNavigate, http.StatusBadRequest, KindUnreachableHost,
		},
		{
			"redirect loop",
			errors.New("page load error net::ERR_TOO_MANY_REDIRECTS"),
			StageNavigate, http.StatusBadRequest, KindTooManyRedirects,
		},
		{
			"blocked by response",
			errors.New("page load error net::ERR_BLOCKED_BY_RESPONSE"),
			StageNavigate, http.StatusForbidden, KindBlockedByTarget,
		},
		{
			"unknown failure",
			errors.New("websocket closed unexpectedly"),
			StageCapture, http.StatusInternalServerError, KindUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := c.Classify(tt.err, tt.stage)

			if ce.Status != tt.status {
				t.Errorf("status = %d, want %d", ce.Status, tt.status)
			}
			if ce.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", ce.Kind, tt.kind)
			}
			if !errors.Is(ce, tt.err) && ce.Cause == nil {
				t.Error("cause was dropped during classification")
			}
		})
	}
}

func TestClassifyURLRulePropagates(t *testing.T) {
	c := NewClassifier(true)

	ce := c.Classify(urlError(RuleSuspiciousPattern, "javascript:alert(1)", "embedded javascript scheme is not allowed"), StageValidate)

	if ce.Rule != RuleSuspiciousPattern {
		t.Errorf("rule = %s, want %s", ce.Rule, RuleSuspiciousPattern)
	}
	if ce.Value != "javascript:alert(1)" {
		t.Errorf("value = %q, want the offending url", ce.Value)
	}
}

func TestClassifyHardenedMasksInternalDetail(t *testing.T) {
	raw := errors.New("chrome crashed: signal SIGSEGV at /usr/lib/chromium")

	hardened := NewClassifier(true).Classify(raw, StageCapture)
	if strings.Contains(hardened.Message, "SIGSEGV") {
		t.Errorf("hardened message leaks internals: %q", hardened.Message)
	}
	if hardened.Cause == nil {
		t.Error("hardened classification must keep the cause for logging")
	}

	permissive := NewClassifier(false).Classify(raw, StageCapture)
	if !strings.Contains(permissive.Message, "SIGSEGV") {
		t.Errorf("permissive message should carry detail, got %q", permissive.Message)
	}
}
