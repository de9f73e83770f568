// internal/capture/errors.go
package capture

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Kind is a stable error category, independent of status code wording.
type Kind string

const (
	KindInvalidParameter  Kind = "invalid_parameter"
	KindInvalidURL        Kind = "invalid_url"
	KindLaunchTimeout     Kind = "launch_timeout"
	KindNavigationTimeout Kind = "navigation_timeout"
	KindElementNotFound   Kind = "element_not_found"
	KindUnreachableHost   Kind = "unreachable_host"
	KindTooManyRedirects  Kind = "too_many_redirects"
	KindBlockedByTarget   Kind = "blocked_by_target"
	KindUnclassified      Kind = "internal_error"
)

// Stage tells the classifier where in the pipeline a failure surfaced,
// so that a deadline hit during launch is reported differently from
// one hit during navigation.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageLaunch    Stage = "launch"
	StageConfigure Stage = "configure"
	StageNavigate  Stage = "navigate"
	StageCapture   Stage = "capture"
)

// ElementNotFoundError reports a selector that never appeared or
// resolved to an empty box.
type ElementNotFoundError struct {
	Selector string
	Cause    error
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element %q not found", e.Selector)
}

func (e *ElementNotFoundError) Unwrap() error { return e.Cause }

// ClassifiedError is the terminal error value of the pipeline: a
// status code, a stable kind, a human message and the original cause.
// It is constructed only by Classifier.Classify.
type ClassifiedError struct {
	Status  int
	Kind    Kind
	Message string
	Rule    URLRule
	Field   string
	Value   string
	Cause   error
	Elapsed time.Duration
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClassifiedError) Unwrap() error { return e.Cause }

// Classifier maps raw pipeline failures onto the stable taxonomy.
// Hardened deployments replace raw internal detail with a generic
// message; the full cause is still available to the caller for
// server-side logging.
type Classifier struct {
	hardened bool
}

// NewClassifier builds a classifier for the given profile.
func NewClassifier(hardened bool) *Classifier {
	return &Classifier{hardened: hardened}
}

// Classify never fails; it always produces a value. Precedence:
// validation errors, then selector misses, then timeouts, then
// connection-level causes, then the generic fallback.
func (c *Classifier) Classify(err error, stage Stage) *ClassifiedError {
	var pe *ParamError
	if errors.As(err, &pe) {
		return &ClassifiedError{
			Status:  http.StatusBadRequest,
			Kind:    KindInvalidParameter,
			Message: fmt.Sprintf("parameter %s %s", pe.Field, pe.Message),
			Field:   pe.Field,
			Value:   pe.Value,
			Cause:   err,
		}
	}

	var ue *URLError
	if errors.As(err, &ue) {
		return &ClassifiedError{
			Status:  http.StatusBadRequest,
			Kind:    KindInvalidURL,
			Message: ue.Message,
			Rule:    ue.Rule,
			Value:   ue.Value,
			Cause:   err,
		}
	}

	var ne *ElementNotFoundError
	if errors.As(err, &ne) {
		return &ClassifiedError{
			Status:  http.StatusNotFound,
			Kind:    KindElementNotFound,
			Message: fmt.Sprintf("no element matches selector %q", ne.Selector),
			Value:   ne.Selector,
			Cause:   err,
		}
	}

	msg := strings.ToLower(errText(err))

	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "timeout") {
		if stage == StageLaunch {
			return &ClassifiedError{
				Status:  http.StatusRequestTimeout,
				Kind:    KindLaunchTimeout,
				Message: "browser did not start within the launch budget",
				Cause:   err,
			}
		}
		return &ClassifiedError{
			Status:  http.StatusRequestTimeout,
			Kind:    KindNavigationTimeout,
			Message: "page did not finish loading within the time budget",
			Cause:   err,
		}
	}

	switch {
	case strings.Contains(msg, "err_name_not_resolved"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "err_connection_refused"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "err_address_unreachable"),
		strings.Contains(msg, "err_internet_disconnected"):
		return &ClassifiedError{
			Status:  http.StatusBadRequest,
			Kind:    KindUnreachableHost,
			Message: "target host could not be reached",
			Cause:   err,
		}
	case strings.Contains(msg, "err_too_many_redirects"):
		return &ClassifiedError{
			Status:  http.StatusBadRequest,
			Kind:    KindTooManyRedirects,
			Message: "target redirected too many times",
			Cause:   err,
		}
	case strings.Contains(msg, "err_blocked_by_client"),
		strings.Contains(msg, "err_blocked_by_response"):
		return &ClassifiedError{
			Status:  http.StatusForbidden,
			Kind:    KindBlockedByTarget,
			Message: "target refused to be loaded",
			Cause:   err,
		}
	}

	message := errText(err)
	if c.hardened {
		message = "an internal error occurred while processing the capture"
	}
	return &ClassifiedError{
		Status:  http.StatusInternalServerError,
		Kind:    KindUnclassified,
		Message: message,
		Cause:   err,
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
