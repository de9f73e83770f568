// internal/capture/configure.go
package capture

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/pagesnap/pagesnap/internal/config"
	"github.com/pagesnap/pagesnap/internal/utils"
)

const (
	desktopUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	mobileUserAgent  = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36"

	desktopDeviceScale = 1.0
	mobileDeviceScale  = 2.0

	// Budget for answering a single paused fetch event.
	interceptCommandTimeout = 2 * time.Second
)

// Configurator applies viewport, device emulation, color scheme and
// the resource-blocking policy to a page before navigation. It never
// fails the overall request: interception problems are logged and the
// affected request is let through.
type Configurator struct {
	capture config.CaptureConfig
	browser config.BrowserConfig
	log     utils.Logger
}

// NewConfigurator builds a page configurator from injected policy.
func NewConfigurator(capture config.CaptureConfig, browser config.BrowserConfig, logger utils.Logger) *Configurator {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &Configurator{capture: capture, browser: browser, log: logger}
}

// Tasks returns the pre-navigation setup for a request. The caller
// runs these on the session before navigating.
func (c *Configurator) Tasks(req *Request) chromedp.Tasks {
	tasks := chromedp.Tasks{}

	if c.blockingEnabled() {
		tasks = append(tasks, c.interceptAction(), network.Enable(), fetch.Enable())
	} else {
		tasks = append(tasks, network.Enable())
	}

	scale := desktopDeviceScale
	userAgent := c.browser.UserAgent
	if userAgent == "" {
		userAgent = desktopUserAgent
	}
	if req.Mobile {
		scale = mobileDeviceScale
		userAgent = c.browser.MobileUserAgent
		if userAgent == "" {
			userAgent = mobileUserAgent
		}
	}

	tasks = append(tasks,
		emulation.SetDeviceMetricsOverride(int64(req.Width), int64(req.Height), scale, req.Mobile),
		emulation.SetUserAgentOverride(userAgent),
	)

	if req.Mobile {
		tasks = append(tasks, emulation.SetTouchEmulationEnabled(true).WithMaxTouchPoints(5))
	}

	if req.DarkMode {
		tasks = append(tasks, emulation.SetEmulatedMedia().WithFeatures([]*emulation.MediaFeature{
			{Name: "prefers-color-scheme", Value: "dark"},
		}))
	}

	return tasks
}

func (c *Configurator) blockingEnabled() bool {
	return c.capture.BlockFonts || c.capture.BlockMedia || len(c.capture.BlockedDomains) > 0
}

// interceptAction installs the fetch-event listener implementing the
// resource-blocking policy: font and media subresources and a fixed
// deny-list of ad/analytics domains are aborted, everything else is
// continued. The primary document is never a Font/Media resource and
// its host is matched against the deny-list only, so required loads
// pass through.
func (c *Configurator) interceptAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		chromedp.ListenTarget(ctx, func(event interface{}) {
			ev, ok := event.(*fetch.EventRequestPaused)
			if !ok {
				return
			}

			go func() {
				cmdCtx, cancel := context.WithTimeout(ctx, interceptCommandTimeout)
				defer cancel()

				executor := cdp.WithExecutor(cmdCtx, chromedp.FromContext(cmdCtx).Target)

				if c.shouldBlock(ev) {
					if err := fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient).Do(executor); err != nil {
						c.log.WithField("url", ev.Request.URL).Warnf("failed to block request: %v", err)
					}
					return
				}

				if err := fetch.ContinueRequest(ev.RequestID).Do(executor); err != nil {
					c.log.WithField("url", ev.Request.URL).Warnf("failed to continue request: %v", err)
					// A request stuck in the paused state would stall the
					// load; abort it rather than hang.
					fetch.FailRequest(ev.RequestID, network.ErrorReasonAborted).Do(executor)
				}
			}()
		})
		return nil
	})
}

// shouldBlock applies the resource-blocking policy to one paused
// request.
func (c *Configurator) shouldBlock(ev *fetch.EventRequestPaused) bool {
	switch ev.ResourceType {
	case network.ResourceTypeFont:
		if c.capture.BlockFonts {
			return true
		}
	case network.ResourceTypeMedia:
		if c.capture.BlockMedia {
			return true
		}
	}

	return hostMatchesAny(ev.Request.URL, c.capture.BlockedDomains)
}

// hostMatchesAny reports whether the URL's host is a blocked domain or
// one of its subdomains.
func hostMatchesAny(rawURL string, domains []string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	// Bracketed IPv6 authority: the colons inside [...] are not a port
	// separator.
	if strings.HasPrefix(rest, "[") {
		if i := strings.Index(rest, "]"); i >= 0 {
			return strings.ToLower(rest[1:i])
		}
		return ""
	}
	if i := strings.Index(rest, ":"); i >= 0 {
		rest = rest[:i]
	}
	return strings.ToLower(rest)
}
