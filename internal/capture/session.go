// internal/capture/session.go
package capture

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pagesnap/pagesnap/internal/config"
	"github.com/pagesnap/pagesnap/internal/utils"
)

// BrowserSession is an owned pairing of one browser process and one
// page, scoped to exactly one request. Release is idempotent and must
// eventually be called on every acquired session.
type BrowserSession interface {
	// Run executes browser actions. A deadline on ctx bounds the run
	// without detaching it from the session's browser context.
	Run(ctx context.Context, actions ...chromedp.Action) error

	// Release tears the session down. Safe to call more than once;
	// only the first call has effect.
	Release()
}

// SessionManager launches isolated browser sessions.
type SessionManager interface {
	Acquire(ctx context.Context, req *Request) (BrowserSession, error)
}

// Session is the chromedp-backed BrowserSession.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	releaseOnce sync.Once
	log         utils.Logger
}

// Run executes actions against the session's page. When ctx carries a
// deadline, the run is bounded by it; the chromedp context chain stays
// intact either way.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// Release closes the page and the browser process. Idempotent.
func (s *Session) Release() {
	s.releaseOnce.Do(func() {
		s.cancel()
		s.allocCancel()
		s.log.Debug("browser session released")
	})
}

// Manager implements SessionManager on top of a per-request chromedp
// exec allocator. There is no pooling: every request launches and
// fully tears down its own browser process, which bounds worst-case
// resource growth at the cost of launch latency.
type Manager struct {
	browser       config.BrowserConfig
	launchTimeout time.Duration
	log           utils.Logger
}

// NewManager creates a session manager. Launch policy (binary path,
// sandboxing, extra flags) comes from the injected browser
// configuration, never from ambient environment reads.
func NewManager(browser config.BrowserConfig, launchTimeout time.Duration, logger utils.Logger) *Manager {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &Manager{
		browser:       browser,
		launchTimeout: launchTimeout,
		log:           logger,
	}
}

// Acquire launches a browser and opens a page sized for the request.
// The launch is raced against the launch timeout; on failure nothing
// leaks and no Release call is required.
func (m *Manager) Acquire(ctx context.Context, req *Request) (BrowserSession, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.WindowSize(req.Width, req.Height),
	)

	if m.browser.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}
	if m.browser.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if m.browser.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.browser.ExecPath))
	}
	for _, flag := range m.browser.ExtraFlags {
		name, value, _ := strings.Cut(flag, "=")
		opts = append(opts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	pageCtx, pageCancel := chromedp.NewContext(allocCtx)

	// Force the process launch now, bounded by the launch budget, so a
	// missing or wedged binary surfaces here instead of mid-pipeline.
	launchCtx, launchCancel := context.WithTimeout(pageCtx, m.launchTimeout)
	defer launchCancel()

	if err := chromedp.Run(launchCtx); err != nil {
		pageCancel()
		allocCancel()
		return nil, fmt.Errorf("browser launch failed: %w", err)
	}

	m.log.WithField("url", req.URL).Debug("browser session acquired")

	return &Session{
		ctx:         pageCtx,
		cancel:      pageCancel,
		allocCancel: allocCancel,
		log:         m.log,
	}, nil
}
