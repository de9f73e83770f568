// internal/capture/navigate.go
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/pagesnap/pagesnap/internal/utils"
)

const (
	// How long the network must stay quiet before the page counts as
	// settled, and how many in-flight requests are tolerated while
	// waiting (long-polling and analytics beacons never finish).
	networkIdlePeriod      = 500 * time.Millisecond
	networkIdleMaxInflight = 2

	readyStatePollInterval = 100 * time.Millisecond
	readyStateWindow       = 2 * time.Second
)

// Navigator drives a session to the target URL. The primary attempt
// waits for the network to go quiet; if that budget expires, a shorter
// fallback attempt settles for the load event alone. Only when both
// attempts fail does the request error out.
type Navigator struct {
	navigationTimeout time.Duration
	fallbackTimeout   time.Duration
	readyWindow       time.Duration
	pollInterval      time.Duration
	log               utils.Logger
}

// NewNavigator builds a navigator with the given primary and fallback
// budgets.
func NewNavigator(navigationTimeout, fallbackTimeout time.Duration, logger utils.Logger) *Navigator {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &Navigator{
		navigationTimeout: navigationTimeout,
		fallbackTimeout:   fallbackTimeout,
		readyWindow:       readyStateWindow,
		pollInterval:      readyStatePollInterval,
		log:               logger,
	}
}

// Navigate loads the target URL in the session and then applies the
// request's settle delay. ctx bounds the whole operation; the primary
// and fallback budgets are applied within it.
func (n *Navigator) Navigate(ctx context.Context, sess BrowserSession, req *Request) error {
	primaryCtx, cancel := context.WithTimeout(ctx, n.navigationTimeout)
	err := sess.Run(primaryCtx,
		chromedp.Navigate(req.URL),
		chromedp.WaitReady("body"),
		waitNetworkIdle(networkIdlePeriod, networkIdleMaxInflight),
	)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("navigation failed: %w", err)
		}

		n.log.WithField("url", req.URL).Debugf("primary navigation gave up, retrying without idle wait: %v", err)

		fallbackCtx, cancel := context.WithTimeout(ctx, n.fallbackTimeout)
		err = sess.Run(fallbackCtx,
			chromedp.Navigate(req.URL),
			chromedp.WaitReady("body"),
		)
		cancel()
		if err != nil {
			return fmt.Errorf("navigation failed: %w", err)
		}
	}

	if req.Delay > 0 {
		if err := n.settle(ctx, req.Delay); err != nil {
			return err
		}
	}

	// A best-effort wait for document.readyState to reach complete.
	// Pages that stream forever never get there, so expiry of this
	// window is not a failure.
	n.awaitReadyState(ctx, sess)

	return nil
}

// settle sleeps for the requested delay, honoring cancellation.
func (n *Navigator) settle(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// awaitReadyState polls document.readyState for a short window. Expiry
// is silently tolerated.
func (n *Navigator) awaitReadyState(ctx context.Context, sess BrowserSession) {
	pollCtx, cancel := context.WithTimeout(ctx, n.readyWindow)
	defer cancel()

	for {
		var state string
		if err := sess.Run(pollCtx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
			return
		}
		if state == "complete" {
			return
		}

		select {
		case <-pollCtx.Done():
			return
		case <-time.After(n.pollInterval):
		}
	}
}

// waitNetworkIdle blocks until no more than maxInflight requests have
// been active for a full idle period. It counts requestWillBeSent
// against loadingFinished/loadingFailed events on the page's target.
func waitNetworkIdle(idle time.Duration, maxInflight int) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var (
			mu       sync.Mutex
			inflight int
			quietAt  = time.Now().Add(idle)
		)

		chromedp.ListenTarget(ctx, func(event interface{}) {
			mu.Lock()
			defer mu.Unlock()

			switch event.(type) {
			case *network.EventRequestWillBeSent:
				inflight++
			case *network.EventLoadingFinished, *network.EventLoadingFailed:
				if inflight > 0 {
					inflight--
				}
			default:
				return
			}

			if inflight > maxInflight {
				quietAt = time.Time{}
			} else if quietAt.IsZero() {
				quietAt = time.Now().Add(idle)
			}
		})

		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-ticker.C:
				mu.Lock()
				done := !quietAt.IsZero() && now.After(quietAt)
				mu.Unlock()
				if done {
					return nil
				}
			}
		}
	})
}
