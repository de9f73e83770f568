// internal/capture/engine.go
package capture

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/pagesnap/pagesnap/internal/utils"
)

// elementBox mirrors the result of getBoundingClientRect plus the
// current scroll offset, evaluated in the page.
type elementBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Engine produces the final screenshot from a navigated session. It
// owns the three capture modes: viewport, full page and element
// selector.
type Engine struct {
	selectorTimeout time.Duration
	log             utils.Logger
}

// NewEngine builds a capture engine with the given selector wait
// budget.
func NewEngine(selectorTimeout time.Duration, logger utils.Logger) *Engine {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &Engine{selectorTimeout: selectorTimeout, log: logger}
}

// Capture screenshots the session according to the request and returns
// the encoded image with its effective pixel dimensions.
func (e *Engine) Capture(ctx context.Context, sess BrowserSession, req *Request) (*Result, error) {
	var (
		image  []byte
		width  = req.Width
		height = req.Height
		err    error
	)

	switch {
	case req.Selector != "":
		image, width, height, err = e.captureElement(ctx, sess, req)
	case req.FullPage:
		image, width, height, err = e.captureFullPage(ctx, sess, req)
	default:
		image, err = e.captureViewport(ctx, sess, req)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:  image,
		Format: req.Format,
		Width:  width,
		Height: height,
	}, nil
}

// captureViewport screenshots exactly the configured viewport.
func (e *Engine) captureViewport(ctx context.Context, sess BrowserSession, req *Request) ([]byte, error) {
	var image []byte
	tasks := chromedp.Tasks{
		transparencyFor(req.Format),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			image, err = screenshotParams(req).Do(ctx)
			return err
		}),
	}
	if err := sess.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("viewport capture failed: %w", err)
	}
	return image, nil
}

// captureFullPage screenshots the entire scrollable document. The
// effective height comes from the layout metrics, not the viewport.
func (e *Engine) captureFullPage(ctx context.Context, sess BrowserSession, req *Request) ([]byte, int, int, error) {
	var (
		image  []byte
		width  = req.Width
		height = req.Height
	)

	tasks := chromedp.Tasks{
		transparencyFor(req.Format),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, _, contentSize, _, _, _, err := page.GetLayoutMetrics().Do(ctx)
			if err != nil {
				return fmt.Errorf("layout metrics: %w", err)
			}
			if contentSize != nil {
				width = int(math.Ceil(contentSize.Width))
				height = int(math.Ceil(contentSize.Height))
			}

			image, err = screenshotParams(req).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			return err
		}),
	}
	if err := sess.Run(ctx, tasks); err != nil {
		return nil, 0, 0, fmt.Errorf("full page capture failed: %w", err)
	}
	return image, width, height, nil
}

// captureElement waits for the selector to become visible, scrolls it
// into view and screenshots its bounding box. A selector that never
// appears or resolves to an empty box is an ElementNotFoundError.
func (e *Engine) captureElement(ctx context.Context, sess BrowserSession, req *Request) ([]byte, int, int, error) {
	waitCtx, cancel := context.WithTimeout(ctx, e.selectorTimeout)
	err := sess.Run(waitCtx,
		chromedp.WaitVisible(req.Selector, chromedp.ByQuery),
	)
	cancel()
	if err != nil {
		if waitCtx.Err() != nil && ctx.Err() == nil {
			return nil, 0, 0, &ElementNotFoundError{Selector: req.Selector, Cause: err}
		}
		return nil, 0, 0, fmt.Errorf("waiting for selector: %w", err)
	}

	var (
		box   elementBox
		image []byte
	)
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return {x: 0, y: 0, width: 0, height: 0};
		el.scrollIntoView({block: "center", inline: "center"});
		const r = el.getBoundingClientRect();
		return {
			x: r.x + window.scrollX,
			y: r.y + window.scrollY,
			width: r.width,
			height: r.height,
		};
	})()`, req.Selector)

	tasks := chromedp.Tasks{
		chromedp.Evaluate(expr, &box),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if box.Width < 1 || box.Height < 1 {
				return &ElementNotFoundError{Selector: req.Selector}
			}

			var err error
			image, err = screenshotParams(req).
				WithClip(&page.Viewport{
					X:      box.X,
					Y:      box.Y,
					Width:  box.Width,
					Height: box.Height,
					Scale:  1,
				}).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			return err
		}),
	}
	if err := sess.Run(ctx, tasks); err != nil {
		return nil, 0, 0, err
	}

	return image, int(math.Ceil(box.Width)), int(math.Ceil(box.Height)), nil
}

// screenshotParams builds the capture command for the requested format.
// Quality applies only to lossy formats; PNG ignores it.
func screenshotParams(req *Request) *page.CaptureScreenshotParams {
	p := page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormat(req.Format))
	if req.Format.Lossy() {
		p = p.WithQuality(int64(req.Quality))
	}
	return p
}

// transparencyFor makes the page background transparent for PNG output
// so pages without an explicit background render with alpha instead of
// white. Lossy formats have no alpha channel, so they keep the default.
func transparencyFor(format Format) chromedp.Action {
	if format != FormatPNG {
		return chromedp.ActionFunc(func(ctx context.Context) error { return nil })
	}
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetDefaultBackgroundColorOverride().
			WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}).Do(ctx)
	})
}
