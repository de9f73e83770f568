// internal/capture/pagemeta.go
package capture

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/pagesnap/pagesnap/internal/utils"
)

// PageTitle extracts the document title from the rendered DOM. It is
// metadata only: any failure returns an empty title, never an error
// that could sink an otherwise good capture.
func PageTitle(ctx context.Context, sess BrowserSession, log utils.Logger) string {
	var html string
	if err := sess.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		log.Debugf("page title extraction skipped: %v", err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Debugf("page title parse failed: %v", err)
		return ""
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}
