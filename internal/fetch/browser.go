package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// If content is shorter, the page is likely rendered client-side.
const MinContentLength = 500

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns the HTML of a page after scripts have run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages in headless Chrome. Requires Chrome/Chromium on the system.
type ChromeRenderer struct {
	Timeout time.Duration
	// Settle is how long to wait after the body is ready
	Settle  time.Duration
	Verbose bool
}

// NewChromeRenderer returns a renderer with the default timeout
func NewChromeRenderer(verbose bool) *ChromeRenderer {
	return &ChromeRenderer{Timeout: DefaultTimeout, Settle: 3 * time.Second, Verbose: verbose}
}

// Render navigates to url in a fresh headless browser and returns the rendered HTML.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	if r.Verbose {
		log.Printf("[browser] starting headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.Settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	if r.Verbose {
		log.Printf("[browser] rendered HTML: %d bytes", len(html))
	}
	return html, nil
}
