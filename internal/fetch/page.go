package fetch

import (
	"context"
	"fmt"
	"log"
	"net/http"
)

// Page is the readable content of a job posting.
type Page struct {
	URL      string
	Platform Platform
	Title    string
	Text     string
	// Rendered is true when the text came from the headless browser
	Rendered bool
}

// Fetcher retrieves job posting pages, falling back to a Renderer for client-rendered pages.
type Fetcher struct {
	Client   *http.Client
	Options  *Options
	Renderer Renderer
	Verbose  bool
}

// NewFetcher returns a Fetcher. A nil renderer disables the browser fallback.
func NewFetcher(renderer Renderer, verbose bool) *Fetcher {
	opts := DefaultOptions()
	return &Fetcher{
		Client:   &http.Client{Timeout: opts.Timeout},
		Options:  opts,
		Renderer: renderer,
		Verbose:  verbose,
	}
}

// JobPage fetches urlStr and extracts the posting text using platform-specific selectors.
func (f *Fetcher) JobPage(ctx context.Context, urlStr string) (*Page, error) {
	platform := DetectPlatform(urlStr)
	if f.Verbose {
		log.Printf("[fetch] %s (platform: %s)", urlStr, platform)
	}

	contentSelectors := PlatformContentSelectors(platform)
	noiseSelectors := PlatformNoiseSelectors(platform)

	result, err := URL(ctx, f.Client, urlStr, f.Options)
	if err != nil {
		return nil, err
	}

	text, err := ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}
	page := &Page{
		URL:      urlStr,
		Platform: platform,
		Title:    PageTitle(result.HTML),
		Text:     text,
	}
	if f.Verbose {
		log.Printf("[fetch] extracted %d chars over HTTP", len(text))
	}

	if f.Renderer == nil || !ShouldUseBrowser(text) {
		return page, f.checkText(page)
	}

	if f.Verbose {
		log.Printf("[fetch] content too short (%d < %d chars), rendering in browser", len(text), MinContentLength)
	}
	html, err := f.Renderer.Render(ctx, urlStr)
	if err != nil {
		log.Printf("[fetch] browser rendering failed, keeping HTTP content: %v", err)
		return page, f.checkText(page)
	}
	rendered, err := ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil || len(rendered) <= len(text) {
		return page, f.checkText(page)
	}

	page.Text = rendered
	page.Rendered = true
	if title := PageTitle(html); title != "" {
		page.Title = title
	}
	if f.Verbose {
		log.Printf("[fetch] extracted %d chars from rendered page", len(rendered))
	}
	return page, nil
}

func (f *Fetcher) checkText(page *Page) error {
	if page.Text == "" {
		return &Error{URL: page.URL, Message: fmt.Sprintf("no readable text found (platform %s)", page.Platform)}
	}
	return nil
}
