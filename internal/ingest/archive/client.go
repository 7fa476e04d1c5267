package archive

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	// BaseURL of the public results archive mirror
	BaseURL = "https://resultsarchive.motorsportstats.io/f1"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval to prevent rate limiting
	MinRequestInterval = 2 * time.Second
)

// Client scrapes classification tables from the results archive. The
// archive renders its tables client-side, so pages go through a headless
// browser before goquery sees them.
type Client struct {
	baseURL     string
	lastRequest time.Time
	interval    time.Duration

	// Chromedp context for headless browser
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a new archive scraper client
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = BaseURL
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		baseURL:     baseURL,
		lastRequest: time.Time{},
		interval:    MinRequestInterval,
		allocCtx:    allocCtx,
		cancel:      cancel,
	}, nil
}

// Close releases resources
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchSessionPage fetches the rendered classification page for one session.
// The archive keys pages by season, round and session slug, e.g.
// /f1/2024/21/race.
func (c *Client) FetchSessionPage(ctx context.Context, season, round int, session string) (string, error) {
	url := fmt.Sprintf("%s/%d/%d/%s", c.baseURL, season, round, session)
	return c.fetchWithRateLimit(ctx, url)
}

// fetchWithRateLimit fetches content with automatic rate limiting
func (c *Client) fetchWithRateLimit(ctx context.Context, url string) (string, error) {
	if !c.lastRequest.IsZero() {
		elapsed := time.Since(c.lastRequest)
		if elapsed < c.interval {
			waitTime := c.interval - elapsed
			log.Printf("[archive] rate limiting: waiting %v before next request", waitTime)
			time.Sleep(waitTime)
		}
	}

	html, err := c.fetch(ctx, url)
	c.lastRequest = time.Now()

	return html, err
}

// fetch performs the actual page load using chromedp
func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`table.classification`, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second), // Allow JS to render
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)

	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}

	return htmlContent, nil
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
