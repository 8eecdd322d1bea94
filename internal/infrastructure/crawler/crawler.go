// Package crawler discovers and downloads PDF links from institution web
// pages so the corpus can be seeded without manual uploads.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New builds a fetcher that paces outbound requests so a crawl pass does
// not hammer the institution site.
func New(requestsPerSecond float64) *Fetcher {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// DiscoverLinks scans the page for anchors ending in a PDF extension and
// resolves relative hrefs against the page URL. Order is document order,
// deduplicated.
func (f *Fetcher) DiscoverLinks(ctx context.Context, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	body, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(href)), ".pdf") {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})
	return links, nil
}

func (f *Fetcher) Download(ctx context.Context, fileURL string, dst io.Writer) error {
	body, err := f.get(ctx, fileURL)
	if err != nil {
		return err
	}
	defer body.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return fmt.Errorf("download %s: %w", fileURL, err)
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, target string) (io.ReadCloser, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", target, resp.Status)
	}
	return resp.Body, nil
}
