package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"path"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
	"github.com/mkozhevin/campus-helpdesk/internal/core/ports"
)

// CrawlIngestUseCase seeds the corpus from an institution web page: it
// discovers PDF links, downloads each and runs it through the same
// ingestion path as admin uploads, marked as scraped.
type CrawlIngestUseCase struct {
	fetcher  ports.PDFFetcher
	ingestor *IngestDocumentUseCase
}

func NewCrawlIngestUseCase(fetcher ports.PDFFetcher, ingestor *IngestDocumentUseCase) *CrawlIngestUseCase {
	return &CrawlIngestUseCase{fetcher: fetcher, ingestor: ingestor}
}

// CrawlPage processes every PDF linked from pageURL. A failing link is
// reported in its result and the crawl moves on; only a failure to read
// the page itself aborts the pass.
func (uc *CrawlIngestUseCase) CrawlPage(ctx context.Context, pageURL string) ([]domain.IngestResult, error) {
	links, err := uc.fetcher.DiscoverLinks(ctx, pageURL)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "discover pdf links", err)
	}
	slog.Info("crawl_links_discovered", "page", pageURL, "count", len(links))

	results := make([]domain.IngestResult, 0, len(links))
	for _, link := range links {
		results = append(results, uc.ingestLink(ctx, link))
	}
	return results, nil
}

func (uc *CrawlIngestUseCase) ingestLink(ctx context.Context, link string) domain.IngestResult {
	filename := linkFilename(link)

	var buf bytes.Buffer
	if err := uc.fetcher.Download(ctx, link, &buf); err != nil {
		slog.Warn("crawl_download_failed", "url", link, "error", err)
		return domain.IngestResult{Filename: filename, Error: "failed to download file"}
	}
	return uc.ingestor.ingest(ctx, filename, &buf, domain.StatusScraped)
}

func linkFilename(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Path == "" {
		return "document.pdf"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "document.pdf"
	}
	return name
}
