package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
)

type fakeFetcher struct {
	links       []string
	discoverErr error
	bodies      map[string]string
	failURLs    map[string]bool
}

func (f *fakeFetcher) DiscoverLinks(_ context.Context, _ string) ([]string, error) {
	return f.links, f.discoverErr
}

func (f *fakeFetcher) Download(_ context.Context, url string, dst io.Writer) error {
	if f.failURLs[url] {
		return errors.New("connection reset")
	}
	_, err := io.WriteString(dst, f.bodies[url])
	return err
}

func TestCrawlPageIngestsDiscoveredPDFs(t *testing.T) {
	fetcher := &fakeFetcher{
		links: []string{
			"https://campus.example/files/handbook.pdf",
			"https://campus.example/files/fees.pdf",
		},
		bodies: map[string]string{
			"https://campus.example/files/handbook.pdf": "%PDF handbook",
			"https://campus.example/files/fees.pdf":     "%PDF fees",
		},
	}
	store := &recordingDocStore{}
	uc := NewCrawlIngestUseCase(fetcher, NewIngestDocumentUseCase(store, newFakeStorage(), &fakeExtractor{text: "text"}))

	results, err := uc.CrawlPage(context.Background(), "https://campus.example/admissions")
	if err != nil {
		t.Fatalf("CrawlPage() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if !res.Processed {
			t.Fatalf("expected processed result, got %+v", res)
		}
	}
	if len(store.inserted) != 2 {
		t.Fatalf("expected 2 inserted documents, got %d", len(store.inserted))
	}
	for _, doc := range store.inserted {
		if doc.Status != domain.StatusScraped {
			t.Fatalf("crawled documents must be marked scraped, got %s", doc.Status)
		}
	}
}

func TestCrawlPageContinuesPastFailedDownloads(t *testing.T) {
	fetcher := &fakeFetcher{
		links: []string{
			"https://campus.example/broken.pdf",
			"https://campus.example/fees.pdf",
		},
		bodies:   map[string]string{"https://campus.example/fees.pdf": "%PDF fees"},
		failURLs: map[string]bool{"https://campus.example/broken.pdf": true},
	}
	store := &recordingDocStore{}
	uc := NewCrawlIngestUseCase(fetcher, NewIngestDocumentUseCase(store, newFakeStorage(), &fakeExtractor{text: "text"}))

	results, err := uc.CrawlPage(context.Background(), "https://campus.example/admissions")
	if err != nil {
		t.Fatalf("CrawlPage() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected a result per link, got %d", len(results))
	}
	if results[0].Processed || results[0].Error == "" {
		t.Fatalf("broken link must fail: %+v", results[0])
	}
	if !results[1].Processed {
		t.Fatalf("crawl must continue past a failed link: %+v", results[1])
	}
}

func TestCrawlPagePropagatesDiscoveryFailure(t *testing.T) {
	fetcher := &fakeFetcher{discoverErr: errors.New("timeout")}
	uc := NewCrawlIngestUseCase(fetcher, NewIngestDocumentUseCase(&recordingDocStore{}, newFakeStorage(), &fakeExtractor{}))

	if _, err := uc.CrawlPage(context.Background(), "https://campus.example/admissions"); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary failure, got %v", err)
	}
}

func TestLinkFilenameFallsBackOnPathlessURL(t *testing.T) {
	if got := linkFilename("https://campus.example"); got != "document.pdf" {
		t.Fatalf("linkFilename = %q, want document.pdf", got)
	}
	if got := linkFilename("https://campus.example/files/handbook.pdf?v=2"); got != "handbook.pdf" {
		t.Fatalf("linkFilename = %q, want handbook.pdf", got)
	}
}
