package crawler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDiscoverLinksResolvesAndDeduplicates(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admissions" {
			http.NotFound(w, r)
			return
		}
		page := `<html><body>
			<a href="/files/handbook.pdf">Handbook</a>
			<a href="fees.PDF">Fees</a>
			<a href="` + server.URL + `/files/handbook.pdf">Handbook again</a>
			<a href="/about.html">About</a>
		</body></html>`
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	fetcher := New(100)
	links, err := fetcher.DiscoverLinks(context.Background(), server.URL+"/admissions")
	if err != nil {
		t.Fatalf("DiscoverLinks() error = %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 unique pdf links, got %v", links)
	}
	if links[0] != server.URL+"/files/handbook.pdf" {
		t.Fatalf("relative link not resolved: %q", links[0])
	}
	if !strings.HasSuffix(links[1], "/fees.PDF") {
		t.Fatalf("case-insensitive extension match failed: %q", links[1])
	}
}

func TestDownloadCopiesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	fetcher := New(100)
	var buf bytes.Buffer
	if err := fetcher.Download(context.Background(), server.URL+"/doc.pdf", &buf); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if buf.String() != "%PDF-1.4 fake" {
		t.Fatalf("unexpected body: %q", buf.String())
	}
}

func TestDownloadRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	fetcher := New(100)
	var buf bytes.Buffer
	if err := fetcher.Download(context.Background(), server.URL+"/doc.pdf", &buf); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}
}
