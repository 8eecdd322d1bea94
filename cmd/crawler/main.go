// Command crawler runs one corpus-seeding pass: it discovers PDF links on
// the configured institution page, downloads each file and ingests it
// through the same pipeline as admin uploads.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkozhevin/campus-helpdesk/internal/bootstrap"
	"github.com/mkozhevin/campus-helpdesk/internal/config"
	"github.com/mkozhevin/campus-helpdesk/internal/observability/logging"
)

func main() {
	pageURL := flag.String("url", "", "page to crawl for PDF links (defaults to CRAWL_START_URL)")
	flag.Parse()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("crawler", cfg.LogLevel))

	target := *pageURL
	if target == "" {
		target = cfg.CrawlStartURL
	}
	if target == "" {
		log.Fatal("no crawl target: pass -url or set CRAWL_START_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	results, err := app.CrawlUC.CrawlPage(ctx, target)
	if err != nil {
		log.Fatalf("crawl error: %v", err)
	}

	processed := 0
	for _, res := range results {
		if res.Processed {
			processed++
			continue
		}
		slog.Warn("crawl_file_skipped", "filename", res.Filename, "reason", res.Error)
	}
	slog.Info("crawl_finished", "page", target, "files", len(results), "processed", processed)
}
