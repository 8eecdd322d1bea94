package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/mkozhevin/campus-helpdesk/internal/config"
	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
	"github.com/mkozhevin/campus-helpdesk/internal/core/ports"
	"github.com/mkozhevin/campus-helpdesk/internal/core/usecase"
	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/crawler"
	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/extractor/ocr"
	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/extractor/pdfx"
	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/langid"
	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/llm/gemini"
	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/repository/postgres"
	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/resilience"
	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/storage/localfs"
	"github.com/mkozhevin/campus-helpdesk/internal/observability/metrics"
)

// defaultFAQs seeds an empty faqs table so a fresh deployment answers the
// most common questions without any operator work.
var defaultFAQs = []domain.FAQ{
	{Question: "What are the library hours?", Answer: "The library is open from 8am to 10pm on weekdays and 9am to 6pm on weekends."},
	{Question: "How do I apply for admission?", Answer: "Submit the online application form on the admissions page along with your transcripts and identification documents."},
	{Question: "When does the fall semester start?", Answer: "The fall semester starts in the first week of September. Exact dates are published in the academic calendar."},
	{Question: "How do I contact the administration office?", Answer: "The administration office can be reached at the main campus front desk or through the contact form on the website."},
	{Question: "Where can I find the fee structure?", Answer: "The current fee structure is published on the admissions page and in the uploaded fee documents."},
}

type App struct {
	Config config.Config

	Resolver ports.QueryResolver
	Ingestor ports.DocumentIngestor
	Admin    ports.DocumentAdmin
	CrawlUC  *usecase.CrawlIngestUseCase
	Metrics  *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	docRepo := postgres.NewDocumentRepository(db, cfg.MaxContentChars)
	faqRepo := postgres.NewFAQRepository(db)
	convRepo := postgres.NewConversationRepository(db)

	if err := faqRepo.Seed(ctx, defaultFAQs); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed faqs: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	// The OCR engine is optional tooling; a nil concrete value must not be
	// handed to the interface or the extractor would see it as present.
	var ocrEngine pdfx.OCREngine
	if engine := ocr.Detect(cfg.OCRLanguage); engine != nil {
		ocrEngine = engine
	}
	extractor := pdfx.New(ocrEngine)

	serverMetrics := metrics.NewHTTPServerMetrics("api")

	executor := resilience.NewExecutor(resilience.DefaultPolicy())
	generator := gemini.New(gemini.Config{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		BaseURL:         cfg.GeminiBaseURL,
		Host:            cfg.GeminiHost,
		Temperature:     cfg.GeminiTemperature,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
		AttemptTimeout:  time.Duration(cfg.GeminiAttemptTimeout) * time.Second,
	}, executor)
	generator.SetSweepObserver(func(attempts int, exhausted bool) {
		serverMetrics.RecordGenerationSweep("api", attempts, exhausted)
	})

	detector := langid.New()

	resolveUC := usecase.NewResolveQueryUseCase(
		faqRepo, docRepo, generator, detector, convRepo,
		cfg.ExcerptChars, cfg.CombinedExcerptBudget, cfg.SearchLimit,
	)
	ingestUC := usecase.NewIngestDocumentUseCase(docRepo, storage, extractor)
	adminUC := usecase.NewAdminDocumentsUseCase(docRepo, storage, cfg.AdminPreviewChars)
	crawlUC := usecase.NewCrawlIngestUseCase(crawler.New(cfg.CrawlRequestsPerSecond), ingestUC)

	return &App{
		Config: cfg,

		Resolver: resolveUC,
		Ingestor: ingestUC,
		Admin:    adminUC,
		CrawlUC:  crawlUC,
		Metrics:  serverMetrics,

		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
