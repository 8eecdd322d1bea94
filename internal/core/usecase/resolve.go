package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
	"github.com/mkozhevin/campus-helpdesk/internal/core/ports"
)

// ApologyMessage is the generic response for internal failures; end users
// never see raw errors or wire-protocol bodies.
const ApologyMessage = "I'm sorry, something went wrong while answering your question. Please try again."

// ResolveQueryUseCase answers one query by walking knowledge sources in
// priority order, stopping at the first that satisfies it: curated FAQs,
// then ingested documents, then the model's general knowledge.
type ResolveQueryUseCase struct {
	faqs      ports.FAQStore
	docs      ports.DocumentStore
	generator ports.TextGenerator
	detector  ports.LanguageDetector
	audit     ports.ConversationLog

	excerptChars  int
	excerptBudget int
	searchLimit   int
}

func NewResolveQueryUseCase(
	faqs ports.FAQStore,
	docs ports.DocumentStore,
	generator ports.TextGenerator,
	detector ports.LanguageDetector,
	audit ports.ConversationLog,
	excerptChars, excerptBudget, searchLimit int,
) *ResolveQueryUseCase {
	if excerptChars <= 0 {
		excerptChars = 2500
	}
	if excerptBudget <= 0 {
		excerptBudget = 6000
	}
	if searchLimit <= 0 {
		searchLimit = 5
	}
	return &ResolveQueryUseCase{
		faqs:          faqs,
		docs:          docs,
		generator:     generator,
		detector:      detector,
		audit:         audit,
		excerptChars:  excerptChars,
		excerptBudget: excerptBudget,
		searchLimit:   searchLimit,
	}
}

// Resolve runs the staged pipeline. The only error it returns is invalid
// input for a blank query; every internal failure past that point degrades
// to the generic apology so callers always get a displayable response.
func (uc *ResolveQueryUseCase) Resolve(ctx context.Context, query, language string) (*domain.Resolution, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resolve query", errors.New("empty query"))
	}

	target := uc.targetLanguage(query, language)
	resolution := uc.resolveStages(ctx, query, target)
	uc.logConversation(ctx, query, resolution)
	return resolution, nil
}

func (uc *ResolveQueryUseCase) targetLanguage(query, requested string) string {
	requested = strings.TrimSpace(requested)
	if requested != "" && !strings.EqualFold(requested, "auto") {
		return requested
	}
	return uc.detector.Detect(query)
}

func (uc *ResolveQueryUseCase) resolveStages(ctx context.Context, query, language string) *domain.Resolution {
	faq, err := uc.faqs.Match(ctx, query)
	if err != nil {
		return uc.apologize("faq stage", err)
	}
	if faq != nil {
		answer := faq.Answer
		// FAQ answers are stored in English; translate only when the
		// target language differs.
		if !isBaselineLanguage(language) {
			answer, err = uc.generator.Translate(ctx, answer, language)
			if err != nil {
				return uc.apologize("faq translation", err)
			}
		}
		return &domain.Resolution{Response: answer, Stage: domain.StageFAQ}
	}

	snippets, err := uc.docs.Search(ctx, query, uc.excerptChars, uc.searchLimit)
	if err != nil {
		return uc.apologize("document search", err)
	}
	if len(snippets) > 0 {
		excerpt := combineExcerpts(snippets, uc.excerptBudget)
		answer, err := uc.generator.GroundedAnswer(ctx, query, excerpt, snippets[0].Title, language)
		if err != nil {
			return uc.apologize("grounded generation", err)
		}
		return &domain.Resolution{
			Response: answer,
			Source:   &domain.SourceRef{ID: snippets[0].DocumentID, Title: snippets[0].Title},
			Stage:    domain.StageDocument,
		}
	}

	answer, err := uc.generator.GeneralAnswer(ctx, query, language)
	if err != nil {
		return uc.apologize("general generation", err)
	}
	return &domain.Resolution{Response: answer, Stage: domain.StageGeneral}
}

func (uc *ResolveQueryUseCase) apologize(stage string, err error) *domain.Resolution {
	slog.Error("resolver_stage_failed", "stage", stage, "error", err)
	return &domain.Resolution{Response: ApologyMessage, Stage: domain.StageApology}
}

// logConversation appends to the audit trail. A logging failure must never
// spoil an answer that has already been computed.
func (uc *ResolveQueryUseCase) logConversation(ctx context.Context, query string, resolution *domain.Resolution) {
	rec := domain.ConversationRecord{
		ID:          uuid.NewString(),
		UserQuery:   query,
		BotResponse: resolution.Response,
		CreatedAt:   time.Now().UTC(),
	}
	if resolution.Source != nil {
		rec.SourceDocID = resolution.Source.ID
	}
	if err := uc.audit.Append(ctx, rec); err != nil {
		slog.Warn("conversation_log_failed", "error", err)
	}
}

// combineExcerpts joins snippets and truncates the joined block to the
// overall budget. Truncating after concatenation keeps earlier documents
// intact instead of shrinking them to make room for later ones.
func combineExcerpts(snippets []domain.Snippet, budget int) string {
	parts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		if strings.TrimSpace(s.Excerpt) == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(s.Excerpt))
	}
	combined := strings.Join(parts, "\n\n")
	if budget > 0 && len(combined) > budget {
		combined = combined[:budget]
	}
	return combined
}

func isBaselineLanguage(language string) bool {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", "en", "eng", "english":
		return true
	default:
		return false
	}
}
