// Package gemini talks to the Generative Language REST API. The reachable
// endpoint shape is not fixed: several API version paths and several model
// identifiers may or may not exist for a given key, so generation sweeps an
// ordered list of (base, model) candidates and memoizes the first working
// pair for the life of the process.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mkozhevin/campus-helpdesk/internal/core/domain"
	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/resilience"
)

const defaultHost = "https://generativelanguage.googleapis.com"

// RefusalSentence is the exact reply the model is instructed to give when
// the supplied excerpt does not contain the answer.
const RefusalSentence = "I could not find that information in the provided documents."

var fallbackModels = []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro"}

type Config struct {
	// APIKey is required; its absence is a configuration error surfaced on
	// the first generation call, not at process start.
	APIKey string
	// Model is the operator-preferred model identifier, tried first.
	Model string
	// BaseURL is a full operator-supplied base (host plus version path),
	// tried before the derived candidates when set.
	BaseURL string
	// Host is the service host; the version-path candidates are derived
	// from it. Defaults to the public endpoint.
	Host string

	Temperature     float64
	MaxOutputTokens int
	AttemptTimeout  time.Duration
}

type endpoint struct {
	base  string
	model string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	executor   *resilience.Executor

	mu     sync.Mutex
	cached *endpoint

	observeSweep func(attempts int, exhausted bool)
}

func New(cfg Config, executor *resilience.Executor) *Client {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.4
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 512
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 15 * time.Second
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultPolicy())
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		executor:   executor,
	}
}

// Generate returns the model's text for the prompt. A "not found" status
// means the (base, model) pair does not exist and the sweep moves on;
// transport failures likewise advance the sweep after bounded retries.
// When static candidates are exhausted it asks each base for its model
// list and tries the best discovered match. Only after everything fails
// does it give up, and then it returns a displayable failure string
// rather than an error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", domain.WrapError(domain.ErrConfiguration, "gemini generate", errors.New("api key is not set"))
	}

	if ep := c.cachedEndpoint(); ep != nil {
		text, err := c.attempt(ctx, *ep, prompt)
		if err == nil {
			return text, nil
		}
		// The memoized pair stopped working; forget it and re-sweep.
		c.forgetEndpoint(*ep)
		slog.Warn("cached_endpoint_failed", "base", ep.base, "model", ep.model, "error", err)
	}

	attempts := 0
	var lastErr error

	for _, base := range c.candidateBases() {
		for _, model := range c.candidateModels() {
			ep := endpoint{base: base, model: model}
			attempts++
			text, err := c.attempt(ctx, ep, prompt)
			if err == nil {
				c.rememberEndpoint(ep)
				c.reportSweep(attempts, false)
				return text, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				c.reportSweep(attempts, true)
				return c.unavailableMessage(attempts, lastErr), nil
			}
		}
	}

	for _, base := range c.candidateBases() {
		model, err := c.discoverModel(ctx, base)
		if err != nil {
			lastErr = err
			continue
		}
		ep := endpoint{base: base, model: model}
		attempts++
		text, err := c.attempt(ctx, ep, prompt)
		if err == nil {
			c.rememberEndpoint(ep)
			c.reportSweep(attempts, false)
			return text, nil
		}
		lastErr = err
	}

	slog.Error("generation_candidates_exhausted", "attempts", attempts, "error", lastErr)
	c.reportSweep(attempts, true)
	return c.unavailableMessage(attempts, lastErr), nil
}

func (c *Client) GroundedAnswer(ctx context.Context, question, excerpt, sourceTitle, language string) (string, error) {
	return c.Generate(ctx, buildGroundedPrompt(question, excerpt, sourceTitle, language))
}

func (c *Client) GeneralAnswer(ctx context.Context, question, language string) (string, error) {
	return c.Generate(ctx, buildGeneralPrompt(question, language))
}

func (c *Client) Translate(ctx context.Context, text, language string) (string, error) {
	return c.Generate(ctx, buildTranslationPrompt(text, language))
}

// SetSweepObserver registers a callback fired after every candidate sweep
// with the number of endpoints tried and whether all of them failed.
func (c *Client) SetSweepObserver(fn func(attempts int, exhausted bool)) {
	c.observeSweep = fn
}

func (c *Client) reportSweep(attempts int, exhausted bool) {
	if c.observeSweep != nil && attempts > 0 {
		c.observeSweep(attempts, exhausted)
	}
}

// ResetEndpoint drops the memoized (base, model) pair. Exposed for tests;
// production only loses the pair on restart.
func (c *Client) ResetEndpoint() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}

func (c *Client) attempt(ctx context.Context, ep endpoint, prompt string) (string, error) {
	var text string
	call := func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		defer cancel()

		out, err := c.generateContent(attemptCtx, ep, prompt)
		if err != nil {
			return err
		}
		text = out
		return nil
	}

	if err := c.executor.Execute(ctx, "gemini.generate", call, classifyGeminiError); err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) candidateBases() []string {
	host := strings.TrimRight(strings.TrimSpace(c.cfg.Host), "/")
	if host == "" {
		host = defaultHost
	}

	bases := make([]string, 0, 3)
	if override := strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/"); override != "" {
		bases = append(bases, override)
	}
	for _, version := range []string{"v1beta", "v1"} {
		bases = appendUnique(bases, host+"/"+version)
	}
	return bases
}

func (c *Client) candidateModels() []string {
	models := make([]string, 0, len(fallbackModels)+1)
	if preferred := strings.TrimSpace(c.cfg.Model); preferred != "" {
		models = append(models, preferred)
	}
	for _, model := range fallbackModels {
		models = appendUnique(models, model)
	}
	return models
}

func (c *Client) cachedEndpoint() *endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil {
		return nil
	}
	ep := *c.cached
	return &ep
}

func (c *Client) rememberEndpoint(ep endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = &ep
	slog.Info("generation_endpoint_selected", "base", ep.base, "model", ep.model)
}

func (c *Client) forgetEndpoint(ep endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil && *c.cached == ep {
		c.cached = nil
	}
}

// unavailableMessage is what end users see when no candidate worked. It
// embeds operator diagnostics; the API key travels in a header, so attempt
// errors are safe to include.
func (c *Client) unavailableMessage(attempts int, lastErr error) string {
	msg := "I'm sorry, I can't reach the answer service right now. Please try again later."
	if lastErr != nil {
		msg += fmt.Sprintf(" (tried %d endpoint candidates; last error: %v)", attempts, lastErr)
	}
	return msg
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
