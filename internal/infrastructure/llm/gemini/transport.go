package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generateContent posts one generation attempt. On a success status it
// extracts the first part of the first candidate; when the body does not
// match that shape it returns the raw body so the oddity is visible to the
// caller instead of silently empty.
func (c *Client) generateContent(ctx context.Context, ep endpoint, prompt string) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", ep.base, ep.model)
	raw, err := c.postJSON(ctx, url, payload, "generate")
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err == nil &&
		len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 &&
		strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text) != "" {
		return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
	}
	return strings.TrimSpace(string(raw)), nil
}

func (c *Client) postJSON(ctx context.Context, url string, payload any, operation string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	return c.do(req, operation)
}

func (c *Client) getJSON(ctx context.Context, url string, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	raw, err := c.do(req, operation)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) do(req *http.Request, operation string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	if resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw[:min(len(raw), 2048)])),
		}
	}
	return raw, nil
}
