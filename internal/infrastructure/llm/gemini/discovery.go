package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type modelInfo struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

type modelsResponse struct {
	Models []modelInfo `json:"models"`
}

// discoverModel asks one base for its model list and picks, in order of
// preference: the configured identifier, any model declaring the
// generateContent capability, any model whose name suggests a generation
// model, and finally whatever is listed first.
func (c *Client) discoverModel(ctx context.Context, base string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	var listed modelsResponse
	if err := c.getJSON(attemptCtx, base+"/models", &listed, "list models"); err != nil {
		return "", err
	}

	model, ok := pickModel(listed.Models, strings.TrimSpace(c.cfg.Model))
	if !ok {
		return "", fmt.Errorf("discover model at %s: %w", base, errors.New("empty model list"))
	}
	return model, nil
}

func pickModel(models []modelInfo, preferred string) (string, bool) {
	if len(models) == 0 {
		return "", false
	}

	if preferred != "" {
		for _, m := range models {
			if modelID(m.Name) == preferred {
				return preferred, true
			}
		}
	}
	for _, m := range models {
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				return modelID(m.Name), true
			}
		}
	}
	for _, m := range models {
		if strings.Contains(modelID(m.Name), "gemini") {
			return modelID(m.Name), true
		}
	}
	return modelID(models[0].Name), true
}

// modelID strips the "models/" resource prefix the list endpoint returns.
func modelID(name string) string {
	return strings.TrimPrefix(name, "models/")
}
