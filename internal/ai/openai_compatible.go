package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAICompatibleClient talks to any endpoint that accepts an OpenAI style
// /chat/completions body. Responses may come back in either the OpenAI or
// the Gemini envelope.
type OpenAICompatibleClient struct {
	httpClient *http.Client
	cfg        ChatConfig
}

func NewOpenAICompatibleClient(cfg ChatConfig) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

func (c *OpenAICompatibleClient) Name() string {
	return ProviderCompatible
}

type completionEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (e completionEnvelope) text() (string, bool) {
	if len(e.Choices) > 0 {
		return e.Choices[0].Message.Content, true
	}
	if len(e.Candidates) > 0 && len(e.Candidates[0].Content.Parts) > 0 {
		return e.Candidates[0].Content.Parts[0].Text, true
	}
	return "", false
}

func (c *OpenAICompatibleClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.cfg.Model,
		"messages":    messages,
		"temperature": c.cfg.Temperature,
		"stream":      false,
	}
	if c.cfg.MaxTokens > 0 {
		reqBody["max_tokens"] = c.cfg.MaxTokens
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", requestError("%v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", requestError("read response: %v", err)
	}
	if resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests || bytes.Contains(raw, []byte("RESOURCE_EXHAUSTED")) {
			return "", quotaError(fmt.Sprintf("status %d", resp.StatusCode))
		}
		return "", requestError("status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var parsed completionEnvelope
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", requestError("parse response envelope: %v", err)
	}
	text, ok := parsed.text()
	if !ok {
		return "", requestError("response has neither choices nor candidates")
	}
	if strings.TrimSpace(text) == "" {
		return "", requestError("empty completion")
	}
	return text, nil
}

func truncateBody(raw []byte) string {
	const limit = 512
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
