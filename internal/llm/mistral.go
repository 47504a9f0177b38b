package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"rfpdesk/internal/config"
)

const mistralMaxAttempts = 4

// MistralCompleter talks to the Mistral chat completions REST API.
type MistralCompleter struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type mistralChatRequest struct {
	Model    string               `json:"model"`
	Messages []mistralChatMessage `json:"messages"`
}

type mistralChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralChatResponse struct {
	Choices []struct {
		Message mistralChatMessage `json:"message"`
	} `json:"choices"`
}

func NewMistralCompleter(cfg config.Config) (*MistralCompleter, error) {
	if err := cfg.Require("MISTRAL_API_KEY", cfg.MistralAPIKey); err != nil {
		return nil, err
	}

	return &MistralCompleter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.LLMTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.LLMRateLimitRPS),
	}, nil
}

func (m *MistralCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	payload := mistralChatRequest{
		Model:    m.cfg.MistralModel,
		Messages: []mistralChatMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(m.cfg.MistralBaseURL, "/") + "/chat/completions"

	var lastErr error
	for attempt := 1; attempt <= mistralMaxAttempts; attempt++ {
		m.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", "Bearer "+m.cfg.MistralAPIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < mistralMaxAttempts {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("mistral status %d", resp.StatusCode)
				continue
			}
			return "", fmt.Errorf("mistral api error: status=%d body=%s", resp.StatusCode, string(respBody))
		}

		var parsed mistralChatResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return "", fmt.Errorf("decode mistral response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return "", errors.New("mistral returned no choices")
		}
		return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
	}

	if lastErr == nil {
		lastErr = errors.New("mistral request failed")
	}
	return "", lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
