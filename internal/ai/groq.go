package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type GroqProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

type groqMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqChatReq struct {
	Model    string    `json:"model"`
	Messages []groqMsg `json:"messages"`
}

type groqChatResp struct {
	Choices []struct {
		Message groqMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewGroqProvider(baseURL, apiKey, model string) *GroqProvider {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	return &GroqProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Chat performs one bounded completion call with a single retry on transient
// failure (timeout, 429, 5xx). Auth and request errors fail immediately.
func (p *GroqProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if p.Client == nil {
		return "", fmt.Errorf("groq: http client is nil: %w", ErrInvalidRequest)
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return "", fmt.Errorf("groq: api key is required: %w", ErrAuthFailure)
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		return "", fmt.Errorf("groq: model is required: %w", ErrInvalidRequest)
	}

	body, err := json.Marshal(groqChatReq{
		Model: model,
		Messages: func() []groqMsg {
			out := make([]groqMsg, 0, len(messages))
			for _, m := range messages {
				out = append(out, groqMsg{Role: m.Role, Content: m.Content})
			}
			return out
		}(),
	})
	if err != nil {
		return "", fmt.Errorf("groq: marshal: %w", ErrInvalidRequest)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return "", fmt.Errorf("groq: %v: %w", ctx.Err(), ErrModelUnavailable)
			}
		}

		reply, err := p.doChat(ctx, body)
		if err == nil {
			return reply, nil
		}
		// only transient failures are worth a second attempt; quota
		// exhaustion still surfaces as unavailable but is never retried
		if !errors.Is(err, ErrModelUnavailable) || errors.Is(err, errQuota) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (p *GroqProvider) doChat(ctx context.Context, body []byte) (string, error) {
	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("groq: %v: %w", err, ErrInvalidRequest)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		// network error / timeout
		return "", fmt.Errorf("groq: %v: %w", err, ErrModelUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("groq: %s: %w", msg, classifyStatus(resp.StatusCode))
	}

	var decoded groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("groq: decode: %v: %w", err, ErrModelUnavailable)
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", fmt.Errorf("groq: %s: %w", decoded.Error.Message, ErrInvalidRequest)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("groq: empty response: %w", ErrModelUnavailable)
	}
	return decoded.Choices[0].Message.Content, nil
}

var errQuota = errors.New("quota exhausted")

func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuthFailure
	case status == http.StatusTooManyRequests:
		return errors.Join(errQuota, ErrModelUnavailable)
	case status >= 500:
		return ErrModelUnavailable
	default:
		return ErrInvalidRequest
	}
}
