package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	apperrors "github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/logger"
)

// Client is a thin OpenAI responses-API client shared by every capability in
// this package.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete sends the message list and returns the concatenated output text.
func (c *Client) Complete(ctx context.Context, messages []message) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("openai")

	input, err := json.Marshal(messages)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	body, err := json.Marshal(map[string]string{
		"model": c.model,
		"input": string(input),
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	url := c.baseURL + "/responses"
	log.Debug("calling model %s", c.model)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create request: %v", err)
		return "", apperrors.NewInternalError(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("model call failed: %v", err)
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	log.Debug("model response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("model request failed: status=%d, body=%s", resp.StatusCode, string(snippet))
		return "", apperrors.NewTransportFailureError("openai", fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet)))
	}

	var payload struct {
		Output []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Error("failed to decode model response: %v", err)
		return "", apperrors.NewTransportFailureError("openai", err)
	}

	var out bytes.Buffer
	for _, o := range payload.Output {
		for _, item := range o.Content {
			if item.Type == "output_text" || item.Type == "text" {
				out.WriteString(item.Text)
			}
		}
	}
	return out.String(), nil
}

// classifyTransportError separates deadline expiry from every other transport
// failure so callers can offer retry for the former and fall back for the latter.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTransportTimeoutError("openai", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTransportTimeoutError("openai", err)
	}
	return apperrors.NewTransportFailureError("openai", err)
}
