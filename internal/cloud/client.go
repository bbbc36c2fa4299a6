// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/hint/internal/util"
)

// Configuration constants for the completion endpoint.
const (
	// DefaultBaseURL is the scheme and host of the completion endpoint.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultPath is the chat completions path.
	DefaultPath = "/v1/chat/completions"

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// errorBodyPreview bounds how much of an unparseable body ends up in errors.
	errorBodyPreview = 400
)

// =============================================================================
// MESSAGES
// =============================================================================

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

// chatRequest is the JSON body sent to the endpoint.
type chatRequest struct {
	Model            string        `json:"model"`
	Temperature      *float64      `json:"temperature,omitempty"`
	Messages         []ChatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	TopP             *float64      `json:"top_p,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	Stop             []string      `json:"stop,omitempty"`
	User             string        `json:"user,omitempty"`
}

// chatResponse is the subset of the completion response hint reads.
type chatResponse struct {
	Choices []struct {
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// apiErrorResponse represents an error envelope returned by the API.
type apiErrorResponse struct {
	Error struct {
		Code    any    `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL    string
	Path       string
	APIKey     string
	HTTPClient *http.Client
}

// Client sends composed requests to the completion endpoint.
type Client struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewClient creates a client. Empty fields fall back to the defaults. An
// empty API key is accepted; the endpoint will reject the request.
func NewClient(cfg ClientConfig) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		url:        base + path,
		httpClient: hc,
	}
}

// URL returns the full endpoint URL.
func (c *Client) URL() string {
	return c.url
}

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "hint/"+Version)
}

// Version is reported in the User-Agent header.
var Version = "0.1.0"

// Complete sends messages and returns the trimmed content of the first
// choice. opts.Model must be set.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage, opts RequestOptions) (string, error) {
	if opts.Model == "" {
		return "", errors.New("cloud: model is required")
	}

	body, err := json.Marshal(opts.request(messages))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{URL: c.url, Err: err}
	}
	c.setHeaders(req)

	log.Printf("API_REQUEST | model=%s messages=%d", opts.Model, len(messages))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	log.Printf("API_RESPONSE | status=%d duration=%v", resp.StatusCode, time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return "", &TransportError{URL: c.url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", handleErrorResponse(resp.StatusCode, data)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &MalformedResponseError{Reason: "invalid JSON", Body: preview(data), Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "missing choices", Body: preview(data)}
	}
	msg := parsed.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", &MalformedResponseError{Reason: "missing message content", Body: preview(data)}
	}

	return strings.TrimSpace(*msg.Content), nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts a non-2xx response into a RemoteError.
func handleErrorResponse(status int, body []byte) error {
	remote := &RemoteError{Status: status}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		remote.Message = apiErr.Error.Message
		remote.Type = apiErr.Error.Type
		if apiErr.Error.Code != nil {
			remote.Code = fmt.Sprint(apiErr.Error.Code)
		}
	} else {
		remote.Message = preview(body)
	}
	return remote
}

func preview(body []byte) string {
	return util.TruncateRunes(strings.TrimSpace(string(body)), errorBodyPreview)
}
