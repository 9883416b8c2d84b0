package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"modelhub/internal/logger"

	"github.com/sirupsen/logrus"
)

// HandleBackend selects how model handles speak to a backend
type HandleBackend string

const (
	BackendGenkit HandleBackend = "genkit"
	BackendHTTP   HandleBackend = "http"
)

// ParseHandleBackend parses a backend name; empty means Genkit
func ParseHandleBackend(s string) (HandleBackend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "genkit", "":
		return BackendGenkit, nil
	case "http":
		return BackendHTTP, nil
	default:
		return "", fmt.Errorf("unknown handle backend: %s", s)
	}
}

// HandleFactoryFor returns the handle constructor of a backend
func HandleFactoryFor(backend HandleBackend) HandleFactory {
	if backend == BackendHTTP {
		return NewHTTPHandleFactory(&http.Client{})
	}
	return NewGenkitHandle
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message Message `json:"message"`
		Delta   Message `json:"delta"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
}

// httpHandle posts to {BaseURL}/chat/completions and reads the SSE stream itself
type httpHandle struct {
	client *http.Client
	spec   HandleSpec
}

// NewHTTPHandleFactory builds handles that speak the OpenAI-compatible
// chat completions protocol directly over client
func NewHTTPHandleFactory(client *http.Client) HandleFactory {
	return func(ctx context.Context, spec HandleSpec) (ModelHandle, error) {
		return &httpHandle{client: client, spec: spec}, nil
	}
}

func (h *httpHandle) Provider() string { return h.spec.Provider }
func (h *httpHandle) Model() string    { return h.spec.Model }

func (h *httpHandle) Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, *Usage, error) {
	resp, err := h.post(ctx, messages, opts, false)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("error reading response body: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", nil, fmt.Errorf("error decoding response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", nil, fmt.Errorf("no response from API")
	}
	return chatResp.Choices[0].Message.Content, chatResp.Usage, nil
}

func (h *httpHandle) Stream(ctx context.Context, messages []Message, opts GenerateOptions, onChunk func(string) error) (*Usage, error) {
	resp, err := h.post(ctx, messages, opts, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	log := logger.Provider(h.spec.Provider)
	var usage *Usage

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk chatCompletionResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			log.WithError(err).Warn("Error parsing stream chunk")
			continue
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if err := onChunk(chunk.Choices[0].Delta.Content); err != nil {
				return usage, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return usage, ctx.Err()
		}
		return usage, fmt.Errorf("error reading stream: %w", err)
	}
	return usage, nil
}

func (h *httpHandle) post(ctx context.Context, messages []Message, opts GenerateOptions, stream bool) (*http.Response, error) {
	reqBody := chatCompletionRequest{
		Model:       h.spec.Model,
		Messages:    messages,
		Stream:      stream,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	url := strings.TrimSuffix(h.spec.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.spec.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.spec.APIKey)
	}

	logger.Provider(h.spec.Provider).WithFields(logrus.Fields{
		"model":         h.spec.Model,
		"stream":        stream,
		"message_count": len(messages),
	}).Info("Calling chat completions")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		resp.Body.Close()
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}
