package correct

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// correctionPrompt instructs the model to return only the fixed text.
// Chat models love to add introductions; the prompt forbids them so the
// response can be used verbatim.
const correctionPrompt = "Correct the OCR errors in the following text. " +
	"If everything is already correct, change nothing. " +
	"Respond with the corrected text only, without any introduction:"

// OpenAIClient implements Corrector against any OpenAI-compatible chat
// completion endpoint.
type OpenAIClient struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewOpenAIClient creates a client for the given endpoint and model.
func NewOpenAIClient(baseURL, model, apiKey string) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

// FromEnv creates a client reading the API key from the environment
// variable named keyEnv. Returns ErrNotConfigured when the variable is
// empty so callers can report correction as unavailable.
func FromEnv(baseURL, model, keyEnv string) (*OpenAIClient, error) {
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: set %s", ErrNotConfigured, keyEnv)
	}
	return NewOpenAIClient(baseURL, model, key), nil
}

// Correct sends the text to the chat completion endpoint and returns the
// model's corrected version.
func (c *OpenAIClient) Correct(ctx context.Context, text string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: correctionPrompt + "\n\n" + text},
		},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return apiResp.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
