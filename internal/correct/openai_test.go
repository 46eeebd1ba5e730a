package correct

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClientCorrect(t *testing.T) {
	t.Parallel()

	t.Run("returns the corrected text from the first choice", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("unexpected auth header: %s", got)
			}

			var reqBody map[string]any
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if reqBody["model"] != "gpt-4o-mini" {
				t.Errorf("unexpected model: %v", reqBody["model"])
			}
			messages, ok := reqBody["messages"].([]any)
			if !ok || len(messages) != 1 {
				t.Fatalf("expected one message, got %v", reqBody["messages"])
			}
			content := messages[0].(map[string]any)["content"].(string)
			if !strings.Contains(content, "la mais0n") {
				t.Errorf("message does not carry the text to correct: %q", content)
			}

			resp := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": "la maison"}},
				},
			}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				t.Errorf("encode response: %v", err)
			}
		}))
		defer server.Close()

		c := NewOpenAIClient(server.URL, "gpt-4o-mini", "test-key")
		got, err := c.Correct(context.Background(), "la mais0n")
		if err != nil {
			t.Fatalf("Correct() error = %v", err)
		}
		if got != "la maison" {
			t.Errorf("Correct() = %q, want %q", got, "la maison")
		}
	})

	t.Run("non-200 status becomes an error naming the status", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := NewOpenAIClient(server.URL, "gpt-4o-mini", "test-key")
		_, err := c.Correct(context.Background(), "text")
		if err == nil {
			t.Fatal("Correct() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "429") {
			t.Errorf("error %q does not mention the status code", err)
		}
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if err := json.NewEncoder(w).Encode(map[string]any{"choices": []any{}}); err != nil {
				t.Errorf("encode response: %v", err)
			}
		}))
		defer server.Close()

		c := NewOpenAIClient(server.URL, "gpt-4o-mini", "test-key")
		_, err := c.Correct(context.Background(), "text")
		if err == nil || !strings.Contains(err.Error(), "no choices") {
			t.Errorf("Correct() error = %v, want no choices error", err)
		}
	})

	t.Run("trailing slash on the base url is tolerated", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			resp := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": "ok"}},
				},
			}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				t.Errorf("encode response: %v", err)
			}
		}))
		defer server.Close()

		c := NewOpenAIClient(server.URL+"/v1/", "gpt-4o-mini", "")
		if _, err := c.Correct(context.Background(), "text"); err != nil {
			t.Fatalf("Correct() error = %v", err)
		}
	})
}

func TestFromEnv(t *testing.T) {
	t.Run("missing key reports not configured", func(t *testing.T) {
		t.Setenv("SCANTEXT_TEST_AI_KEY", "")

		_, err := FromEnv("https://api.openai.com/v1", "gpt-4o-mini", "SCANTEXT_TEST_AI_KEY")
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("FromEnv() error = %v, want %v", err, ErrNotConfigured)
		}
	})

	t.Run("key in the environment yields a client", func(t *testing.T) {
		t.Setenv("SCANTEXT_TEST_AI_KEY", "secret")

		c, err := FromEnv("https://api.openai.com/v1", "gpt-4o-mini", "SCANTEXT_TEST_AI_KEY")
		if err != nil {
			t.Fatalf("FromEnv() error = %v", err)
		}
		if c == nil {
			t.Fatal("FromEnv() returned nil client")
		}
	})
}
