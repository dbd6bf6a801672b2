package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deck-server/internal/config"
)

func newTestProvider(t *testing.T, clientType, baseURL string) TextGenerationProvider {
	t.Helper()
	p, err := NewProvider(config.AIConfig{
		ClientType:  clientType,
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Timeout:     5 * time.Second,
		Temperature: 0.5,
		MaxTokens:   256,
	}, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestNewProvider_UnknownType(t *testing.T) {
	_, err := NewProvider(config.AIConfig{ClientType: "bard"}, zap.NewNop())
	require.Error(t, err)
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "cmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"slides\": [\"a\"]}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`)
	}))
	defer srv.Close()

	p := newTestProvider(t, "openai", srv.URL)
	text, usage, err := p.Generate(context.Background(), Request{
		Operation:    "outline",
		SystemPrompt: "system",
		UserPrompt:   "user",
		JSONSchema:   map[string]any{"type": "object"},
		SchemaName:   "outline",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"slides": ["a"]}`, text)
	assert.Equal(t, Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, usage)

	require.NotNil(t, captured)
	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.InDelta(t, 0.5, captured["temperature"], 1e-6)
	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok, "response_format must be set when a schema is given")
	assert.Equal(t, "json_schema", format["type"])
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenAIProvider_GenerateErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`)
		}))
		defer srv.Close()

		_, _, err := newTestProvider(t, "openai", srv.URL).Generate(context.Background(), Request{UserPrompt: "hi"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGenerationFailed))
	})

	t.Run("empty response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id": "x", "choices": []}`)
		}))
		defer srv.Close()

		_, _, err := newTestProvider(t, "openai", srv.URL).Generate(context.Background(), Request{UserPrompt: "hi"})
		assert.ErrorIs(t, err, ErrGenerationFailed)
	})

	t.Run("empty prompt", func(t *testing.T) {
		_, _, err := newTestProvider(t, "openai", "http://127.0.0.1:1").Generate(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrGenerationFailed)
	})
}

func writeSSE(w http.ResponseWriter, chunks ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, c := range chunks {
		fmt.Fprintf(w, "data: %s\n\n", c)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestOpenAIProvider_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			`{"id":"s","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"{\"slides\":"}}]}`,
			`{"id":"s","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" [\"a\"]}"}}]}`,
			`{"id":"s","object":"chat.completion.chunk","choices":[],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`,
		)
	}))
	defer srv.Close()

	var got strings.Builder
	usage, err := newTestProvider(t, "openai", srv.URL).Stream(context.Background(), Request{UserPrompt: "hi"}, func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, `{"slides": ["a"]}`, got.String())
	assert.Equal(t, 7, usage.TotalTokens)
	assert.False(t, usage.Estimated)
}

func TestOpenAIProvider_StreamHandlerErrorAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			`{"id":"s","choices":[{"index":0,"delta":{"content":"one"}}]}`,
			`{"id":"s","choices":[{"index":0,"delta":{"content":"two"}}]}`,
			`{"id":"s","choices":[],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`,
		)
	}))
	defer srv.Close()

	stop := errors.New("client went away")
	calls := 0
	_, err := newTestProvider(t, "openai", srv.URL).Stream(context.Background(), Request{UserPrompt: "hi"}, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestOllamaProvider_Generate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"model":"gpt-4o-mini","message":{"role":"assistant","content":"[0, 1]"},"done":true,"done_reason":"stop","prompt_eval_count":12,"eval_count":3}`+"\n")
	}))
	defer srv.Close()

	p := newTestProvider(t, "ollama", srv.URL+"/v1")
	text, usage, err := p.Generate(context.Background(), Request{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		JSONSchema:   map[string]any{"type": "array"},
	})
	require.NoError(t, err)
	assert.Equal(t, "[0, 1]", text)
	assert.Equal(t, 15, usage.TotalTokens)

	assert.Equal(t, false, captured["stream"])
	assert.Equal(t, map[string]any{"type": "array"}, captured["format"])
}

func TestOllamaProvider_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"Hel"},"done":false}`+"\n")
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"lo"},"done":false}`+"\n")
		fmt.Fprint(w, `{"message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","prompt_eval_count":2,"eval_count":2}`+"\n")
	}))
	defer srv.Close()

	var chunks []string
	usage, err := newTestProvider(t, "ollama", srv.URL).Stream(context.Background(), Request{UserPrompt: "hi"}, func(c string) error {
		chunks = append(chunks, c)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, chunks)
	assert.Equal(t, 4, usage.TotalTokens)
}

func TestGenerationDefaults(t *testing.T) {
	d := generationDefaults{Temperature: 0.7, MaxTokens: 100}
	temp := 0.1
	tokens := 5
	assert.Equal(t, 0.7, d.temperature(nil))
	assert.Equal(t, 0.1, d.temperature(&temp))
	assert.Equal(t, 100, d.maxTokens(nil))
	assert.Equal(t, 5, d.maxTokens(&tokens))
}
