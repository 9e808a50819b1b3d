package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeChat(t *testing.T, reply string, got *map[string]any) openai.Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-5-nano",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": %q}}]
		}`, reply)
	}))
	t.Cleanup(ts.Close)

	return openai.NewClient(
		option.WithAPIKey("test"),
		option.WithBaseURL(ts.URL),
		option.WithMaxRetries(0),
	)
}

func TestRefine(t *testing.T) {
	var body map[string]any
	r := NewRefiner(fakeChat(t, "  \"paris weather\"\n", &body), "")

	q, err := r.Refine(context.Background(), "um google what's the weather in paris")
	require.NoError(t, err)
	assert.Equal(t, "paris weather", q)

	assert.Equal(t, "gpt-5-nano", body["model"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "um google what's the weather in paris", msgs[1].(map[string]any)["content"])
}

func TestRefine_Empty(t *testing.T) {
	r := NewRefiner(fakeChat(t, "   ", nil), "")

	_, err := r.Refine(context.Background(), "uh")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRefine_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer ts.Close()

	r := NewRefiner(openai.NewClient(
		option.WithAPIKey("test"),
		option.WithBaseURL(ts.URL),
		option.WithMaxRetries(0),
	), "")

	_, err := r.Refine(context.Background(), "golang")
	var apiErr *openai.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
