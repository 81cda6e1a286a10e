package toneguard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompletionServer(t *testing.T, status int, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
			return
		}

		body := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   DefaultModel,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	var seen map[string]any
	srv := newCompletionServer(t, http.StatusOK,
		`{"risk":"high","reason":"Accusatory","rewrite":"Could we talk about pickup times?"}`, &seen)

	c := NewOpenAIClassifier("test-key", srv.URL+"/v1", "")
	v, err := c.Classify(context.Background(), "You never show up on time")

	require.NoError(t, err)
	assert.Equal(t, RiskHigh, v.Risk)
	assert.Equal(t, "Accusatory", v.Reason)
	assert.Equal(t, "Could we talk about pickup times?", v.Rewrite)

	assert.Equal(t, DefaultModel, seen["model"])
	assert.InDelta(t, 0.2, seen["temperature"], 0.0001)
	format, ok := seen["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])

	messages, ok := seen["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "You never show up on time", messages[1].(map[string]any)["content"])
}

func TestOpenAIClassifier_LowDropsRewrite(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, `{"risk":"LOW","reason":"Neutral","rewrite":"ignored"}`, nil)

	v, err := NewOpenAIClassifier("test-key", srv.URL+"/v1", "").Classify(context.Background(), "Pickup at 5?")

	require.NoError(t, err)
	assert.Equal(t, RiskLow, v.Risk)
	assert.Empty(t, v.Rewrite)
}

func TestOpenAIClassifier_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
		want    error
	}{
		{name: "empty content", status: http.StatusOK, content: "", want: ErrEmptyResponse},
		{name: "not json", status: http.StatusOK, content: "looks fine to me", want: ErrInvalidVerdict},
		{name: "unknown risk", status: http.StatusOK, content: `{"risk":"severe"}`, want: ErrInvalidVerdict},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCompletionServer(t, tt.status, tt.content, nil)
			_, err := NewOpenAIClassifier("test-key", srv.URL+"/v1", "").Classify(context.Background(), "hi")

			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
