package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"loan-assist-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsAttachmentsAndParameters(t *testing.T) {
	var captured generateRequest
	var path, apiKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"The DSCR "},{"text":"is 1.3."}]}}]}`))
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(context.Background(), Config{APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := p.Generate(context.Background(), "What is the DSCR?",
		llm.WithAttachments(llm.NewAttachment("gs://loans/rent-roll.xlsx", "")),
		llm.WithTemperature(0.5),
		llm.WithTopP(0.95),
		llm.WithMaxTokens(500),
	)
	require.NoError(t, err)
	assert.Equal(t, "The DSCR is 1.3.", out)
	assert.Equal(t, "/models/"+DefaultModel+":generateContent", path)
	assert.Equal(t, "secret", apiKey)

	require.Len(t, captured.Contents, 1)
	parts := captured.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].FileData)
	assert.Equal(t, "gs://loans/rent-roll.xlsx", parts[0].FileData.FileURI)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", parts[0].FileData.MimeType)
	assert.Equal(t, "What is the DSCR?", parts[1].Text)

	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, 500, captured.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, 0.5, *captured.GenerationConfig.Temperature, 1e-9)
	assert.InDelta(t, 0.95, *captured.GenerationConfig.TopP, 1e-9)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-200", status: http.StatusTooManyRequests, body: `{"error":{"message":"quota"}}`},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`},
		{name: "blocked", status: http.StatusOK, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`},
		{name: "empty text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[]},"finishReason":"MAX_TOKENS"}]}`},
		{name: "malformed json", status: http.StatusOK, body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewGeminiProvider(context.Background(), Config{BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = p.Generate(context.Background(), "hi")
			assert.Error(t, err)
		})
	}
}

func TestBuildRequestRoles(t *testing.T) {
	req := buildRequest([]llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
	}, &llm.Options{})

	require.NotNil(t, req.SystemInstruction)
	assert.Equal(t, "be brief", req.SystemInstruction.Parts[0].Text)
	require.Len(t, req.Contents, 3)
	assert.Equal(t, "model", req.Contents[1].Role)
	assert.Nil(t, req.GenerationConfig.Temperature)
}

func TestNewGeminiProviderRequiresCredentials(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), Config{})
	assert.Error(t, err)
}
