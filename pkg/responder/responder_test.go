package responder

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/pkg/llm"
	"loan-assist-be/pkg/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	answer  string
	err     error
	panics  bool
	block   bool
	options *llm.Options
	prompt  string
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (s *stubProvider) Generate(ctx context.Context, p string, opts ...llm.Option) (string, error) {
	s.prompt = p
	s.options = llm.ApplyOptions(llm.Options{}, opts...)
	if s.panics {
		panic("boom")
	}
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.answer, s.err
}

func TestRespondReturnsTrimmedAnswer(t *testing.T) {
	provider := &stubProvider{answer: "  The appraisal came in at $610,000.  \n"}
	r := NewResponder(provider, 0, logger.NewNopLogger())

	attachment := llm.Attachment{URI: "gs://loans/appraisal.pdf", MimeType: "application/pdf"}
	got := r.Respond(context.Background(), "Maple", prompt.Result{Prompt: "p", Attachments: []llm.Attachment{attachment}})

	assert.Equal(t, "The appraisal came in at $610,000.", got)
	require.NotNil(t, provider.options)
	assert.Equal(t, MaxOutputTokens, provider.options.MaxTokens)
	assert.InDelta(t, Temperature, provider.options.Temperature, 1e-9)
	assert.InDelta(t, TopP, provider.options.TopP, 1e-9)
	assert.Equal(t, []llm.Attachment{attachment}, provider.options.Attachments)
	assert.Equal(t, "p", provider.prompt)
}

func TestRespondNeverFails(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.LLMProvider
		loan     string
		want     string
	}{
		{name: "provider error", provider: &stubProvider{err: errors.New("quota exceeded")}, loan: "Maple", want: Apology("Maple")},
		{name: "empty answer", provider: &stubProvider{answer: "   "}, loan: "Maple", want: Apology("Maple")},
		{name: "provider panic", provider: &stubProvider{panics: true}, loan: "", want: Apology("")},
		{name: "no provider", provider: nil, loan: "Oak", want: Apology("Oak")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallbacks := 0
			r := NewResponder(tt.provider, 0, logger.NewNopLogger())
			r.OnFallback(func() { fallbacks++ })

			got := r.Respond(context.Background(), tt.loan, prompt.Result{Prompt: "p"})

			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
			assert.Equal(t, 1, fallbacks)
		})
	}
}

func TestRespondTimeout(t *testing.T) {
	r := NewResponder(&stubProvider{block: true}, 20*time.Millisecond, logger.NewNopLogger())

	got := r.Respond(context.Background(), "Maple", prompt.Result{Prompt: "p"})

	assert.Equal(t, Apology("Maple"), got)
}

func TestApologyMentionsLoan(t *testing.T) {
	assert.Contains(t, Apology("Maple Street"), "Maple Street")
	assert.NotContains(t, Apology(""), "for  right now")
}
