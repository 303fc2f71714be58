package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/pkg/llm"
	"loan-assist-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	fail func(prompt string) bool
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (p *scriptedProvider) Generate(_ context.Context, prompt string, opts ...llm.Option) (string, error) {
	if p.fail != nil && p.fail(prompt) {
		return "", errors.New("quota exceeded")
	}
	o := llm.ApplyOptions(llm.Options{}, opts...)
	if len(o.Attachments) > 0 {
		return "  Attached summary of " + o.Attachments[0].URI + "  ", nil
	}
	return "Inline summary", nil
}

func TestSummarizeAll(t *testing.T) {
	provider := &scriptedProvider{fail: func(prompt string) bool {
		return strings.Contains(prompt, "broken.txt")
	}}
	s := NewSummarizer(provider, logger.NewNopLogger())

	got := s.SummarizeAll(context.Background(), "Maple St Refi", []store.DocumentRef{
		{Filename: "appraisal.pdf", Content: "gs://loans/appraisal.pdf", Reference: true},
		{Filename: "notes.txt", Content: "Borrower has 12 years at current employer."},
		{Filename: "empty.txt", Content: "  "},
		{Filename: "broken.txt", Content: "This one will fail at the provider."},
	})

	require.Len(t, got, 4)
	assert.Equal(t, store.DocumentSummary{Filename: "appraisal.pdf", Summary: "Attached summary of gs://loans/appraisal.pdf", Processed: true}, got[0])
	assert.Equal(t, store.DocumentSummary{Filename: "notes.txt", Summary: "Inline summary", Processed: true}, got[1])
	assert.False(t, got[2].Processed)
	assert.False(t, got[3].Processed)
	assert.Equal(t, "Summary unavailable", got[3].Summary)
}

func TestSummarizeAllEmpty(t *testing.T) {
	s := NewSummarizer(&scriptedProvider{}, logger.NewNopLogger())
	assert.Empty(t, s.SummarizeAll(context.Background(), "x", nil))
}

func TestSummarizeAllWithoutProvider(t *testing.T) {
	s := NewSummarizer(nil, logger.NewNopLogger())

	got := s.SummarizeAll(context.Background(), "Maple", []store.DocumentRef{
		{Filename: "memo.txt", Content: "Credit memo approved by committee."},
	})

	require.Len(t, got, 1)
	assert.False(t, got[0].Processed)
	assert.Equal(t, "Summary unavailable", got[0].Summary)
}

func TestSummarizeInlineContentPolicy(t *testing.T) {
	s := NewSummarizer(&scriptedProvider{}, logger.NewNopLogger())

	got := s.SummarizeAll(context.Background(), "Maple", []store.DocumentRef{
		{Filename: "manifest.txt", Content: "gs://loans/a.pdf was uploaded by the borrower on 2024-01-02"},
		{Filename: "stamp.txt", Content: "貸付承認済み"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, store.DocumentSummary{Filename: "manifest.txt", Summary: "Inline summary", Processed: true}, got[0])
	assert.Equal(t, store.DocumentSummary{Filename: "stamp.txt", Summary: "No readable content"}, got[1])
}
