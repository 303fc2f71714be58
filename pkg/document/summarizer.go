package document

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/pkg/llm"
	"loan-assist-be/pkg/store"

	"golang.org/x/sync/errgroup"
)

const (
	// summaryInputLimit bounds how much inline text is sent for summarization.
	summaryInputLimit = 8000
	minReadableLength = 10
)

// Summarizer produces short best-effort summaries of loan documents.
type Summarizer struct {
	provider    llm.LLMProvider
	concurrency int
	logger      logger.ILogger
}

func NewSummarizer(provider llm.LLMProvider, log logger.ILogger) *Summarizer {
	return &Summarizer{provider: provider, concurrency: 3, logger: log}
}

// SummarizeAll returns one summary per document in document order. Failed or empty
// documents are reported with Processed=false.
func (s *Summarizer) SummarizeAll(ctx context.Context, loanName string, docs []store.DocumentRef) []store.DocumentSummary {
	summaries := make([]store.DocumentSummary, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			summaries[i] = s.summarize(gctx, loanName, doc)
			return nil
		})
	}
	_ = g.Wait()

	return summaries
}

func (s *Summarizer) summarize(ctx context.Context, loanName string, doc store.DocumentRef) store.DocumentSummary {
	result := store.DocumentSummary{Filename: doc.Filename}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Summarize the loan document %q for the loan %q in 2-3 sentences.\n", doc.Filename, loanName)
	prompt.WriteString("Focus on amounts, parties, dates, terms and anything a loan reviewer should notice.\n")

	var opts []llm.Option
	switch {
	case doc.IsReference():
		prompt.WriteString("The document is attached.")
		opts = append(opts, llm.WithAttachments(llm.NewAttachment(doc.Content, doc.ContentType)))
	case utf8.RuneCountInString(strings.TrimSpace(doc.Content)) > minReadableLength:
		text := doc.Content
		if runes := []rune(text); len(runes) > summaryInputLimit {
			text = string(runes[:summaryInputLimit])
		}
		prompt.WriteString("\nDocument content:\n")
		prompt.WriteString(text)
	default:
		result.Summary = "No readable content"
		return result
	}

	if s.provider == nil {
		result.Summary = "Summary unavailable"
		return result
	}

	opts = append(opts, llm.WithTemperature(0.2), llm.WithMaxTokens(256))
	summary, err := s.provider.Generate(ctx, prompt.String(), opts...)
	if err != nil || strings.TrimSpace(summary) == "" {
		s.logger.Warn("Summarizer", "Document summary failed", map[string]interface{}{
			"filename": doc.Filename,
			"error":    err,
		})
		result.Summary = "Summary unavailable"
		return result
	}

	result.Summary = strings.TrimSpace(summary)
	result.Processed = true
	return result
}
