package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/pkg/llm"
	"loan-assist-be/pkg/prompt"
)

// Fixed generation parameters for spoken-style answers.
const (
	MaxOutputTokens = 500
	Temperature     = 0.5
	TopP            = 0.95
)

var errEmptyAnswer = errors.New("model returned an empty answer")

// FallbackObserver is notified whenever an apology is returned instead of a model answer.
type FallbackObserver func()

// Responder turns an assembled prompt into answer text and never fails.
type Responder struct {
	provider   llm.LLMProvider
	timeout    time.Duration
	logger     logger.ILogger
	onFallback FallbackObserver
}

// NewResponder creates a responder; timeout <= 0 leaves model calls unbounded.
func NewResponder(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Responder {
	return &Responder{provider: provider, timeout: timeout, logger: log}
}

func (r *Responder) OnFallback(fn FallbackObserver) {
	r.onFallback = fn
}

// Apology is the reply used whenever the model cannot produce an answer.
func Apology(loanName string) string {
	if strings.TrimSpace(loanName) == "" {
		return "I'm sorry, I couldn't process your question right now. Please try asking again in a moment."
	}
	return fmt.Sprintf("I'm sorry, I couldn't analyze the documents for %s right now. Please try asking again in a moment.", loanName)
}

// Respond returns the trimmed model answer, or Apology(loanName) on any failure.
func (r *Responder) Respond(ctx context.Context, loanName string, assembled prompt.Result) string {
	answer, err := r.generate(ctx, assembled)
	if err != nil {
		r.logger.Error("Responder", "Generative call failed, returning apology", map[string]interface{}{
			"loan_name":     loanName,
			"attachments":   len(assembled.Attachments),
			"prompt_length": len(assembled.Prompt),
			"error":         err,
		})
		if r.onFallback != nil {
			r.onFallback()
		}
		return Apology(loanName)
	}
	return answer
}

func (r *Responder) generate(ctx context.Context, assembled prompt.Result) (answer string, err error) {
	// A misbehaving provider must not take the session loop down with it.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("provider panic: %v", rec)
		}
	}()

	if r.provider == nil {
		return "", errors.New("no generative provider configured")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	opts := []llm.Option{
		llm.WithMaxTokens(MaxOutputTokens),
		llm.WithTemperature(Temperature),
		llm.WithTopP(TopP),
	}
	if len(assembled.Attachments) > 0 {
		opts = append(opts, llm.WithAttachments(assembled.Attachments...))
	}

	text, err := r.provider.Generate(ctx, assembled.Prompt, opts...)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyAnswer
	}
	return text, nil
}
