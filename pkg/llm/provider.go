package llm

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Attachment is a large object handed to the model by reference instead of inlined text.
type Attachment struct {
	URI      string
	MimeType string
}

// NewAttachment builds an attachment, deriving the MIME type from the URI extension when none is declared.
func NewAttachment(uri, declaredType string) Attachment {
	mimeType := strings.TrimSpace(declaredType)
	if mimeType == "" {
		mimeType = MimeTypeFor(uri)
	}
	return Attachment{URI: uri, MimeType: mimeType}
}

// MimeTypeFor guesses a MIME type from a file name.
func MimeTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Model       string // Override default model
	Attachments []Attachment
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithTopP(topP float64) Option {
	return func(o *Options) {
		o.TopP = topP
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithAttachments(attachments ...Attachment) Option {
	return func(o *Options) {
		o.Attachments = append(o.Attachments, attachments...)
	}
}

// ApplyOptions resolves options over the given defaults.
func ApplyOptions(defaults Options, opts ...Option) *Options {
	options := defaults
	for _, opt := range opts {
		opt(&options)
	}
	return &options
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
