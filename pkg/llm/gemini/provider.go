package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loan-assist-be/pkg/llm"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const (
	DefaultModel  = "gemini-2.5-flash"
	DefaultRegion = "us-central1"

	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	publicAPIBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
)

// Config selects between Vertex AI (ProjectID set, application default credentials)
// and the public Gemini API (APIKey set).
type Config struct {
	APIKey            string
	ProjectID         string
	Region            string
	Model             string
	RequestsPerSecond float64
	Timeout           time.Duration

	// BaseURL overrides the endpoint root, e.g. for tests.
	BaseURL string
}

type GeminiProvider struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.ProjectID != "" && cfg.BaseURL == "" {
		ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("load google credentials: %w", err)
		}
		client = oauth2.NewClient(ctx, ts)
		client.Timeout = cfg.Timeout
	} else if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("gemini provider needs either GCP_PROJECT_ID or GOOGLE_GEMINI_API_KEY")
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &GeminiProvider{cfg: cfg, client: client, limiter: limiter}, nil
}

// --- Wire types ---

type fileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"fileData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type generateResponse struct {
	Candidates     []candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func (g *GeminiProvider) endpoint(model string) string {
	switch {
	case g.cfg.BaseURL != "":
		return fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.cfg.BaseURL, "/"), model)
	case g.cfg.ProjectID != "":
		return fmt.Sprintf(
			"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
			g.cfg.Region, g.cfg.ProjectID, g.cfg.Region, model,
		)
	default:
		return fmt.Sprintf("%s/models/%s:generateContent", publicAPIBaseURL, model)
	}
}

func buildRequest(history []llm.Message, options *llm.Options) generateRequest {
	req := generateRequest{}
	for _, msg := range history {
		switch msg.Role {
		case "system":
			req.SystemInstruction = &content{Parts: []part{{Text: msg.Content}}}
		case "assistant", "model":
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}

	// Attachments ride along with the last user turn, files before text.
	if len(options.Attachments) > 0 {
		idx := len(req.Contents) - 1
		if idx < 0 || req.Contents[idx].Role != "user" {
			req.Contents = append(req.Contents, content{Role: "user"})
			idx = len(req.Contents) - 1
		}
		files := make([]part, 0, len(options.Attachments)+len(req.Contents[idx].Parts))
		for _, a := range options.Attachments {
			files = append(files, part{FileData: &fileData{MimeType: a.MimeType, FileURI: a.URI}})
		}
		req.Contents[idx].Parts = append(files, req.Contents[idx].Parts...)
	}

	cfg := &generationConfig{MaxOutputTokens: options.MaxTokens}
	if options.Temperature > 0 {
		t := options.Temperature
		cfg.Temperature = &t
	}
	if options.TopP > 0 {
		p := options.TopP
		cfg.TopP = &p
	}
	req.GenerationConfig = cfg
	return req
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{}, opts...)

	model := g.cfg.Model
	if options.Model != "" {
		model = options.Model
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("gemini rate limiter: %w", err)
		}
	}

	payloadJson, err := json.Marshal(buildRequest(history, options))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(model), bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" && g.cfg.ProjectID == "" {
		req.Header.Set("x-goog-api-key", g.cfg.APIKey)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes generateResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(geminiRes.Candidates) == 0 {
		if geminiRes.PromptFeedback != nil && geminiRes.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", geminiRes.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini returned no candidates")
	}

	var text strings.Builder
	for _, p := range geminiRes.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned empty content (finish reason %s)", geminiRes.Candidates[0].FinishReason)
	}

	return text.String(), nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
