package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/aura-chat/internal/config"
	"github.com/Rrens/aura-chat/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-1.5-flash"

// Provider talks to the Gemini API through a single client created at
// startup and shared by all requests.
type Provider struct {
	client *genai.Client
	model  string
}

// NewProvider creates the Gemini client. An empty API key yields an
// unconfigured provider rather than an error.
func NewProvider(ctx context.Context, cfg config.GeminiConfig) (*Provider, error) {
	p := &Provider{model: cfg.Model}
	if cfg.APIKey == "" {
		return p, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	p.client = client

	return p, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return defaultModel
}

func (p *Provider) IsConfigured() bool {
	return p.client != nil
}

// Close releases the underlying client
func (p *Provider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *Provider) Reply(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	model := p.DefaultModel()
	generativeModel := p.client.GenerativeModel(model)
	applyRequest(generativeModel, req)

	chat := generativeModel.StartChat()
	chat.History = buildHistory(req.History)

	start := time.Now()
	resp, err := chat.SendMessage(ctx, genai.Text(req.Message))
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Text:       text,
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  latency,
	}, nil
}

func applyRequest(m *genai.GenerativeModel, req llm.Request) {
	if req.SystemInstruction != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemInstruction)},
		}
	}
	if req.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(req.MaxOutputTokens)
	}

	m.SafetySettings = make([]*genai.SafetySetting, 0, len(req.SafetySettings))
	for _, s := range req.SafetySettings {
		m.SafetySettings = append(m.SafetySettings, &genai.SafetySetting{
			Category:  harmCategory(s.Category),
			Threshold: blockThreshold(s.Threshold),
		})
	}
}

func buildHistory(turns []llm.Turn) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		history = append(history, &genai.Content{
			Role:  string(t.Role),
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return history
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	return sb.String(), nil
}

func harmCategory(c llm.HarmCategory) genai.HarmCategory {
	switch c {
	case llm.HarmCategoryHarassment:
		return genai.HarmCategoryHarassment
	case llm.HarmCategoryHateSpeech:
		return genai.HarmCategoryHateSpeech
	default:
		return genai.HarmCategoryUnspecified
	}
}

func blockThreshold(t llm.BlockThreshold) genai.HarmBlockThreshold {
	switch t {
	case llm.BlockLowAndAbove:
		return genai.HarmBlockLowAndAbove
	case llm.BlockMediumAndAbove:
		return genai.HarmBlockMediumAndAbove
	case llm.BlockOnlyHigh:
		return genai.HarmBlockOnlyHigh
	case llm.BlockNone:
		return genai.HarmBlockNone
	default:
		return genai.HarmBlockUnspecified
	}
}
