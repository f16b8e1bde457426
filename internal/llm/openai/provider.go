package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/aura-chat/internal/config"
	"github.com/Rrens/aura-chat/internal/llm"
	goopenai "github.com/sashabaranov/go-openai"
)

// Provider implements llm.Provider for OpenAI-compatible chat APIs.
// Safety settings have no equivalent there and are ignored.
type Provider struct {
	client       *goopenai.Client
	defaultModel string
}

// NewProvider creates a new OpenAI provider
func NewProvider(cfg config.OpenAIConfig) *Provider {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	p := &Provider{defaultModel: model}
	if cfg.APIKey == "" {
		return p
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	p.client = goopenai.NewClientWithConfig(clientConfig)

	return p
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

func (p *Provider) IsConfigured() bool {
	return p.client != nil
}

func (p *Provider) Reply(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("openai provider is not configured (missing API key)")
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     p.defaultModel,
		Messages:  buildMessages(req),
		MaxTokens: int(req.MaxOutputTokens),
	})
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("empty response from openai")
	}

	return &llm.Response{
		Text:       resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMs:  latency,
	}, nil
}

func buildMessages(req llm.Request) []goopenai.ChatCompletionMessage {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.History)+2)

	if req.SystemInstruction != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}

	for _, t := range req.History {
		role := goopenai.ChatMessageRoleUser
		if t.Role == llm.RoleModel {
			role = goopenai.ChatMessageRoleAssistant
		}
		messages = append(messages, goopenai.ChatCompletionMessage{Role: role, Content: t.Text})
	}

	return append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Message,
	})
}
