package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"artassist/internal/config"
)

const defaultClaudeMaxTokens = 3000

var (
	ErrMissingAPIKey   = errors.New("api key is required")
	ErrUnknownProvider = errors.New("provider not configured")
	ErrEmptyResponse   = errors.New("empty model response")
)

// Generator is a text-in/text-out completion backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type chatGenerator struct {
	provider  string
	chatModel model.ToolCallingChatModel
}

// NewGenerator builds a generator for the named provider using the user's API key.
// An empty provider selects cfg.DefaultProvider; an empty model selects the provider's configured model.
func NewGenerator(ctx context.Context, cfg *config.Config, provider, modelName, apiKey string) (Generator, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	name, provCfg, ok := cfg.Provider(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if modelName == "" {
		modelName = provCfg.Model
	}

	var (
		chatModel model.ToolCallingChatModel
		err       error
	)
	switch name {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   modelName,
			APIKey:  apiKey,
		})
	case "gemini":
		clientCfg := &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if provCfg.BaseURL != "" {
			clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: provCfg.BaseURL}
		}
		var client *genai.Client
		client, err = genai.NewClient(ctx, clientCfg)
		if err != nil {
			return nil, fmt.Errorf("new gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelName,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		maxTokens := provCfg.MaxTokens
		if maxTokens <= 0 {
			maxTokens = defaultClaudeMaxTokens
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    apiKey,
			Model:     modelName,
			BaseURL:   baseURLPtr,
			MaxTokens: maxTokens,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s model: %w", name, err)
	}
	return &chatGenerator{provider: name, chatModel: chatModel}, nil
}

// Generate sends a single user message and returns the reply text.
func (g *chatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", g.provider, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Content, nil
}
