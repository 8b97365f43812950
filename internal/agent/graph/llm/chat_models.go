package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

// GeminiConfig holds the settings of one Gemini chat model.
type GeminiConfig struct {
	Model          string
	MaxTokens      int
	Temperature    float32
	ThinkingBudget int32
}

// NewGeminiClient creates the shared genai client for every Gemini backend.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiBackend creates a Gemini chat model and binds the tool schemas to it.
func NewGeminiBackend(ctx context.Context, client *genai.Client, config GeminiConfig, tools []*schema.ToolInfo) (*ChatModelBackend, error) {
	geminiCfg := &gemini.Config{
		Client:      client,
		Model:       config.Model,
		Temperature: &config.Temperature,
		MaxTokens:   &config.MaxTokens,
	}
	if config.ThinkingBudget > 0 {
		geminiCfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(config.ThinkingBudget),
		}
	}

	chatModel, err := gemini.NewChatModel(ctx, geminiCfg)
	if err != nil {
		logx.Error().Err(err).Str("model", config.Model).Msg("Error creating Gemini model")
		return nil, fmt.Errorf("error creating Gemini model %s: %w", config.Model, err)
	}

	if len(tools) > 0 {
		if err := chatModel.BindTools(tools); err != nil {
			logx.Error().Err(err).Str("model", config.Model).Msg("Failed to bind tools")
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	logx.Debug().Str("model", config.Model).Int("tools", len(tools)).Msg("Gemini backend ready")
	return NewChatModelBackend("gemini", config.Model, chatModel), nil
}
