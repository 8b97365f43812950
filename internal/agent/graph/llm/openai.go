package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tanpawarit/tripcomposer/internal/agent/graph/tools"
)

// OpenAIConfig configures the OpenAI chat completions backend.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// OpenAIBackend speaks the chat completions API and maps messages to and from eino schema.
type OpenAIBackend struct {
	client *openai.Client
	cfg    OpenAIConfig
	tools  []openai.ChatCompletionToolParam
}

func NewOpenAIBackend(cfg OpenAIConfig, specs []tools.FunctionSpec) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return NewOpenAIBackendFromClient(&client, cfg, specs), nil
}

func NewOpenAIBackendFromClient(client *openai.Client, cfg OpenAIConfig, specs []tools.FunctionSpec) *OpenAIBackend {
	params := make([]openai.ChatCompletionToolParam, len(specs))
	for i, s := range specs {
		params[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        s.Name,
				Description: openai.String(s.Description),
				Parameters:  s.Parameters,
			},
		}
	}
	return &OpenAIBackend{client: client, cfg: cfg, tools: params}
}

func (b *OpenAIBackend) Name() string  { return "openai" }
func (b *OpenAIBackend) Model() string { return b.cfg.Model }

func (b *OpenAIBackend) Generate(ctx context.Context, messages []*schema.Message) (out *schema.Message, err error) {
	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      b.cfg.Model,
		Type:      "OpenAI",
		Component: components.ComponentOfChatModel,
	})
	ctx = callbacks.OnStart(ctx, &einomodel.CallbackInput{Messages: messages})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
			return
		}
		callbacks.OnEnd(ctx, &einomodel.CallbackOutput{Message: out})
	}()

	params := openai.ChatCompletionNewParams{
		Messages:    toOpenAIMessages(messages),
		Model:       b.cfg.Model,
		Temperature: openai.Float(b.cfg.Temperature),
		Tools:       b.tools,
	}
	if b.cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(b.cfg.MaxTokens))
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	ch0 := resp.Choices[0]
	out = &schema.Message{
		Role:    schema.Assistant,
		Content: ch0.Message.Content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: ch0.FinishReason,
			Usage: &schema.TokenUsage{
				PromptTokens:     int(resp.Usage.PromptTokens),
				CompletionTokens: int(resp.Usage.CompletionTokens),
				TotalTokens:      int(resp.Usage.TotalTokens),
			},
		},
	}
	for _, tc := range ch0.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: schema.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out, nil
}

func toOpenAIMessages(messages []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(m.Content))
		case schema.User:
			out = append(out, openai.UserMessage(m.Content))
		case schema.Assistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallParam, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				calls[i] = openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
				Role:      "assistant",
				ToolCalls: calls,
			}})
		case schema.Tool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return out
}
