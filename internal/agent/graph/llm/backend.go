package llm

import (
	"context"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Backend is one language model provider in the fallback chain.
type Backend interface {
	// Name is the provider label used in logs.
	Name() string
	// Model is the model id, used for pricing and reported in turn metadata.
	Model() string
	Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error)
}

// ChatModelBackend adapts any eino chat model with tools already bound.
type ChatModelBackend struct {
	name  string
	model string
	chat  einomodel.BaseChatModel
}

func NewChatModelBackend(name, modelName string, chat einomodel.BaseChatModel) *ChatModelBackend {
	return &ChatModelBackend{name: name, model: modelName, chat: chat}
}

func (b *ChatModelBackend) Name() string  { return b.name }
func (b *ChatModelBackend) Model() string { return b.model }

func (b *ChatModelBackend) Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      b.model,
		Type:      b.name,
		Component: components.ComponentOfChatModel,
	})
	return b.chat.Generate(ctx, messages)
}
