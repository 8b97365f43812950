package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/tanpawarit/tripcomposer/internal/agent/graph/conversations"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/llm"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/tools"
	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

// BuildConfig holds everything needed to compose the orchestrator end-to-end.
// This is a convenience layer over Config that also constructs the model backends,
// the dispatcher and the MessagesManager.
type BuildConfig struct {
	GeminiAPIKey  string
	GeminiBaseURL string
	Primary       model.PrimaryModelConfig
	Fallback      model.FallbackModelConfig
	Orchestrator  model.OrchestratorConfig

	Collaborators tools.Collaborators
	Sessions      model.SessionRepository
	Flags         model.ServiceFlagLoader
	Signals       model.UserSignalLoader
}

// BuildOrchestrator creates the primary and secondary backends, binds the tool schemas and
// wires the loop.
func BuildOrchestrator(ctx context.Context, cfg BuildConfig) (*Orchestrator, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session repository is nil")
	}

	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL)
	if err != nil {
		return nil, err
	}
	toolInfos := tools.ToolInfos()

	primary, err := llm.NewGeminiBackend(ctx, client, llm.GeminiConfig{
		Model:       cfg.Primary.Model,
		MaxTokens:   cfg.Primary.MaxTokens,
		Temperature: cfg.Primary.Temperature,
	}, toolInfos)
	if err != nil {
		return nil, err
	}

	var secondary llm.Backend
	switch strings.ToLower(cfg.Fallback.Provider) {
	case "openai":
		secondary, err = llm.NewOpenAIBackend(llm.OpenAIConfig{
			APIKey:      cfg.Fallback.OpenAIAPIKey,
			BaseURL:     cfg.Fallback.OpenAIBaseURL,
			Model:       cfg.Fallback.Model,
			MaxTokens:   cfg.Fallback.MaxTokens,
			Temperature: float64(cfg.Fallback.Temperature),
		}, tools.FunctionSpecs())
	case "", "none":
		logx.Warn().Msg("no fallback model configured")
	default:
		secondary, err = llm.NewGeminiBackend(ctx, client, llm.GeminiConfig{
			Model:       cfg.Fallback.Model,
			MaxTokens:   cfg.Fallback.MaxTokens,
			Temperature: cfg.Fallback.Temperature,
		}, toolInfos)
	}
	if err != nil {
		return nil, fmt.Errorf("create fallback backend: %w", err)
	}

	oc := cfg.Orchestrator
	o, err := NewOrchestrator(Config{
		Messages: conversations.NewMessagesManager(cfg.Sessions, oc),
		Invoker:  llm.NewInvoker(oc.ModelTimeout, primary, secondary),
		Dispatcher: tools.NewDispatcher(cfg.Collaborators,
			tools.WithMaxParallel(oc.MaxParallelTools),
			tools.WithRateLimit(oc.ToolRatePerSec, oc.ToolBurst),
		),
		Flags:        cfg.Flags,
		Signals:      cfg.Signals,
		Orchestrator: oc,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().
		Str("primary", cfg.Primary.Model).
		Str("fallback", cfg.Fallback.Provider+":"+cfg.Fallback.Model).
		Msg("Orchestrator built successfully")
	return o, nil
}
