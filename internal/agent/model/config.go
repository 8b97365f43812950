package model

import "time"

// ================ Config ================
type OrchestratorConfig struct {
	MaxRounds        int           `envconfig:"ORCHESTRATOR_MAX_ROUNDS" default:"5"`
	HistoryLimit     int           `envconfig:"ORCHESTRATOR_HISTORY_LIMIT" default:"14"`
	ModelTimeout     time.Duration `envconfig:"ORCHESTRATOR_MODEL_TIMEOUT" default:"30s"`
	MaxParallelTools int           `envconfig:"ORCHESTRATOR_MAX_PARALLEL_TOOLS" default:"6"`
	ToolRatePerSec   float64       `envconfig:"ORCHESTRATOR_TOOL_RATE_PER_SEC" default:"20"`
	ToolBurst        int           `envconfig:"ORCHESTRATOR_TOOL_BURST" default:"10"`
}

type PrimaryModelConfig struct {
	Model       string  `envconfig:"PRIMARY_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"PRIMARY_MAX_TOKENS" default:"4096"`
	Temperature float32 `envconfig:"PRIMARY_TEMPERATURE" default:"0.2"`
}

type FallbackModelConfig struct {
	Provider      string  `envconfig:"FALLBACK_PROVIDER" default:"gemini"`
	Model         string  `envconfig:"FALLBACK_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens     int     `envconfig:"FALLBACK_MAX_TOKENS" default:"4096"`
	Temperature   float32 `envconfig:"FALLBACK_TEMPERATURE" default:"0.2"`
	OpenAIAPIKey  string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string  `envconfig:"OPENAI_BASE_URL"`
}

type SessionConfig struct {
	TTL           string        `envconfig:"SESSION_TTL" default:"72h"`
	KeyPrefix     string        `envconfig:"SESSION_KEY_PREFIX" default:"tripcomposer"`
	FlagsCacheTTL time.Duration `envconfig:"SERVICE_FLAGS_CACHE_TTL" default:"30s"`
}

// DefaultOrchestratorConfig mirrors the envconfig defaults for callers that build
// an orchestrator without going through the environment.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		MaxRounds:        5,
		HistoryLimit:     14,
		ModelTimeout:     30 * time.Second,
		MaxParallelTools: 6,
		ToolRatePerSec:   20,
		ToolBurst:        10,
	}
}
