package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tanpawarit/tripcomposer/internal/agent/catalog"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/conversations"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/tools"
	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	"github.com/tanpawarit/tripcomposer/internal/agent/repo"
	"github.com/tanpawarit/tripcomposer/internal/core"
	errx "github.com/tanpawarit/tripcomposer/internal/core/error"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
	pkgredis "github.com/tanpawarit/tripcomposer/pkg/redis"
)

// AppConfig defines all configurable parameters for the demo runner,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Primary      model.PrimaryModelConfig
	Fallback     model.FallbackModelConfig
	Orchestrator model.OrchestratorConfig
	Session      model.SessionConfig

	// Demo
	CatalogLatency time.Duration `envconfig:"CATALOG_LATENCY" default:"150ms"`
	DemoUserID     string        `envconfig:"DEMO_USER_ID" default:"demo-user"`
}

func main() {
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("Warning: Could not load .env file: %v\n", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(envCfg.Environment),
		Level:       envCfg.LogLevel,
	})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()

	logx.Info().Msg("Connected to Redis successfully")

	// ====================================================
	// Build orchestrator config entirely from env
	ttl, err := time.ParseDuration(envCfg.Session.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("value", envCfg.Session.TTL).Msg("Invalid SESSION_TTL")
	}

	prefix := envCfg.Session.KeyPrefix
	signals := repo.NewRedisUserSignalStore(rdb, prefix)
	if err := seedDemoSignals(ctx, signals, envCfg.DemoUserID); err != nil {
		logx.Warn().Err(err).Msg("Failed to seed demo user signals")
	}

	cat := catalog.New(catalog.WithLatency(envCfg.CatalogLatency))
	orchestrator, err := graph.BuildOrchestrator(ctx, graph.BuildConfig{
		GeminiAPIKey:  envCfg.APIKey,
		GeminiBaseURL: envCfg.BaseURL,
		Primary:       envCfg.Primary,
		Fallback:      envCfg.Fallback,
		Orchestrator:  envCfg.Orchestrator,
		Collaborators: tools.Collaborators{
			Destinations: cat,
			Hotels:       cat,
			Transfers:    cat,
			Excursions:   cat,
			Flights:      cat,
			Insurance:    cat,
		},
		Sessions: repo.NewRedisSessionRepository(rdb, prefix, ttl),
		Flags:    repo.NewRedisServiceFlagStore(rdb, prefix, envCfg.Session.FlagsCacheTTL),
		Signals:  signals,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build orchestrator")
	}

	testTurns := []struct {
		description string
		query       string
	}{
		{
			description: "Open request without details",
			query:       "Hi! I want a summer vacation by the sea.",
		},
		{
			description: "Destination, dates and travelers",
			query:       "Antalya, July 1 to July 8, two adults from Baku. Hotel, transfer and flights please.",
		},
		{
			description: "Add excursions and insurance",
			query:       "Add a couple of excursions and travel insurance for both of us.",
		},
	}

	sessionID := uuid.NewString()
	trip := &model.TripContext{OriginCode: "GYD", Adults: 2, Rooms: 1, Currency: "USD"}
	var history []model.ConversationMessage

	for i, test := range testTurns {
		fmt.Printf("\n🚀 Turn %d: %s\n", i+1, test.description)
		fmt.Printf("Query: \"%s\"\n", test.query)
		fmt.Println("Processing...")

		history = append(history, model.ConversationMessage{Role: model.RoleUser, Content: test.query})
		req := model.TurnRequest{
			Locale:   "en",
			Messages: history,
			Context:  trip,
			UserID:   envCfg.DemoUserID,
		}

		result, err := orchestrator.GenerateReply(ctx, req, printProgress)
		if err != nil {
			logx.Fatal().Err(err).Int("status", errx.StatusOf(err)).Bool("model_failure", graph.IsModelFailure(err)).
				Msgf("Failed to generate reply for turn %d", i+1)
		}

		orchestrator.PersistTurn(ctx, model.TurnRecord{
			SessionID:   sessionID,
			Locale:      req.Locale,
			UserID:      req.UserID,
			UserMessage: conversations.LastUserMessage(history),
			Context:     req.Context,
			Reply:       result.Reply,
			Model:       result.Meta.Model,
			ToolCalls:   result.Meta.ToolCalls,
			PriceAudit:  result.Meta.PriceAudit,
		})
		history = append(history, model.ConversationMessage{Role: model.RoleAssistant, Content: result.Reply.Message})

		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Printf("✅ Reply %d:\n%s\n", i+1, out)
		fmt.Println("───────────────────────────────────────────────")
	}

	fmt.Printf("🎉 Demo session %s completed\n", sessionID)
}

func printProgress(_ context.Context, ev model.ProgressEvent) error {
	switch ev.Kind {
	case model.ProgressModelRound:
		fmt.Printf("  · round %d: thinking...\n", ev.Round)
	case model.ProgressToolCall:
		fmt.Printf("  · round %d: calling %s\n", ev.Round, ev.ToolName)
	case model.ProgressToolResult:
		fmt.Printf("  · round %d: %s done (ok=%t)\n", ev.Round, ev.ToolName, ev.OK)
	case model.ProgressFinalizing:
		fmt.Println("  · checking prices...")
	}
	return nil
}

func seedDemoSignals(ctx context.Context, store *repo.RedisUserSignalStore, userID string) error {
	return store.SaveUserSignals(ctx, userID, model.UserSignals{
		Profile: &model.UserProfile{
			HomeCity:          "Baku",
			HomeAirport:       "GYD",
			PreferredCurrency: "USD",
			PreferredLanguage: "en",
		},
		RecentSearches: []model.RecentSearch{
			{Service: model.ServiceHotel, Destination: "AYT", CheckInDate: "2026-07-01", SearchedAt: time.Now().Add(-48 * time.Hour)},
		},
		FavoriteHotels: []model.FavoriteHotel{{Code: "AYT-SEA-01", Name: "Sea Breeze Resort"}},
	})
}
