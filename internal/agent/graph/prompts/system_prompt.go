package prompts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

//go:embed template/system_prompt.txt
var systemPromptTemplate string

//go:embed template/wrap_up.txt
var wrapUpNotice string

// Signal snapshot caps keep the prompt bounded for heavy users.
const (
	maxRecentSearches = 5
	maxFavoriteHotels = 5
	maxRecentBookings = 3
	maxRecentSessions = 3
)

// SystemInput is everything the system prompt is built from.
type SystemInput struct {
	Locale  Locale
	Flags   model.ServiceFlags
	Signals *model.UserSignals
	Trip    model.TripContext
	Now     time.Time
}

// ToolNames are injected so the template never drifts from the registry.
type ToolNames struct {
	Destinations string
	Hotels       string
	Transfers    string
	Excursions   string
	Flights      string
	Insurance    string
}

// RenderSystem renders the instruction block via the eino prompt component so prompt
// callbacks fire for observability.
func RenderSystem(ctx context.Context, in SystemInput, names ToolNames) (string, error) {
	flagsJSON, err := json.Marshal(in.Flags)
	if err != nil {
		return "", fmt.Errorf("marshal service flags: %w", err)
	}
	signalsJSON, err := json.Marshal(SummarizeSignals(in.Signals))
	if err != nil {
		return "", fmt.Errorf("marshal user signals: %w", err)
	}
	tripJSON, err := json.Marshal(in.Trip)
	if err != nil {
		return "", fmt.Errorf("marshal trip context: %w", err)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPromptTemplate),
	)
	vars := map[string]any{
		"Language":     LanguageName(in.Locale),
		"Today":        now.UTC().Format("2006-01-02"),
		"Tools":        names,
		"MaxOptions":   model.MaxPackageOptions,
		"ServiceFlags": string(flagsJSON),
		"UserSignals":  string(signalsJSON),
		"TripContext":  string(tripJSON),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// WrapUpNotice tells the model the next answer must be the final JSON reply.
func WrapUpNotice() string {
	return wrapUpNotice
}

// SummarizeSignals trims the user-signal document to the fields the model needs.
func SummarizeSignals(s *model.UserSignals) model.UserSignals {
	if s == nil {
		return model.UserSignals{
			RecentSearches:          []model.RecentSearch{},
			FavoriteHotels:          []model.FavoriteHotel{},
			RecentBookings:          []model.RecentBooking{},
			RecentAssistantSessions: []model.AssistantSession{},
		}
	}
	return model.UserSignals{
		Profile:                 s.Profile,
		RecentSearches:          lo.Subset(s.RecentSearches, 0, maxRecentSearches),
		FavoriteHotels:          lo.Subset(s.FavoriteHotels, 0, maxFavoriteHotels),
		RecentBookings:          lo.Subset(s.RecentBookings, 0, maxRecentBookings),
		RecentAssistantSessions: lo.Subset(s.RecentAssistantSessions, 0, maxRecentSessions),
	}
}
