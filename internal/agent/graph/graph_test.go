package graph

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanpawarit/tripcomposer/internal/agent/graph/conversations"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/llm"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/prompts"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/tools"
	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	errx "github.com/tanpawarit/tripcomposer/internal/core/error"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

func init() { logx.Silence() }

type step func(msgs []*schema.Message) (*schema.Message, error)

// scriptedBackend answers each call with the next step; the last step repeats.
type scriptedBackend struct {
	mu    sync.Mutex
	steps []step
	seen  [][]*schema.Message
}

func (b *scriptedBackend) Name() string  { return "fake" }
func (b *scriptedBackend) Model() string { return "fake-1" }

func (b *scriptedBackend) Generate(_ context.Context, msgs []*schema.Message) (*schema.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seen = append(b.seen, append([]*schema.Message(nil), msgs...))
	i := len(b.seen) - 1
	if i >= len(b.steps) {
		i = len(b.steps) - 1
	}
	return b.steps[i](msgs)
}

func (b *scriptedBackend) calls() [][]*schema.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seen
}

func answer(content string) step {
	return func([]*schema.Message) (*schema.Message, error) {
		return &schema.Message{
			Role:    schema.Assistant,
			Content: content,
			ResponseMeta: &schema.ResponseMeta{
				Usage: &schema.TokenUsage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
			},
		}, nil
	}
}

func callTools(calls ...schema.ToolCall) step {
	return func([]*schema.Message) (*schema.Message, error) {
		return &schema.Message{Role: schema.Assistant, ToolCalls: append([]schema.ToolCall(nil), calls...)}, nil
	}
}

func hotelCall(id, destination string) schema.ToolCall {
	return schema.ToolCall{
		ID:   id,
		Type: "function",
		Function: schema.FunctionCall{
			Name:      tools.ToolSearchHotels,
			Arguments: `{"destinationCode":"` + destination + `","checkInDate":"2026-07-01","checkOutDate":"2026-07-08"}`,
		},
	}
}

// slowHotels answers later for earlier destinations so completion order differs from call order.
type slowHotels struct{}

func (slowHotels) SearchHotels(ctx context.Context, req model.HotelSearchRequest) (*model.HotelSearchResult, error) {
	delays := map[string]time.Duration{"AYT": 60 * time.Millisecond, "IST": 30 * time.Millisecond}
	select {
	case <-time.After(delays[req.DestinationCode]):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &model.HotelSearchResult{
		Destination:   req.DestinationCode,
		PropertyCount: 1,
		Hotels: []model.HotelOffer{{
			Code:     req.DestinationCode + "-H",
			Name:     "Hotel " + req.DestinationCode,
			MinPrice: 1000,
			Currency: "USD",
		}},
	}, nil
}

type staticFlags struct {
	flags model.ServiceFlags
	err   error
}

func (s staticFlags) LoadServiceFlags(context.Context) (model.ServiceFlags, error) {
	return s.flags, s.err
}

func newTestOrchestrator(t *testing.T, backend llm.Backend, flags model.ServiceFlagLoader, rounds int) *Orchestrator {
	t.Helper()
	cfg := model.DefaultOrchestratorConfig()
	cfg.MaxRounds = rounds
	o, err := NewOrchestrator(Config{
		Messages:     conversations.NewMessagesManager(nil, cfg),
		Invoker:      llm.NewInvoker(time.Second, backend),
		Dispatcher:   tools.NewDispatcher(tools.Collaborators{Hotels: slowHotels{}}, tools.WithMaxParallel(4)),
		Flags:        flags,
		Orchestrator: cfg,
		Now:          func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return o
}

func userTurn(text string) model.TurnRequest {
	return model.TurnRequest{
		Locale:   "en",
		Messages: []model.ConversationMessage{{Role: "user", Content: text}},
	}
}

const hotelAnswer = `{"message":"Here is a beach option","stage":"proposing","missing":[],"followUps":[],
"packageOptions":[{"id":"opt-1","title":"Beach","draft":{"hotel":{"selected":true,"hotelCode":"IST-H","price":1000,"currency":"USD"}}}]}`

func TestNewOrchestratorValidates(t *testing.T) {
	_, err := NewOrchestrator(Config{})
	assert.Error(t, err)
}

func TestGenerateReplyEmptyHistory(t *testing.T) {
	backend := &scriptedBackend{steps: []step{answer(hotelAnswer)}}
	o := newTestOrchestrator(t, backend, nil, 5)

	res, err := o.GenerateReply(context.Background(), model.TurnRequest{
		Locale:   "ru",
		Messages: []model.ConversationMessage{{Role: "system", Content: "ignored"}, {Role: "user", Content: "   "}},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, prompts.FallbackReply(prompts.LocaleRU), res.Reply)
	assert.Equal(t, model.StageCollecting, res.Reply.Stage)
	assert.Equal(t, []string{"destination", "dates", "travelers"}, res.Reply.Missing)
	assert.Empty(t, res.Reply.PackageOptions)
	assert.Equal(t, model.AuditPass, res.Meta.PriceAudit.Status)
	assert.Empty(t, backend.calls())
}

func TestGenerateReplyToolRoundKeepsCallOrder(t *testing.T) {
	backend := &scriptedBackend{steps: []step{
		callTools(hotelCall("c1", "AYT"), hotelCall("c2", "IST"), hotelCall("", "DXB")),
		answer(hotelAnswer),
	}}
	o := newTestOrchestrator(t, backend, nil, 5)

	var kinds []model.ProgressKind
	res, err := o.GenerateReply(context.Background(), userTurn("beach week in July"), func(_ context.Context, ev model.ProgressEvent) error {
		kinds = append(kinds, ev.Kind)
		return nil
	})
	require.NoError(t, err)

	seen := backend.calls()
	require.Len(t, seen, 2)
	second := seen[1]
	require.GreaterOrEqual(t, len(second), 4)
	toolMsgs := second[len(second)-3:]
	assert.Equal(t, schema.Assistant, second[len(second)-4].Role)
	for _, m := range toolMsgs {
		assert.Equal(t, schema.Tool, m.Role)
		assert.Equal(t, tools.ToolSearchHotels, m.ToolName)
	}
	assert.Equal(t, "c1", toolMsgs[0].ToolCallID)
	assert.Contains(t, toolMsgs[0].Content, `"AYT-H"`)
	assert.Equal(t, "c2", toolMsgs[1].ToolCallID)
	assert.Contains(t, toolMsgs[1].Content, `"IST-H"`)
	assert.True(t, strings.HasPrefix(toolMsgs[2].ToolCallID, "call_"))
	assert.Contains(t, toolMsgs[2].Content, `"DXB-H"`)

	assert.Equal(t, []model.ProgressKind{
		model.ProgressModelRound,
		model.ProgressToolCall, model.ProgressToolCall, model.ProgressToolCall,
		model.ProgressToolResult, model.ProgressToolResult, model.ProgressToolResult,
		model.ProgressModelRound,
		model.ProgressFinalizing,
	}, kinds)

	require.Len(t, res.Reply.PackageOptions, 1)
	h := res.Reply.PackageOptions[0].Draft.Hotel
	require.NotNil(t, h.Price)
	assert.Equal(t, 1000.0, *h.Price)
	assert.Equal(t, model.AuditPass, res.Meta.PriceAudit.Status)

	assert.Equal(t, 2, res.Meta.Rounds)
	assert.Equal(t, "fake:fake-1", res.Meta.Model)
	require.Len(t, res.Meta.ToolCalls, 3)
	assert.Equal(t, "c1", res.Meta.ToolCalls[0].ID)
	assert.True(t, res.Meta.ToolCalls[0].OK)
	assert.Equal(t, 1, res.Meta.ToolCalls[2].Round)
	assert.Equal(t, 100, res.Meta.Usage.PromptTokens)
	assert.False(t, res.Meta.Exhausted)
}

func TestGenerateReplyRemovesUnverifiedPrice(t *testing.T) {
	backend := &scriptedBackend{steps: []step{answer(hotelAnswer)}}
	o := newTestOrchestrator(t, backend, nil, 5)

	res, err := o.GenerateReply(context.Background(), userTurn("anything in Istanbul"), nil)
	require.NoError(t, err)

	require.Len(t, res.Reply.PackageOptions, 1)
	h := res.Reply.PackageOptions[0].Draft.Hotel
	assert.Nil(t, h.Price)
	assert.Nil(t, h.Currency)
	assert.Equal(t, "IST-H", *h.HotelCode)
	assert.Equal(t, model.AuditFail, res.Meta.PriceAudit.Status)
	require.Len(t, res.Meta.PriceAudit.Issues, 1)
	assert.Equal(t, model.ReasonUnverifiedHotelPrice, res.Meta.PriceAudit.Issues[0].Reason)
}

func TestGenerateReplyDropsDisabledService(t *testing.T) {
	flightOnly := `{"message":"Fly there","stage":"proposing","packageOptions":[{"id":"f","title":"Flight",
"draft":{"flight":{"selected":true,"origin":"GYD","destination":"IST"}}}]}`
	backend := &scriptedBackend{steps: []step{answer(flightOnly)}}
	flags := model.AllServicesEnabled()
	flags.Flight = false
	o := newTestOrchestrator(t, backend, staticFlags{flags: flags}, 5)

	res, err := o.GenerateReply(context.Background(), userTurn("flight to Istanbul"), nil)
	require.NoError(t, err)

	assert.Empty(t, res.Reply.PackageOptions)
	assert.Equal(t, model.StageCollecting, res.Reply.Stage)
	assert.Contains(t, res.Reply.FollowUps, prompts.DisabledServicesNotice(prompts.LocaleEN))

	prompt := backend.calls()[0][0]
	assert.Equal(t, schema.System, prompt.Role)
	assert.Contains(t, prompt.Content, `"flight":false`)
}

func TestGenerateReplyFlagLoaderFailsOpen(t *testing.T) {
	backend := &scriptedBackend{steps: []step{answer(hotelAnswer)}}
	o := newTestOrchestrator(t, backend, staticFlags{err: errors.New("redis down")}, 5)

	res, err := o.GenerateReply(context.Background(), userTurn("hotel"), nil)
	require.NoError(t, err)
	assert.Len(t, res.Reply.PackageOptions, 1)
	assert.Contains(t, backend.calls()[0][0].Content, `"hotel":true`)
}

func TestGenerateReplyMalformedAnswerFallsBack(t *testing.T) {
	backend := &scriptedBackend{steps: []step{answer("Sure! Here are some hotels: ...")}}
	o := newTestOrchestrator(t, backend, nil, 5)

	res, err := o.GenerateReply(context.Background(), userTurn("hotel"), nil)
	require.NoError(t, err)
	assert.Equal(t, prompts.FallbackReply(prompts.LocaleEN), res.Reply)
	assert.Equal(t, 1, res.Meta.Rounds)
}

func TestGenerateReplyRoundBudgetExhausted(t *testing.T) {
	backend := &scriptedBackend{steps: []step{callTools(hotelCall("", "IST"))}}
	o := newTestOrchestrator(t, backend, nil, 3)

	res, err := o.GenerateReply(context.Background(), userTurn("keep searching"), nil)
	require.NoError(t, err)

	assert.True(t, res.Meta.Exhausted)
	assert.Equal(t, 3, res.Meta.Rounds)
	assert.Equal(t, prompts.ExhaustedReply(prompts.LocaleEN), res.Reply)
	assert.Len(t, res.Meta.ToolCalls, 2)
	assert.Equal(t, model.AuditPass, res.Meta.PriceAudit.Status)

	seen := backend.calls()
	require.Len(t, seen, 3)
	last := seen[2][len(seen[2])-1]
	assert.Equal(t, schema.System, last.Role)
	assert.Equal(t, prompts.WrapUpNotice(), last.Content)
	for _, m := range seen[1] {
		assert.NotEqual(t, prompts.WrapUpNotice(), m.Content)
	}
}

func TestGenerateReplyProgressAbort(t *testing.T) {
	backend := &scriptedBackend{steps: []step{callTools(hotelCall("c1", "IST")), answer(hotelAnswer)}}
	o := newTestOrchestrator(t, backend, nil, 5)

	boom := errors.New("client went away")
	_, err := o.GenerateReply(context.Background(), userTurn("hotel"), func(_ context.Context, ev model.ProgressEvent) error {
		if ev.Kind == model.ProgressToolCall {
			return boom
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrProgressAborted)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, backend.calls(), 1)
}

func TestGenerateReplyModelFailure(t *testing.T) {
	backend := &scriptedBackend{steps: []step{func([]*schema.Message) (*schema.Message, error) {
		return nil, errors.New("quota exceeded")
	}}}
	o := newTestOrchestrator(t, backend, nil, 5)

	res, err := o.GenerateReply(context.Background(), userTurn("hotel"), nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsModelFailure(err))
}

func TestGenerateReplyCancelled(t *testing.T) {
	backend := &scriptedBackend{steps: []step{answer(hotelAnswer)}}
	o := newTestOrchestrator(t, backend, nil, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.GenerateReply(ctx, userTurn("hotel"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingRepo struct {
	mu    sync.Mutex
	saved []model.TurnRecord
}

func (r *recordingRepo) SaveTurn(_ context.Context, turn model.TurnRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, turn)
	return errors.New("write failed")
}

func (r *recordingRepo) LoadMessages(context.Context, string) ([]model.SessionMessage, error) {
	return nil, nil
}

func TestPersistTurnSwallowsErrors(t *testing.T) {
	repo := &recordingRepo{}
	cfg := model.DefaultOrchestratorConfig()
	o, err := NewOrchestrator(Config{
		Messages:   conversations.NewMessagesManager(repo, cfg),
		Invoker:    llm.NewInvoker(time.Second),
		Dispatcher: tools.NewDispatcher(tools.Collaborators{}),
	})
	require.NoError(t, err)

	o.PersistTurn(context.Background(), model.TurnRecord{SessionID: "s-1", Reply: prompts.FallbackReply(prompts.LocaleEN)})
	require.Len(t, repo.saved, 1)
	assert.False(t, repo.saved[0].CreatedAt.IsZero())
}
