package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/tanpawarit/tripcomposer/internal/agent/graph/audit"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/conversations"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/evidence"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/llm"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/observers"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/parsers"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/prompts"
	"github.com/tanpawarit/tripcomposer/internal/agent/graph/tools"
	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	errx "github.com/tanpawarit/tripcomposer/internal/core/error"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

// Config holds everything needed to run the orchestration loop.
type Config struct {
	Messages     *conversations.MessagesManager
	Invoker      *llm.Invoker
	Dispatcher   *tools.Dispatcher
	Flags        model.ServiceFlagLoader
	Signals      model.UserSignalLoader
	Orchestrator model.OrchestratorConfig

	// Now is overridable in tests.
	Now func() time.Time
}

// Orchestrator drives model calls and tool rounds for one turn at a time. It keeps no
// per-call state, so one instance serves concurrent turns.
type Orchestrator struct {
	mm         *conversations.MessagesManager
	invoker    *llm.Invoker
	dispatcher *tools.Dispatcher
	flags      model.ServiceFlagLoader
	signals    model.UserSignalLoader
	maxRounds  int
	now        func() time.Time
}

func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Messages == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if cfg.Invoker == nil {
		return nil, fmt.Errorf("model invoker is nil")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("tool dispatcher is nil")
	}

	maxRounds := cfg.Orchestrator.MaxRounds
	if maxRounds <= 0 {
		maxRounds = model.DefaultOrchestratorConfig().MaxRounds
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logx.Debug().Int("max_rounds", maxRounds).Msg("Orchestrator ready")
	return &Orchestrator{
		mm:         cfg.Messages,
		invoker:    cfg.Invoker,
		dispatcher: cfg.Dispatcher,
		flags:      cfg.Flags,
		signals:    cfg.Signals,
		maxRounds:  maxRounds,
		now:        now,
	}, nil
}

// turn is the request-scoped state of one GenerateReply call.
type turn struct {
	locale   prompts.Locale
	flags    model.ServiceFlags
	trip     model.TripContext
	ledger   *evidence.Ledger
	meta     model.TurnMeta
	progress model.ProgressFunc
	now      func() time.Time
}

func (t *turn) emit(ctx context.Context, ev model.ProgressEvent) error {
	if t.progress == nil {
		return nil
	}
	ev.At = t.now()
	if err := t.progress(ctx, ev); err != nil {
		return fmt.Errorf("%w: %s: %w", errx.ErrProgressAborted, ev.Kind, err)
	}
	return nil
}

// GenerateReply runs the bounded model/tool loop and returns a filtered, price-audited reply.
// It fails only when every model backend fails, the progress callback fails, or ctx ends.
func (o *Orchestrator) GenerateReply(ctx context.Context, req model.TurnRequest, onProgress model.ProgressFunc) (*model.TurnResult, error) {
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{Name: "TripComposer", Type: "Orchestrator"}, observers.NewAllCallbacks())

	t := &turn{
		locale:   prompts.ParseLocale(req.Locale),
		trip:     req.Trip(),
		ledger:   evidence.NewLedger(),
		progress: onProgress,
		now:      o.now,
		meta:     model.TurnMeta{ToolCalls: []model.ToolCallTrace{}},
	}

	history := o.mm.Normalize(req.Messages)
	t.flags = o.loadFlags(ctx)
	if len(history) == 0 {
		logx.Debug().Str("locale", string(t.locale)).Msg("empty history, returning fallback reply")
		return o.finalize(ctx, t, prompts.FallbackReply(t.locale))
	}

	systemPrompt, err := prompts.RenderSystem(ctx, prompts.SystemInput{
		Locale:  t.locale,
		Flags:   t.flags,
		Signals: o.loadSignals(ctx, req.UserID),
		Trip:    t.trip,
		Now:     o.now(),
	}, toolNames())
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}
	messages := o.mm.BuildContext(systemPrompt, history)

	for round := 1; round <= o.maxRounds; round++ {
		if err := t.emit(ctx, model.ProgressEvent{Kind: model.ProgressModelRound, Round: round}); err != nil {
			return nil, err
		}
		if round == o.maxRounds && o.maxRounds > 1 {
			messages = append(messages, schema.SystemMessage(prompts.WrapUpNotice()))
		}

		out, backend, err := o.invoker.Generate(ctx, messages)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		t.meta.Rounds = round
		t.meta.Model = backend.Name() + ":" + backend.Model()
		o.recordUsage(t, out, backend)

		if len(out.ToolCalls) == 0 {
			reply, ok := parsers.ParseReply(out.Content, t.locale)
			if !ok {
				logx.Warn().Int("round", round).Str("model", t.meta.Model).Msg("model reply unusable, degrading to fallback")
			}
			return o.finalize(ctx, t, reply)
		}

		calls := assignCallIDs(out)
		if round == o.maxRounds {
			// No round is left to read the results.
			logx.Warn().Int("round", round).Int("tool_calls", len(calls)).Msg("tool calls ignored on the last round")
			break
		}
		messages = append(messages, out)
		if err := o.runTools(ctx, t, round, calls, &messages); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	logx.Warn().
		Int("rounds", o.maxRounds).
		Int("evidence", t.ledger.Len()).
		Msg("round budget exhausted without a final reply")
	t.meta.Exhausted = true
	return o.finalize(ctx, t, prompts.ExhaustedReply(t.locale))
}

// PersistTurn stores a finished turn. Failures are logged and never returned.
func (o *Orchestrator) PersistTurn(ctx context.Context, record model.TurnRecord) {
	o.mm.PersistTurn(ctx, record)
}

// runTools dispatches one round of tool calls and appends a tool message per call, in call order.
func (o *Orchestrator) runTools(ctx context.Context, t *turn, round int, calls []model.ToolCall, messages *[]*schema.Message) error {
	for _, c := range calls {
		if err := t.emit(ctx, model.ProgressEvent{
			Kind:       model.ProgressToolCall,
			Round:      round,
			ToolName:   c.Name,
			ToolCallID: c.ID,
		}); err != nil {
			return err
		}
	}

	results := o.dispatcher.Dispatch(ctx, calls, t.trip)

	for i, c := range calls {
		res := results[i]
		t.ledger.Record(res)
		t.meta.ToolCalls = append(t.meta.ToolCalls, model.ToolCallTrace{
			ID:         c.ID,
			Name:       c.Name,
			OK:         res.OK,
			Round:      round,
			DurationMS: res.Elapsed.Milliseconds(),
		})

		msg := schema.ToolMessage(encodeResult(res), c.ID)
		msg.ToolName = c.Name
		*messages = append(*messages, msg)

		if err := t.emit(ctx, model.ProgressEvent{
			Kind:       model.ProgressToolResult,
			Round:      round,
			ToolName:   c.Name,
			ToolCallID: c.ID,
			OK:         res.OK,
		}); err != nil {
			return err
		}
	}

	logx.Debug().
		Int("round", round).
		Int("tool_calls", len(calls)).
		Int("evidence", t.ledger.Len()).
		Msg("tool round joined")
	return nil
}

// finalize applies the availability filter and the price audit. Every reply leaves through here.
func (o *Orchestrator) finalize(ctx context.Context, t *turn, reply model.AssistantReply) (*model.TurnResult, error) {
	if err := t.emit(ctx, model.ProgressEvent{Kind: model.ProgressFinalizing, Round: t.meta.Rounds}); err != nil {
		return nil, err
	}

	filtered, removed := audit.FilterServices(reply, t.flags, t.locale)
	if removed {
		logx.Debug().Msg("disabled services removed from reply")
	}

	audited, report := audit.AuditPrices(filtered, t.ledger.Snapshot())
	if report.Status == model.AuditFail {
		logx.Info().
			Int("issues", len(report.Issues)).
			Str("model", t.meta.Model).
			Msg("unverified prices removed from reply")
	}
	t.meta.PriceAudit = report

	logx.Debug().
		Str("stage", string(audited.Stage)).
		Int("options", len(audited.PackageOptions)).
		Int("rounds", t.meta.Rounds).
		Int("prompt_tokens", t.meta.Usage.PromptTokens).
		Int("completion_tokens", t.meta.Usage.CompletionTokens).
		Float64("total_cost_usd", t.meta.Usage.CostUSD).
		Msg("turn finalized")

	return &model.TurnResult{Reply: audited, Meta: t.meta}, nil
}

func (o *Orchestrator) recordUsage(t *turn, out *schema.Message, backend llm.Backend) {
	if out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	cost := t.meta.Usage.Add(out.ResponseMeta.Usage, backend.Model())
	logx.Debug().
		Str("model", backend.Model()).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Float64("cost_usd", cost).
		Float64("total_cost_usd", t.meta.Usage.CostUSD).
		Msg("LLM usage")
}

// loadFlags reads the service flag snapshot once per turn; failures leave every service enabled.
func (o *Orchestrator) loadFlags(ctx context.Context) model.ServiceFlags {
	if o.flags == nil {
		return model.AllServicesEnabled()
	}
	flags, err := o.flags.LoadServiceFlags(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("failed to load service flags, assuming all enabled")
		return model.AllServicesEnabled()
	}
	return flags
}

func (o *Orchestrator) loadSignals(ctx context.Context, userID string) *model.UserSignals {
	if o.signals == nil || strings.TrimSpace(userID) == "" {
		return nil
	}
	signals, err := o.signals.LoadUserSignals(ctx, userID)
	if err != nil {
		logx.Warn().Err(err).Str("user_id", userID).Msg("failed to load user signals")
		return nil
	}
	return signals
}

// assignCallIDs gives every tool call an id, since some providers omit them, and converts
// them for the dispatcher.
func assignCallIDs(out *schema.Message) []model.ToolCall {
	calls := make([]model.ToolCall, len(out.ToolCalls))
	for i := range out.ToolCalls {
		tc := &out.ToolCalls[i]
		if strings.TrimSpace(tc.ID) == "" {
			tc.ID = "call_" + uuid.NewString()
		}
		calls[i] = model.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	return calls
}

func encodeResult(res model.ToolResult) string {
	b, err := json.Marshal(res)
	if err != nil {
		logx.Error().Err(err).Str("tool_name", res.Tool).Msg("failed to encode tool result")
		b, _ = json.Marshal(model.ToolResult{Tool: res.Tool, Error: "the result could not be encoded"})
	}
	return string(b)
}

func toolNames() prompts.ToolNames {
	return prompts.ToolNames{
		Destinations: tools.ToolLookupDestinations,
		Hotels:       tools.ToolSearchHotels,
		Transfers:    tools.ToolSearchTransfers,
		Excursions:   tools.ToolSearchExcursions,
		Flights:      tools.ToolSearchFlights,
		Insurance:    tools.ToolQuoteInsurance,
	}
}

// IsModelFailure reports whether a GenerateReply error means no model backend could answer.
func IsModelFailure(err error) bool {
	return errors.Is(err, errx.ErrModelUnavailable)
}
