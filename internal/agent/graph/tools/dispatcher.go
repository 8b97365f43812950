package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/tool"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

// Safe messages returned to the model in place of collaborator error detail.
const (
	msgSearchFailed = "the search failed, please try again later"
	msgCancelled    = "the request was cancelled"
	msgUnavailable  = "this service is currently unavailable"
)

// Collaborators are the external capabilities behind the six tools. A nil field
// makes its tool answer ok:false.
type Collaborators struct {
	Destinations model.DestinationDirectory
	Hotels       model.HotelSearcher
	Transfers    model.TransferSearcher
	Excursions   model.ExcursionSearcher
	Flights      model.FlightSearcher
	Insurance    model.InsuranceQuoter
}

type Option func(*Dispatcher)

// WithMaxParallel bounds concurrent executions within one round; n <= 0 means unbounded.
func WithMaxParallel(n int) Option {
	return func(d *Dispatcher) { d.maxParallel = n }
}

// WithRateLimit throttles collaborator calls across rounds and requests sharing the dispatcher.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(d *Dispatcher) {
		if perSecond <= 0 {
			d.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// Dispatcher routes tool calls to executors. It never returns errors or panics;
// every failure becomes an ok:false ToolResult.
type Dispatcher struct {
	collab      Collaborators
	maxParallel int
	limiter     *rate.Limiter
	execs       map[string]executor
}

func NewDispatcher(collab Collaborators, opts ...Option) *Dispatcher {
	d := &Dispatcher{collab: collab}
	for _, opt := range opts {
		opt(d)
	}
	d.execs = d.executors()
	return d
}

// Dispatch executes all calls of one round concurrently and joins them.
// results[i] always belongs to calls[i].
func (d *Dispatcher) Dispatch(ctx context.Context, calls []model.ToolCall, trip model.TripContext) []model.ToolResult {
	results := make([]model.ToolResult, len(calls))
	if len(calls) == 0 {
		return results
	}
	if len(calls) == 1 {
		results[0] = d.Execute(ctx, calls[0], trip)
		return results
	}

	var g errgroup.Group
	if d.maxParallel > 0 {
		g.SetLimit(d.maxParallel)
	}

	batchStart := time.Now()
	for i := range calls {
		g.Go(func() error {
			results[i] = d.Execute(ctx, calls[i], trip)
			return nil
		})
	}
	_ = g.Wait()

	logx.Debug().
		Int("count", len(calls)).
		Int("parallelism", d.maxParallel).
		Int64("duration_ms", time.Since(batchStart).Milliseconds()).
		Msg("tool batch complete")

	return results
}

// Execute runs a single tool call.
func (d *Dispatcher) Execute(ctx context.Context, call model.ToolCall, trip model.TripContext) (result model.ToolResult) {
	result = model.ToolResult{Tool: call.Name}
	exec, ok := d.execs[call.Name]
	if !ok {
		result.Error = fmt.Sprintf("unknown tool %q", truncate(call.Name, 64))
		return result
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logx.Error().
				Str("tool_name", call.Name).
				Str("tool_call_id", call.ID).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("tool executor panic recovered")
			result = model.ToolResult{Tool: call.Name, Error: msgSearchFailed}
		}
		result.Elapsed = time.Since(start)
	}()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			result.Error = msgCancelled
			return result
		}
	}
	if ctx.Err() != nil {
		result.Error = msgCancelled
		return result
	}

	cbCtx := callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      call.Name,
		Type:      "TripTool",
		Component: components.ComponentOfTool,
	})
	cbCtx = callbacks.OnStart(cbCtx, &tool.CallbackInput{ArgumentsInJSON: call.Arguments})

	data, err := exec(ctx, ParseArgs(call.Arguments), trip)
	dur := time.Since(start)
	if err != nil {
		callbacks.OnError(cbCtx, err)
		result.Error = d.safeMessage(ctx, call, err)
		logx.Debug().
			Str("tool_name", call.Name).
			Str("tool_call_id", call.ID).
			Int64("duration_ms", dur.Milliseconds()).
			Str("reason", result.Error).
			Msg("tool call failed")
		return result
	}

	logx.Debug().
		Str("tool_name", call.Name).
		Str("tool_call_id", call.ID).
		Int64("duration_ms", dur.Milliseconds()).
		Msg("tool call executed")
	if raw, mErr := json.Marshal(data); mErr == nil {
		callbacks.OnEnd(cbCtx, &tool.CallbackOutput{Response: string(raw)})
	}

	result.OK = true
	result.Data = data
	return result
}

func (d *Dispatcher) safeMessage(ctx context.Context, call model.ToolCall, err error) string {
	var invalidArgs *invalidArgsError
	switch {
	case errors.As(err, &invalidArgs):
		return invalidArgs.msg
	case errors.Is(err, errServiceUnavailable):
		return msgUnavailable
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return msgCancelled
	default:
		logx.Error().
			Err(err).
			Str("tool_name", call.Name).
			Str("tool_call_id", call.ID).
			Msg("tool collaborator failed")
		return msgSearchFailed
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
