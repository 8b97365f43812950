package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	errx "github.com/tanpawarit/tripcomposer/internal/core/error"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

// DefaultCallTimeout bounds a single backend call.
const DefaultCallTimeout = 30 * time.Second

// Invoker tries each backend in order under a per-call timeout. It holds no state
// between calls.
type Invoker struct {
	backends []Backend
	timeout  time.Duration
}

// NewInvoker builds the fallback chain; nil backends are skipped.
func NewInvoker(timeout time.Duration, backends ...Backend) *Invoker {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	chain := make([]Backend, 0, len(backends))
	for _, b := range backends {
		if b != nil {
			chain = append(chain, b)
		}
	}
	return &Invoker{backends: chain, timeout: timeout}
}

// Generate returns the first successful answer and the backend that produced it.
// When every backend fails the error wraps errx.ErrModelUnavailable and each failure.
func (inv *Invoker) Generate(ctx context.Context, messages []*schema.Message) (*schema.Message, Backend, error) {
	errs := []error{errx.ErrModelUnavailable}
	for i, b := range inv.backends {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		start := time.Now()
		msg, err := inv.call(ctx, b, messages)
		if err == nil {
			logx.Debug().
				Str("backend", b.Name()).
				Str("model", b.Model()).
				Int("attempt", i+1).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int("tool_calls", len(msg.ToolCalls)).
				Msg("model call succeeded")
			return msg, b, nil
		}

		logx.Warn().
			Err(err).
			Str("backend", b.Name()).
			Str("model", b.Model()).
			Int("attempt", i+1).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("model call failed")
		errs = append(errs, fmt.Errorf("%s/%s: %w", b.Name(), b.Model(), err))
	}
	return nil, nil, errx.WrapModel(errors.Join(errs...))
}

type callResult struct {
	msg *schema.Message
	err error
}

// call runs one backend and stops waiting once the timeout fires, even if the
// backend ignores its context.
func (inv *Invoker) call(ctx context.Context, b Backend, messages []*schema.Message) (*schema.Message, error) {
	callCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("backend panic: %v", r)}
			}
		}()
		msg, err := b.Generate(callCtx, messages)
		done <- callResult{msg: msg, err: err}
	}()

	select {
	case <-callCtx.Done():
		return nil, fmt.Errorf("model call aborted: %w", callCtx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		if res.msg == nil || (strings.TrimSpace(res.msg.Content) == "" && len(res.msg.ToolCalls) == 0) {
			return nil, errx.ErrEmptyModelResponse
		}
		return res.msg, nil
	}
}
