package dagobert

import (
	"context"
	"time"
)

// Future is the handle returned by Run. It resolves exactly once, to
// the run's final RunContext and the end node's result.
type Future struct {
	ch chan futureResult
}

type futureResult struct {
	ctx    RunContext
	result any
}

// Wait blocks until the run resolves or ctx is done. A cancelled wait
// does not stop the underlying run — the core has no external
// cancellation (spec.md §5) — it only gives up on waiting for it.
func (f *Future) Wait(ctx context.Context) (RunContext, any, error) {
	select {
	case r := <-f.ch:
		return r.ctx, r.result, nil
	case <-ctx.Done():
		return RunContext{}, nil, ctx.Err()
	}
}

// Run is the asynchronous entry point. It validates and topologically
// plans the graph synchronously — a malformed graph is reported
// immediately as a StructuralError, before any node runs — then starts
// every reachable node concurrently in the background and returns a
// Future for the eventual (RunContext, result) pair.
func Run(g *Graph, payload any, opts ...Option) (*Future, error) {
	cfg := buildConfig(opts)

	plan, err := planGraph(g)
	if err != nil {
		return nil, err
	}

	runCtx := RunContext{
		RunID:        newRunID(),
		StartRequest: time.Now(),
	}

	fut := &Future{ch: make(chan futureResult, 1)}
	go func() {
		finalCtx, result := executePlan(plan, g, payload, runCtx, cfg.observer)
		fut.ch <- futureResult{ctx: finalCtx, result: result}
	}()

	return fut, nil
}

// RunSync is the blocking entry point. It returns the end node's bare
// result on success. If the run's context carries Control == ControlAbort
// it raises an *AbortError instead, whose Ex field holds the original
// failure value.
func RunSync(ctx context.Context, g *Graph, payload any, opts ...Option) (any, error) {
	fut, err := Run(g, payload, opts...)
	if err != nil {
		return nil, err
	}

	runCtx, result, err := fut.Wait(ctx)
	if err != nil {
		return nil, err
	}

	if runCtx.Control == ControlAbort {
		return nil, &AbortError{
			Message: "Execution aborted due to exception",
			Ex:      runCtx.Ex,
		}
	}

	return result, nil
}
