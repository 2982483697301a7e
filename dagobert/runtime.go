package dagobert

import (
	"fmt"
	"time"

	"github.com/luchiniatwork/dag-o-bert/dagobert/observe"
)

// safeCall invokes fn, recovering a panic and reporting it as an error
// the same way a returned error would be reported. This is the Go
// rendering of the source spec's "invoked ... protected against thrown
// failures".
func safeCall(fn NodeFunc, input any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
			result = nil
		}
	}()
	return fn(input)
}

// runSourceNode executes the start node: it waits for the single
// (RunContext, payload) message, invokes fn once, and emits the result.
func runSourceNode(nodeID string, fn NodeFunc, in <-chan message, out chan<- message, observer observe.Observer) {
	startRequest := time.Now()
	m, ok := <-in
	if !ok {
		close(out)
		return
	}

	runCtx := m.ctx
	startExecution := time.Now()
	if runCtx.StartExecution.IsZero() {
		runCtx.StartExecution = startExecution
	}

	ret, err := safeCall(fn, m.value)
	endExecution := time.Now()

	status := observe.StatusDone
	if err != nil {
		status = observe.StatusFailed
		runCtx.Control = ControlAbort
		runCtx.Ex = err
		ret = err
	}

	out <- message{from: nodeID, ctx: runCtx, value: ret}
	close(out)

	dispatchObserve(observer, observe.Record{
		RunID:              runCtx.RunID,
		Node:               nodeID,
		StartRequest:       startRequest,
		WaitingMs:          msBetween(startRequest, startExecution),
		StartExecution:     startExecution,
		EndExecution:       endExecution,
		ElapsedExecutionMs: msBetween(startExecution, endExecution),
		ElapsedTotalMs:     msBetween(startRequest, endExecution),
		Input:              m.value,
		Status:             status,
		Return:             ret,
	})
}

// runDependentNode executes a node with one or more inbound edges: it
// drains exactly one message per inbound edge off merged (regardless of
// arrival order), assembles the consumer's input map via the edge
// operator, and either invokes fn once or, if any upstream message
// carried an abort signal, skips without invoking fn at all.
//
// The merge always fully drains before deciding to skip, so an upstream
// producer writing into its (buffered, one-shot) outbound channel never
// stalls waiting for a reader that decided not to show up.
func runDependentNode(nodeID string, fn NodeFunc, inboundEdges []Edge, merged <-chan message, out chan<- message, observer observe.Observer) {
	startRequest := time.Now()

	optsByFrom := make(map[string]*EdgeOptions, len(inboundEdges))
	for _, e := range inboundEdges {
		optsByFrom[e.From] = e.Options
	}

	input := make(map[string]any, len(inboundEdges))
	var mustSkip bool
	var abortedEx any
	var latestCtx RunContext

	for i := 0; i < len(inboundEdges); i++ {
		m, ok := <-merged
		if !ok {
			break
		}
		latestCtx = m.ctx
		if m.ctx.Control == ControlAbort {
			mustSkip = true
			if abortedEx == nil {
				abortedEx = m.ctx.Ex
			}
		}
		if key, val, ok := applyEdge(optsByFrom[m.from], m.from, m.value); ok {
			input[key] = val
		}
	}

	runCtx := latestCtx
	if mustSkip {
		runCtx.Control = ControlAbort
		if runCtx.Ex == nil {
			runCtx.Ex = abortedEx
		}
	}

	startExecution := time.Now()

	var status observe.Status
	var ret any
	if mustSkip {
		status = observe.StatusSkipped
		ret = nil
	} else {
		var err error
		ret, err = safeCall(fn, input)
		if err != nil {
			status = observe.StatusFailed
			runCtx.Control = ControlAbort
			runCtx.Ex = err
			ret = err
		} else {
			status = observe.StatusDone
		}
	}

	endExecution := time.Now()

	out <- message{from: nodeID, ctx: runCtx, value: ret}
	close(out)

	dispatchObserve(observer, observe.Record{
		RunID:              runCtx.RunID,
		Node:               nodeID,
		StartRequest:       startRequest,
		WaitingMs:          msBetween(startRequest, startExecution),
		StartExecution:     startExecution,
		EndExecution:       endExecution,
		ElapsedExecutionMs: msBetween(startExecution, endExecution),
		ElapsedTotalMs:     msBetween(startRequest, endExecution),
		Input:              input,
		Status:             status,
		Return:             ret,
	})
}
