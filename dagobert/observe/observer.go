// Package observe provides the observer extension point for dagobert
// runs: a Record describing one node's execution, an Observer interface
// to receive it, and a handful of pluggable sinks (logging, tracing,
// metrics, durable history).
//
// Observers are dispatched on a detached goroutine after a node emits
// its outbound message (see dagobert's run assembler); they must never
// block or delay the dataflow, and observer failures are swallowed by
// the caller, not surfaced here. Implementations should still be
// reasonably cheap and non-panicking as a matter of good citizenship.
package observe

import "time"

// Status classifies how a node's execution concluded.
type Status string

const (
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Record describes one node's execution within one run. It is the Go
// rendering of the source spec's per-node execution record.
type Record struct {
	RunID string
	Node  string

	StartRequest   time.Time
	WaitingMs      int64
	StartExecution time.Time
	EndExecution   time.Time

	ElapsedExecutionMs int64
	ElapsedTotalMs     int64

	Input  any
	Status Status
	Return any
}

// Observer receives per-node execution records. Implementations must be
// safe for concurrent use: records for independent nodes may arrive from
// different goroutines at overlapping times.
type Observer interface {
	Observe(rec Record)
}

// Null is an Observer that discards every record. It is the default
// when a run is started without WithObserver.
type Null struct{}

func (Null) Observe(Record) {}

// Multi fans one record out to several observers. Each sub-observer is
// invoked in the calling goroutine (dagobert already dispatches Observe
// on a detached goroutine, so Multi does not need to do so again); a
// panicking sub-observer is recovered so the rest of the fan-out still
// runs.
type Multi []Observer

func (m Multi) Observe(rec Record) {
	for _, o := range m {
		observeSafely(o, rec)
	}
}

func observeSafely(o Observer, rec Record) {
	defer func() { _ = recover() }()
	if o != nil {
		o.Observe(rec)
	}
}
