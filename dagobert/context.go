package dagobert

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
)

// Control is the in-band signal threaded through a RunContext that tells
// downstream nodes whether to skip.
type Control string

// ControlAbort marks a RunContext as carrying a failure. Every node
// downstream of the one that set it is skipped.
const ControlAbort Control = "abort"

// RunContext is created once per run and threaded through every message
// exchanged between nodes. Individual nodes may set Control/Ex (to
// signal abort) but never rewrite the timing fields; those are finalized
// once by the run assembler after the end node emits.
type RunContext struct {
	RunID string

	StartRequest   time.Time
	StartExecution time.Time
	EndExecution   time.Time

	GraphOverheadMs    int64
	ElapsedExecutionMs int64
	ElapsedTotalMs     int64

	Control Control
	Ex      any
}

const runIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
const runIDLength = 21

// newRunID generates a 21-character opaque identifier drawn uniformly at
// random from [A-Za-z0-9-_]. Entropy comes from google/uuid's
// crypto/rand-backed generator; UUIDs are drawn until the pool holds
// enough bytes, skipping each UUID's version byte, whose fixed high
// bits would bias the character it maps to.
func newRunID() string {
	need := runIDLength
	pool := make([]byte, 0, need+16)
	for len(pool) < need {
		u := uuid.New()
		pool = append(pool, u[:6]...)
		pool = append(pool, u[7:]...)
	}
	if len(pool) < need {
		extra := make([]byte, need-len(pool))
		_, _ = rand.Read(extra)
		pool = append(pool, extra...)
	}

	out := make([]byte, runIDLength)
	for i := 0; i < runIDLength; i++ {
		out[i] = runIDAlphabet[int(pool[i])%len(runIDAlphabet)]
	}
	return string(out)
}

func msBetween(start, end time.Time) int64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return end.Sub(start).Milliseconds()
}
