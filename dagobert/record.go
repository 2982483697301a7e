package dagobert

import "github.com/luchiniatwork/dag-o-bert/dagobert/observe"

// message is the unit of communication between node runtimes. Every
// per-node and per-edge channel in a run's topology carries exactly one
// message before it is closed; a dependent node's merged inbound channel
// carries one message per inbound edge and is not closed.
type message struct {
	from  string
	ctx   RunContext
	value any
}

func dispatchObserve(o observe.Observer, rec observe.Record) {
	if o == nil {
		return
	}
	go func() {
		defer func() { _ = recover() }()
		o.Observe(rec)
	}()
}
