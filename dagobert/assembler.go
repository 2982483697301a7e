package dagobert

import (
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/luchiniatwork/dag-o-bert/dagobert/observe"
)

// resultTap is the sentinel consumer name the assembler registers on the
// end node so that awaiting "the end node's outbound channel" (spec.md
// §4.4 step 5) and "tapping a predecessor's broadcast" (spec.md §4.4
// step 3) are the exact same mechanism. It is a reserved node name, the
// same way "END"/"__end__" are reserved in comparable graph builders.
const resultTap = "__result__"

// executePlan wires the channel topology for one already-planned,
// already-validated run, launches every node concurrently, feeds the
// start node, and returns once the end node has emitted.
//
// Per spec.md §4.4/§9: all channels and taps are constructed before any
// node goroutine is launched, so that every producer's fan-out has
// somewhere to write before it ever gets the chance to emit.
func executePlan(plan []plannedNode, g *Graph, payload any, runCtx RunContext, observer observe.Observer) (RunContext, any) {
	if observer == nil {
		observer = observe.Null{}
	}

	produced := make(map[string]chan message, len(plan))
	for _, pn := range plan {
		produced[pn.NodeID] = make(chan message, 1)
	}

	// consumers[from] lists every node (or resultTap) that taps from's
	// outbound broadcast.
	consumers := make(map[string][]string)
	for _, pn := range plan {
		for _, e := range pn.Inbound {
			consumers[e.From] = append(consumers[e.From], pn.NodeID)
		}
	}
	consumers[g.End] = append(consumers[g.End], resultTap)

	taps := make(map[string]map[string]chan message, len(consumers))
	for from, tos := range consumers {
		m := make(map[string]chan message, len(tos))
		for _, to := range tos {
			m[to] = make(chan message, 1)
		}
		taps[from] = m
	}

	var group errgroup.Group

	for from, toMap := range taps {
		from, toMap := from, toMap
		outs := make([]chan message, 0, len(toMap))
		for _, c := range toMap {
			outs = append(outs, c)
		}
		in := produced[from]
		group.Go(func() error {
			broadcastOne(in, outs)
			return nil
		})
	}

	var startIn chan message
	for _, pn := range plan {
		pn := pn
		out := produced[pn.NodeID]
		nodeFn := g.Nodes[pn.NodeID]

		if len(pn.Inbound) == 0 {
			in := make(chan message, 1)
			startIn = in
			group.Go(func() error {
				runSourceNode(pn.NodeID, nodeFn, in, out, observer)
				return nil
			})
			continue
		}

		merged := make(chan message, len(pn.Inbound))
		for _, e := range pn.Inbound {
			tapCh := taps[e.From][pn.NodeID]
			group.Go(func() error {
				forwardOne(tapCh, merged)
				return nil
			})
		}
		group.Go(func() error {
			runDependentNode(pn.NodeID, nodeFn, pn.Inbound, merged, out, observer)
			return nil
		})
	}

	// The whole graph, including dangling subgraphs that don't feed the
	// end node, is allowed to keep running after this function returns;
	// this supervisor only exists so the run's goroutines are joined
	// somewhere instead of leaking untracked.
	go func() { _ = group.Wait() }()

	startIn <- message{ctx: runCtx, value: payload}
	close(startIn)

	resultCh := taps[g.End][resultTap]
	final := <-resultCh

	return finalizeRunTiming(final.ctx), final.value
}

func finalizeRunTiming(ctx RunContext) RunContext {
	end := time.Now()
	ctx.EndExecution = end
	if !ctx.StartExecution.IsZero() {
		ctx.GraphOverheadMs = msBetween(ctx.StartRequest, ctx.StartExecution)
		ctx.ElapsedExecutionMs = msBetween(ctx.StartExecution, end)
	}
	ctx.ElapsedTotalMs = msBetween(ctx.StartRequest, end)
	return ctx
}
