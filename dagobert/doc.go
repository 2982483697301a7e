// Package dagobert executes a caller-supplied directed acyclic graph of
// functions with maximum permitted parallelism.
//
// A Graph is a set of named nodes, a set of edges wiring those nodes
// together, a start node, and an end node. Run (or its blocking sibling
// RunSync) feeds a payload to the start node, runs every node reachable
// from it concurrently as soon as its dependencies are satisfied, and
// returns the end node's result together with a RunContext describing
// the run.
//
// The package assumes a well-formed DAG. Cycle detection and
// reachability checks exist only to keep the scheduler from looping
// forever or deadlocking on an unreachable end node; they are not a
// general graph validator.
package dagobert
