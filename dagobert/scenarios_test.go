package dagobert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// Scenario 1: happy diamond. a: identity, b: x.a+1, c: x.a-1, d: x.b*x.c.
func TestScenarioHappyDiamond(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", identityFn)
	g.AddNode("b", func(v any) (any, error) {
		in := v.(map[string]any)
		return in["a"].(int) + 1, nil
	})
	g.AddNode("c", func(v any) (any, error) {
		in := v.(map[string]any)
		return in["a"].(int) - 1, nil
	})
	g.AddNode("d", func(v any) (any, error) {
		in := v.(map[string]any)
		return in["b"].(int) * in["c"].(int), nil
	})
	g.Connect("a", "b", nil)
	g.Connect("a", "c", nil)
	g.Connect("b", "d", nil)
	g.Connect("c", "d", nil)
	g.StartAt("a")
	g.EndAt("d")

	ctx := context.Background()
	result, err := RunSync(ctx, g, 3)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if result != 8 {
		t.Fatalf("payload 3: got %v, want 8", result)
	}

	result, err = RunSync(ctx, g, 4)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if result != 15 {
		t.Fatalf("payload 4: got %v, want 15", result)
	}
}

// Scenario 2: parallel slow nodes. b (x.a+1) sleeps 500ms, c (x.a-1)
// sleeps 200ms; d = 2 * b * c. Total wall time should track max(500,200), not their sum.
func TestScenarioParallelSlowNodes(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", identityFn)
	g.AddNode("b", func(v any) (any, error) {
		time.Sleep(500 * time.Millisecond)
		return v.(map[string]any)["a"].(int) + 1, nil
	})
	g.AddNode("c", func(v any) (any, error) {
		time.Sleep(200 * time.Millisecond)
		return v.(map[string]any)["a"].(int) - 1, nil
	})
	g.AddNode("d", func(v any) (any, error) {
		in := v.(map[string]any)
		return 2 * in["b"].(int) * in["c"].(int), nil
	})
	g.Connect("a", "b", nil)
	g.Connect("a", "c", nil)
	g.Connect("b", "d", nil)
	g.Connect("c", "d", nil)
	g.StartAt("a")
	g.EndAt("d")

	start := time.Now()
	result, err := RunSync(context.Background(), g, 3)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if result != 16 {
		t.Fatalf("got %v, want 16", result)
	}
	if elapsed > 650*time.Millisecond {
		t.Fatalf("expected ≈500ms wall time, took %v (suggests sequential execution)", elapsed)
	}
}

// Scenario 3: a dangling branch reachable from b runs independently and
// must not delay run-sync's return.
func TestScenarioDanglingBranchDoesNotDelay(t *testing.T) {
	var mu sync.Mutex
	var flagSet bool

	g := NewGraph()
	g.AddNode("a", identityFn)
	g.AddNode("b", func(v any) (any, error) {
		return v.(map[string]any)["a"], nil
	})
	g.AddNode("c", func(v any) (any, error) {
		return v.(map[string]any)["a"], nil
	})
	g.AddNode("d", func(v any) (any, error) {
		in := v.(map[string]any)
		return in["b"], nil
	})
	g.AddNode("dangling", func(v any) (any, error) {
		time.Sleep(200 * time.Millisecond)
		mu.Lock()
		flagSet = true
		mu.Unlock()
		return nil, nil
	})
	g.Connect("a", "b", nil)
	g.Connect("a", "c", nil)
	g.Connect("b", "d", nil)
	g.Connect("c", "d", nil)
	g.Connect("b", "dangling", nil)
	g.StartAt("a")
	g.EndAt("d")

	start := time.Now()
	_, err := RunSync(context.Background(), g, 6)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if elapsed > 100*time.Millisecond {
		t.Fatalf("run-sync should return well before dangling branch finishes, took %v", elapsed)
	}

	mu.Lock()
	setAtReturn := flagSet
	mu.Unlock()
	if setAtReturn {
		t.Fatal("flag should not be set yet when run-sync returns")
	}

	time.Sleep(250 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if !flagSet {
		t.Fatal("flag should be set 250ms after run-sync returns")
	}
}

// Scenario 4: a throws; b, c, d never run; run-sync raises an AbortError.
func TestScenarioAbortPropagation(t *testing.T) {
	var bRan, cRan, dRan bool

	g := NewGraph()
	g.AddNode("a", func(v any) (any, error) {
		return nil, errors.New("foobar")
	})
	g.AddNode("b", func(v any) (any, error) { bRan = true; return nil, nil })
	g.AddNode("c", func(v any) (any, error) { cRan = true; return nil, nil })
	g.AddNode("d", func(v any) (any, error) { dRan = true; return nil, nil })
	g.Connect("a", "b", nil)
	g.Connect("a", "c", nil)
	g.Connect("b", "d", nil)
	g.Connect("c", "d", nil)
	g.StartAt("a")
	g.EndAt("d")

	_, err := RunSync(context.Background(), g, nil)
	if err == nil {
		t.Fatal("expected AbortError, got nil")
	}
	abortErr, ok := err.(*AbortError)
	if !ok {
		t.Fatalf("expected *AbortError, got %T: %v", err, err)
	}
	if abortErr.Message != "Execution aborted due to exception" {
		t.Fatalf("unexpected message: %q", abortErr.Message)
	}
	ex, ok := abortErr.Ex.(error)
	if !ok || ex.Error() != "foobar" {
		t.Fatalf("expected ex.message == foobar, got %v", abortErr.Ex)
	}
	if bRan || cRan || dRan {
		t.Fatalf("downstream nodes must not run: b=%v c=%v d=%v", bRan, cRan, dRan)
	}
}

// Scenario 5: c throws; b and any branch disjoint from c still complete;
// d (downstream of c) is skipped.
func TestScenarioPartialAbort(t *testing.T) {
	var bRan, eRan bool
	var dRan bool

	g := NewGraph()
	g.AddNode("a", identityFn)
	g.AddNode("b", func(v any) (any, error) { bRan = true; return 1, nil })
	g.AddNode("c", func(v any) (any, error) { return nil, errors.New("boom") })
	g.AddNode("d", func(v any) (any, error) { dRan = true; return nil, nil })
	g.AddNode("e", func(v any) (any, error) { eRan = true; return 1, nil }) // disjoint branch
	g.Connect("a", "b", nil)
	g.Connect("a", "c", nil)
	g.Connect("a", "e", nil)
	g.Connect("c", "d", nil)
	g.Connect("e", "d", nil)
	g.StartAt("a")
	g.EndAt("d")

	ctx := context.Background()
	fut, err := Run(g, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	runCtx, _, err := fut.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if runCtx.Control != ControlAbort {
		t.Fatalf("expected Control=abort, got %v", runCtx.Control)
	}
	// give the disjoint b branch (not on the path to d) time to finish
	time.Sleep(20 * time.Millisecond)
	if !bRan {
		t.Fatal("b should have completed despite c's failure")
	}
	if !eRan {
		t.Fatal("e should have completed (d still waits on it before skipping)")
	}
	if dRan {
		t.Fatal("d is downstream of failing c and must be skipped")
	}
}

// Scenario 6: edge operators — name remapping and transform-then-filter.
func TestScenarioEdgeOperatorsNameRemap(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", identityFn)
	g.AddNode("b", func(v any) (any, error) {
		return 2 * v.(map[string]any)["n1"].(int), nil
	})
	g.AddNode("c", func(v any) (any, error) {
		in := v.(map[string]any)
		return in["n2"].(int) + in["n3"].(int), nil
	})
	g.Connect("a", "b", &EdgeOptions{Name: "n1"})
	g.Connect("a", "c", &EdgeOptions{Name: "n2"})
	g.Connect("b", "c", &EdgeOptions{Name: "n3"})
	g.StartAt("a")
	g.EndAt("c")

	result, err := RunSync(context.Background(), g, 5)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if result != 15 {
		t.Fatalf("got %v, want 15", result)
	}
}

func TestScenarioEdgeOperatorsFilter(t *testing.T) {
	odd := func(v any) bool { return v.(int)%2 != 0 }

	newGraph := func() *Graph {
		g := NewGraph()
		g.AddNode("a", identityFn)
		g.AddNode("b", func(v any) (any, error) {
			in := v.(map[string]any)
			val, ok := in["a"]
			if !ok {
				return nil, nil
			}
			return val, nil
		})
		g.Connect("a", "b", &EdgeOptions{Filter: odd})
		g.StartAt("a")
		g.EndAt("b")
		return g
	}

	result, err := RunSync(context.Background(), newGraph(), 1)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if result != 1 {
		t.Fatalf("payload 1: got %v, want 1", result)
	}

	result, err = RunSync(context.Background(), newGraph(), 2)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if result != nil {
		t.Fatalf("payload 2: got %v, want nil (key absent)", result)
	}
}
