package engine

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/ids"
	"github.com/embervale/actioncore/statepool"
)

// runAsyncScenario mirrors determinism_test.go's runScenario but drives the
// same fixed op/command sequence through an AsyncAgent's worker-thread path
// (spec.md §8 scenario 6), tracking the character's state the way an
// external consumer would: through a registered StateRef rather than a
// directly-returned pool.
func runAsyncScenario(t *testing.T, n int) []CharacterState {
	t.Helper()
	a := NewAsyncAgent(fx.FromRatio(1, 30), rate.Inf, 1)
	defer a.Close()

	a.Command(CmdNewStage{})
	a.Command(CmdNewCharacter{
		Position:  fx.V3(0, fx.FromRatio(1, 10), 0),
		Direction: fx.V2(0, fx.One),
		Speed:     fx.FromRatio(3, 2),
		IsMain:    true,
	})

	// A fresh engine's id generator assigns FastObjIDs in command-application
	// order, so the character created right after the stage always lands on
	// FastObjID(1) (spec.md §8 scenario 2 relies on the same determinism).
	ref := statepool.NewRef[CharacterState](ids.FastObjID(1), ids.ClassCharaHuman)
	statepool.Register(a.Bus(), ref)
	defer statepool.Unregister(a.Bus(), ref)

	ctx := context.Background()
	var last []CharacterState
	for i := 0; i < n; i++ {
		if i == 2 {
			a.Operate(OpMoveCharacter{Direction: fx.V2(fx.One, fx.Zero), IsMoving: true})
		}
		if i == 5 {
			a.Operate(OpJumpCharacter{})
		}
		if err := a.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if cs, ok := ref.Get(); ok {
			last = []CharacterState{*cs}
		}
	}
	return last
}

// TestAsyncAgentTickIsDeterministic covers spec.md §8 scenario 6: two async
// agents started with identical input streams must produce identical state
// pools at each tick.
func TestAsyncAgentTickIsDeterministic(t *testing.T) {
	const ticks = 10
	a := runAsyncScenario(t, ticks)
	b := runAsyncScenario(t, ticks)

	if len(a) != len(b) {
		t.Fatalf("record count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestAsyncAgentCloseTerminatesWorker covers spec.md §8 scenario 6's other
// half: dropping an agent terminates its worker thread within one tick of
// the next Tick call. Close's returned error is not asserted — spec.md §5
// only promises termination, not a particular sentinel on the cancellation
// path.
func TestAsyncAgentCloseTerminatesWorker(t *testing.T) {
	a := NewAsyncAgent(fx.FromRatio(1, 30), rate.Inf, 1)
	a.Command(CmdNewStage{})
	if err := a.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	done := make(chan struct{})
	go func() {
		a.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not terminate the worker within one tick")
	}
}
