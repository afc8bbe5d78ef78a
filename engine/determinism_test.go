package engine

import (
	"testing"

	"github.com/embervale/actioncore/fx"
)

// runScenario drives a fresh Engine through the same fixed op/command
// sequence for n ticks and returns the final tick's StatePool, flattened
// into a comparable snapshot.
func runScenario(t *testing.T, n int) []CharacterState {
	t.Helper()
	eng := New(fx.FromRatio(1, 30))
	eng.Command(CmdNewStage{})
	eng.Command(CmdNewCharacter{
		Position:  fx.V3(0, fx.FromRatio(1, 10), 0),
		Direction: fx.V2(0, fx.One),
		Speed:     fx.FromRatio(3, 2),
		IsMain:    true,
	})

	var last []CharacterState
	for i := 0; i < n; i++ {
		if i == 2 {
			eng.Operate(OpMoveCharacter{Direction: fx.V2(fx.One, fx.Zero), IsMoving: true})
		}
		if i == 5 {
			eng.Operate(OpJumpCharacter{})
		}
		pool, err := eng.Tick()
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		last = nil
		for _, rec := range pool.Records() {
			if cs, ok := rec.Payload.(*CharacterState); ok {
				last = append(last, *cs)
			}
		}
	}
	return last
}

// TestTickIsDeterministic covers spec.md §8's determinism property: the
// same initial world plus the same op/command sequence, run under the
// same fixed tick duration, must produce bit-identical StatePool contents
// on every run.
func TestTickIsDeterministic(t *testing.T) {
	const ticks = 10
	a := runScenario(t, ticks)
	b := runScenario(t, ticks)

	if len(a) != len(b) {
		t.Fatalf("record count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMoveAffectsCharacterState(t *testing.T) {
	states := runScenario(t, 10)
	if len(states) == 0 {
		t.Fatal("expected at least one character state record")
	}
	final := states[len(states)-1]
	if !final.IsMoving {
		t.Fatalf("expected character to still be moving after OpMoveCharacter, got %+v", final)
	}
}

func TestUnknownObjectCommandsFail(t *testing.T) {
	eng := New(fx.FromRatio(1, 30))
	eng.Command(CmdMoveCharacter{ObjID: 999, Direction: fx.V2(fx.One, fx.Zero), IsMoving: true})
	if _, err := eng.Tick(); err == nil {
		t.Fatal("expected ErrUnknownObject for a command targeting a nonexistent character")
	}
}

func TestStageAndCharacterReportCreatedThenUpdated(t *testing.T) {
	eng := New(fx.FromRatio(1, 30))
	eng.Command(CmdNewStage{})
	eng.Command(CmdNewCharacter{
		Position:  fx.V3(0, fx.FromRatio(1, 10), 0),
		Direction: fx.V2(0, fx.One),
		Speed:     fx.One,
		IsMain:    true,
	})

	pool, err := eng.Tick()
	if err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	for _, rec := range pool.Records() {
		if rec.Lifecycle.String() != "Created" {
			t.Fatalf("expected every record on the creation tick to be Created, got %v for %v", rec.Lifecycle, rec.FastObjID)
		}
	}

	pool, err = eng.Tick()
	if err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	for _, rec := range pool.Records() {
		if rec.Lifecycle.String() != "Updated" {
			t.Fatalf("expected every record on the second tick to be Updated, got %v for %v", rec.Lifecycle, rec.FastObjID)
		}
	}
}
