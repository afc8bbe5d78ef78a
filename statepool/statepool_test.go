package statepool

import (
	"testing"

	"github.com/embervale/actioncore/ids"
)

type characterState struct {
	HP int
}

func TestWriteAndReadRecords(t *testing.T) {
	pool := New(0)
	obj := ids.FastObjID(1)
	if err := pool.Write(obj, ids.ClassCharaHuman, LifecycleUpdated, &characterState{HP: 42}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	recs := pool.Records()
	if len(recs) != 1 || recs[0].FastObjID != obj {
		t.Fatalf("expected 1 record for obj %v, got %v", obj, recs)
	}
	payload, ok := recs[0].Payload.(*characterState)
	if !ok || payload.HP != 42 {
		t.Fatalf("expected payload HP=42, got %+v ok=%v", payload, ok)
	}
}

func TestWriteRespectsByteBudget(t *testing.T) {
	pool := New(estimatedRecordBytes) // room for exactly 1 record
	obj := ids.FastObjID(1)
	if err := pool.Write(obj, ids.ClassCharaHuman, LifecycleCreated, &characterState{}); err != nil {
		t.Fatalf("first Write should fit: %v", err)
	}
	if err := pool.Write(obj, ids.ClassCharaHuman, LifecycleUpdated, &characterState{}); err != ErrPoolFull {
		t.Fatalf("expected ErrPoolFull on second Write, got %v", err)
	}
}

func TestDispatchBindsMatchingRefsAndNullsOthers(t *testing.T) {
	bus := NewStateBus()
	obj1 := ids.FastObjID(1)
	obj2 := ids.FastObjID(2)

	ref1 := NewRef[characterState](obj1, ids.ClassCharaHuman)
	ref2 := NewRef[characterState](obj2, ids.ClassCharaHuman)
	Register(bus, ref1)
	Register(bus, ref2)

	pool := New(0)
	_ = pool.Write(obj1, ids.ClassCharaHuman, LifecycleUpdated, &characterState{HP: 7})
	bus.Dispatch(pool)

	got, ok := ref1.Get()
	if !ok || got.HP != 7 {
		t.Fatalf("expected ref1 bound to HP=7, got %+v ok=%v", got, ok)
	}
	if _, ok := ref2.Get(); ok {
		t.Fatal("expected ref2 to be null after a dispatch with no matching record")
	}
}

func TestDispatchNullsPreviousBindingBeforeRebinding(t *testing.T) {
	bus := NewStateBus()
	obj := ids.FastObjID(1)
	ref := NewRef[characterState](obj, ids.ClassCharaHuman)
	Register(bus, ref)

	pool1 := New(0)
	_ = pool1.Write(obj, ids.ClassCharaHuman, LifecycleCreated, &characterState{HP: 1})
	bus.Dispatch(pool1)
	if got, ok := ref.Get(); !ok || got.HP != 1 {
		t.Fatalf("expected first dispatch to bind HP=1, got %+v ok=%v", got, ok)
	}

	pool2 := New(0) // no record for obj this tick
	bus.Dispatch(pool2)
	if _, ok := ref.Get(); ok {
		t.Fatal("expected ref to be nulled when the next pool carries no matching record")
	}
}

func TestUnregisterStopsFutureDispatches(t *testing.T) {
	bus := NewStateBus()
	obj := ids.FastObjID(1)
	ref := NewRef[characterState](obj, ids.ClassCharaHuman)
	Register(bus, ref)
	Unregister(bus, ref)

	pool := New(0)
	_ = pool.Write(obj, ids.ClassCharaHuman, LifecycleUpdated, &characterState{HP: 99})
	bus.Dispatch(pool)

	if _, ok := ref.Get(); ok {
		t.Fatal("expected unregistered ref to never bind")
	}
}
