package ids

import "testing"

func TestFastObjIDGeneratorIsMonotonicAndNeverInvalid(t *testing.T) {
	var g FastObjIDGenerator
	seen := make(map[FastObjID]bool)
	var prev FastObjID
	for i := 0; i < 100; i++ {
		id := g.Next()
		if !id.Valid() {
			t.Fatalf("Next() returned the invalid sentinel at i=%d", i)
		}
		if seen[id] {
			t.Fatalf("Next() returned a duplicate id %v at i=%d", id, i)
		}
		if i > 0 && id <= prev {
			t.Fatalf("Next() is not monotonically increasing: prev=%v got=%v", prev, id)
		}
		seen[id] = true
		prev = id
	}
}

func TestFastResIDGeneratorIsMonotonicAndNeverInvalid(t *testing.T) {
	var g FastResIDGenerator
	a := g.Next()
	b := g.Next()
	if !a.Valid() || !b.Valid() {
		t.Fatalf("expected both ids to be valid, got %v, %v", a, b)
	}
	if b <= a {
		t.Fatalf("expected b > a, got a=%v b=%v", a, b)
	}
}

func TestObjIDValidity(t *testing.T) {
	if ObjID("").Valid() {
		t.Fatal("empty ObjID should be invalid")
	}
	if !ObjID("player.1").Valid() {
		t.Fatal("non-empty ObjID should be valid")
	}
}

func TestResIDValidity(t *testing.T) {
	if ResID("").Valid() {
		t.Fatal("empty ResID should be invalid")
	}
	if !ResID("skill.fireball").Valid() {
		t.Fatal("non-empty ResID should be valid")
	}
}

func TestNewObjIDProducesDistinctValidIDs(t *testing.T) {
	a := NewObjID()
	b := NewObjID()
	if !a.Valid() || !b.Valid() {
		t.Fatalf("expected generated ids to be valid, got %q, %q", a, b)
	}
	if a == b {
		t.Fatalf("expected two calls to NewObjID to produce distinct ids, both were %q", a)
	}
}

func TestClassIDStringIsExhaustive(t *testing.T) {
	classes := []ClassID{ClassNone, ClassStageGeneral, ClassCharaHuman, ClassSkill, ClassAction, ClassCommand, ClassBuff}
	for _, c := range classes {
		if got := c.String(); got == "" {
			t.Fatalf("ClassID(%d).String() returned empty string", c)
		}
	}
	if got := ClassID(255).String(); got != "None" {
		t.Fatalf("unknown ClassID should fall back to %q, got %q", "None", got)
	}
}
