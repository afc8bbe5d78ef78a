package resource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/embervale/actioncore/ids"
	"github.com/embervale/actioncore/script/ast"
	"github.com/embervale/actioncore/script/vm"
)

// testCommandContextSpec is a standalone ContextSpec mirroring the shape of
// engine.CommandContextSpec (resource cannot import engine, which imports
// resource): one writable "self" segment holding a single scratch field.
func testCommandContextSpec() ast.ContextSpec {
	return ast.ContextSpec{
		CtxID: 1,
		Segments: []ast.SegmentDesc{
			{
				Name:     "self",
				Index:    vm.SegContextBase,
				Writable: true,
				Fields:   map[string]ast.FieldDesc{"value": {Offset: 0}},
			},
		},
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

func TestLoadRestoresResourceTreeInFirstSeenOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_stage.yaml", "id: stage.default\nstage:\n  shape:\n    kind: box\n    half_extents: [50, 1, 50]\n")
	writeFile(t, dir, "b_skill.yaml", "id: skill.fireball\nskill:\n  on_tick: \"self.timer += 1\"\n")
	writeFile(t, dir, "c_command.json", `{"id": "cmd.heal", "command": {"script": "self.value = 1"}}`)

	cache, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	order := cache.Order()
	if len(order) != 3 {
		t.Fatalf("expected 3 resources, got %d: %v", len(order), order)
	}

	stage, ok := cache.Get(ids.ResID("stage.default"))
	if !ok || stage.Stage == nil {
		t.Fatalf("expected a stage resource for stage.default, got %+v ok=%v", stage, ok)
	}
	if stage.Stage.Shape.Kind != "box" {
		t.Fatalf("expected box shape, got %q", stage.Stage.Shape.Kind)
	}

	skill, ok := cache.Get(ids.ResID("skill.fireball"))
	if !ok || skill.Skill == nil || skill.Skill.OnTick == "" {
		t.Fatalf("expected a skill resource with an on_tick script, got %+v ok=%v", skill, ok)
	}

	cmd, ok := cache.Get(ids.ResID("cmd.heal"))
	if !ok || cmd.Command == nil || cmd.Command.Script == "" {
		t.Fatalf("expected a command resource with a script, got %+v ok=%v", cmd, ok)
	}
}

func TestPutAssignsFastResIDsInFirstSeenOrderAndReusesOnReput(t *testing.T) {
	cache := NewCache()
	cache.Put(&ResObj{ResID: "a", Stage: &StageDef{}})
	cache.Put(&ResObj{ResID: "b", Stage: &StageDef{}})

	a, _ := cache.Get("a")
	b, _ := cache.Get("b")
	if a.FastResID >= b.FastResID {
		t.Fatalf("expected a's FastResID (%v) to precede b's (%v)", a.FastResID, b.FastResID)
	}

	// Re-registering the same ResID keeps its original FastResID.
	originalID := a.FastResID
	cache.Put(&ResObj{ResID: "a", Stage: &StageDef{}})
	again, _ := cache.Get("a")
	if again.FastResID != originalID {
		t.Fatalf("re-Put changed FastResID: had %v, now %v", originalID, again.FastResID)
	}
	if len(cache.Order()) != 2 {
		t.Fatalf("re-Put should not grow Order(), got %v", cache.Order())
	}
}

func TestCompileScriptDedupsIdenticalSource(t *testing.T) {
	cache := NewCache()
	ctx := testCommandContextSpec()

	p1, err := cache.CompileScript("self.value = 1", ctx)
	if err != nil {
		t.Fatalf("first CompileScript: %v", err)
	}
	p2, err := cache.CompileScript("self.value = 1", ctx)
	if err != nil {
		t.Fatalf("second CompileScript: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("expected identical source to return the same cached *vm.Program, got distinct pointers")
	}

	p3, err := cache.CompileScript("self.value = 2", ctx)
	if err != nil {
		t.Fatalf("third CompileScript: %v", err)
	}
	if p3 == p1 {
		t.Fatalf("expected different source to compile a distinct program")
	}
}

func TestBuildShapeDedupsStructurallyIdenticalDefs(t *testing.T) {
	cache := NewCache()
	def := ShapeDef{Kind: "sphere", Radius: 2.5}

	s1, err := cache.BuildShape(def)
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	s2, err := cache.BuildShape(ShapeDef{Kind: "sphere", Radius: 2.5})
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("expected structurally identical defs to yield the same cached shape value, got %+v vs %+v", s1, s2)
	}

	_, err = cache.BuildShape(ShapeDef{Kind: "unknown"})
	if err == nil {
		t.Fatal("expected an error for an unrecognized shape kind")
	}
}
