package world

import (
	"testing"

	"github.com/embervale/actioncore/collision/broadphase"
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/geom"
)

func at(x, y, z int64) fx.Isometry {
	return fx.Isometry{Position: fx.V3(fx.FromInt(x), fx.FromInt(y), fx.FromInt(z)), Rotation: fx.QuatIdentity}
}

func TestAddGeneratesEventsOnOverlap(t *testing.T) {
	w := New[string](0)

	allGroups := Groups{TeamMembership: TeamAll, TeamWhitelist: TeamAll, RoleMembership: RoleDamage, RoleWhitelist: RoleCombat | RoleDamage}
	h1 := w.Add(broadphase.ClassMove, at(0, 0, 0), geom.Sphere{Radius: fx.One}, allGroups, QueryType{Kind: QueryContact}, "p1")
	h2 := w.Add(broadphase.ClassMove, at(0, 0, 0), geom.Sphere{Radius: fx.One}, allGroups, QueryType{Kind: QueryContact}, "p2")

	w.Update([]broadphase.Class{broadphase.ClassMove})
	events := w.Events()
	if len(events) != 1 || events[0].Kind != EventContactStarted {
		t.Fatalf("expected 1 contact-started event, got %v", events)
	}
	if (events[0].A != h1 || events[0].B != h2) && (events[0].A != h2 || events[0].B != h1) {
		t.Fatalf("event handles don't match the two added objects: %v", events[0])
	}
}

func TestGroupsAllowDamageVsHealthInteraction(t *testing.T) {
	w := New[string](0)

	team1Damage := Groups{TeamMembership: Team1, TeamWhitelist: TeamAll, RoleMembership: RoleDamage, RoleWhitelist: RoleCombat}
	team1Health := Groups{TeamMembership: Team1, TeamWhitelist: TeamAll, RoleMembership: RoleHealth, RoleWhitelist: RoleDamage}

	// A damage volume (whitelisting Health|Defense) against a health volume
	// that in turn whitelists Damage should interact: both role directions
	// of CanInteractWith must be non-zero.
	w.Add(broadphase.ClassHit, at(0, 0, 0), geom.Sphere{Radius: fx.One}, team1Damage, QueryType{Kind: QueryContact}, "dmg")
	w.Add(broadphase.ClassHit, at(0, 0, 0), geom.Sphere{Radius: fx.One}, team1Health, QueryType{Kind: QueryContact}, "hp")

	w.Update([]broadphase.Class{broadphase.ClassHit})
	if len(w.Events()) != 1 {
		t.Fatalf("expected damage-vs-health to interact, got %v", w.Events())
	}
}

func TestRemoveReindexesGraph(t *testing.T) {
	w := New[string](0)
	groups := Groups{TeamMembership: TeamAll, TeamWhitelist: TeamAll, RoleMembership: RoleDamage, RoleWhitelist: RoleCombat | RoleDamage}

	h1 := w.Add(broadphase.ClassMove, at(0, 0, 0), geom.Sphere{Radius: fx.One}, groups, QueryType{Kind: QueryContact}, "a")
	w.Add(broadphase.ClassMove, at(10, 10, 10), geom.Sphere{Radius: fx.One}, groups, QueryType{Kind: QueryContact}, "b")
	h3 := w.Add(broadphase.ClassMove, at(20, 20, 20), geom.Sphere{Radius: fx.One}, groups, QueryType{Kind: QueryContact}, "c")

	w.Remove([]Handle{h1})
	if w.objects[h1].inUse {
		t.Fatal("expected h1 to be freed")
	}
	if !w.objects[h3].inUse || w.Object(h3).Data != "c" {
		t.Fatal("removing h1 must not corrupt surviving objects")
	}
}

func TestQueryPointFiltersToExactShape(t *testing.T) {
	w := New[string](0)
	groups := Groups{TeamMembership: TeamStage, TeamWhitelist: TeamAll, RoleMembership: RoleNormalBounding, RoleWhitelist: RoleMovement}
	w.Add(broadphase.ClassStatic, at(0, 0, 0), geom.Sphere{Radius: fx.One}, groups, QueryType{Kind: QueryContact}, "ball")
	w.Update([]broadphase.Class{broadphase.ClassStatic})

	inside := w.QueryPoint(broadphase.ClassMove, fx.V3(0, 0, 0))
	if len(inside) != 1 {
		t.Fatalf("expected point at the center to hit the sphere, got %v", inside)
	}

	outsideBV := w.QueryPoint(broadphase.ClassMove, fx.V3(fx.FromInt(2), fx.FromInt(2), fx.FromInt(2)))
	if len(outsideBV) != 0 {
		t.Fatalf("expected point far outside the sphere's AABB to miss, got %v", outsideBV)
	}
}

func TestFirstImpactWithObj(t *testing.T) {
	w := New[string](0)
	groups := Groups{TeamMembership: TeamAll, TeamWhitelist: TeamAll, RoleMembership: RoleNormalBounding, RoleWhitelist: RoleMovement}

	mover := w.Add(broadphase.ClassMove, at(0, 0, 0), geom.Sphere{Radius: fx.One}, groups, QueryType{Kind: QueryContact}, "mover")
	w.Add(broadphase.ClassStatic, at(10, 0, 0), geom.Sphere{Radius: fx.One}, groups, QueryType{Kind: QueryContact}, "wall")
	w.Update([]broadphase.Class{broadphase.ClassStatic, broadphase.ClassMove})

	toi, hit := w.FirstImpactWithObj(mover, fx.V3(fx.One, 0, 0), fx.FromInt(1000))
	if !hit {
		t.Fatal("expected the mover's ray sweep to hit the wall")
	}
	want := fx.FromInt(9) // wall centered at x=10, radius 1: ray from the origin enters its surface at x=9
	if toi < want-fx.FromInt(1) || toi > want+fx.FromInt(1) {
		t.Errorf("expected TOI near %v, got %v", want, toi)
	}
}
