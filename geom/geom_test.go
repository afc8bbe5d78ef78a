package geom

import (
	"testing"

	"github.com/embervale/actioncore/fx"
)

func at(x, y, z int64) fx.Isometry {
	return fx.Isometry{Position: fx.V3(fx.FromInt(x), fx.FromInt(y), fx.FromInt(z)), Rotation: fx.QuatIdentity}
}

func TestSphereAABBAndContainsPoint(t *testing.T) {
	s := Sphere{Radius: fx.FromInt(2)}
	iso := at(1, 0, 0)

	box := s.AABB(iso)
	want := AABB{Min: fx.V3(fx.FromInt(-1), fx.FromInt(-2), fx.FromInt(-2)), Max: fx.V3(fx.FromInt(3), fx.FromInt(2), fx.FromInt(2))}
	if box != want {
		t.Fatalf("Sphere.AABB = %+v, want %+v", box, want)
	}

	if !s.ContainsPoint(iso, fx.V3(fx.FromInt(1), fx.FromInt(1), fx.FromInt(0))) {
		t.Fatal("expected point at distance 1 to be inside radius-2 sphere")
	}
	if s.ContainsPoint(iso, fx.V3(fx.FromInt(10), 0, 0)) {
		t.Fatal("expected far point to be outside the sphere")
	}
}

func TestSphereRayIntersect(t *testing.T) {
	s := Sphere{Radius: fx.FromInt(1)}
	iso := at(0, 0, 0)

	toi, hit := s.RayIntersect(iso, fx.V3(fx.FromInt(-5), 0, 0), fx.V3(fx.One, 0, 0), fx.FromInt(100))
	if !hit {
		t.Fatal("expected a ray through the origin to hit the sphere")
	}
	if toi != fx.FromInt(4) {
		t.Fatalf("expected time-of-impact 4, got %v", toi)
	}

	_, hit = s.RayIntersect(iso, fx.V3(fx.FromInt(-5), fx.FromInt(5), 0), fx.V3(fx.One, 0, 0), fx.FromInt(100))
	if hit {
		t.Fatal("expected a ray that misses the sphere entirely to report no hit")
	}
}

func TestBoxAABBAndContainsPoint(t *testing.T) {
	b := Box{HalfExtents: fx.V3(fx.FromInt(1), fx.FromInt(2), fx.FromInt(3))}
	iso := at(5, 0, 0)

	box := b.AABB(iso)
	want := AABB{Min: fx.V3(fx.FromInt(4), fx.FromInt(-2), fx.FromInt(-3)), Max: fx.V3(fx.FromInt(6), fx.FromInt(2), fx.FromInt(3))}
	if box != want {
		t.Fatalf("Box.AABB = %+v, want %+v", box, want)
	}

	if !b.ContainsPoint(iso, fx.V3(fx.FromInt(5), fx.FromInt(1), fx.FromInt(0))) {
		t.Fatal("expected a point inside the box to be contained")
	}
	if b.ContainsPoint(iso, fx.V3(fx.FromInt(100), 0, 0)) {
		t.Fatal("expected a far point to not be contained")
	}
}

func TestAABBUnionContainsAndIntersects(t *testing.T) {
	a := AABB{Min: fx.V3(0, 0, 0), Max: fx.V3(fx.One, fx.One, fx.One)}
	b := AABB{Min: fx.V3(fx.FromInt(2), 0, 0), Max: fx.V3(fx.FromInt(3), fx.One, fx.One)}

	u := a.Union(b)
	if !u.Contains(a) || !u.Contains(b) {
		t.Fatalf("union %+v should contain both inputs %+v, %+v", u, a, b)
	}
	if a.Intersects(b) {
		t.Fatal("disjoint boxes should not intersect")
	}
	if !u.Intersects(a) {
		t.Fatal("union should intersect its own input")
	}
}

func TestAABBLoosenedGrowsOnEveryAxis(t *testing.T) {
	a := AABB{Min: fx.V3(0, 0, 0), Max: fx.V3(fx.One, fx.One, fx.One)}
	grown := a.Loosened(fx.One)
	want := AABB{Min: fx.V3(-fx.One, -fx.One, -fx.One), Max: fx.V3(fx.FromInt(2), fx.FromInt(2), fx.FromInt(2))}
	if grown != want {
		t.Fatalf("Loosened(1) = %+v, want %+v", grown, want)
	}
}

func TestRayAABBEntryDistance(t *testing.T) {
	box := AABB{Min: fx.V3(fx.FromInt(2), fx.FromInt(-1), fx.FromInt(-1)), Max: fx.V3(fx.FromInt(4), fx.FromInt(1), fx.FromInt(1))}
	toi, hit := RayAABB(fx.V3(0, 0, 0), fx.V3(fx.One, 0, 0), fx.FromInt(100), box)
	if !hit {
		t.Fatal("expected ray to hit the box")
	}
	if toi != fx.FromInt(2) {
		t.Fatalf("expected entry distance 2, got %v", toi)
	}

	_, hit = RayAABB(fx.V3(0, fx.FromInt(10), 0), fx.V3(fx.One, 0, 0), fx.FromInt(100), box)
	if hit {
		t.Fatal("expected a parallel ray outside the box's Y range to miss")
	}
}
