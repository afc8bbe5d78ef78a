package geom

import "github.com/embervale/actioncore/fx"

// Shape is the opaque boundary contract toward the (external) shape
// geometry library (spec.md §1): the collision core only ever needs an
// AABB under a given isometry, a point-containment test, and a ray
// intersection with an exact time-of-impact. Concrete shape libraries
// plug in here; Sphere and Box below are reference implementations used
// by this module's own tests and by the demo cmd/ binaries.
type Shape interface {
	// AABB returns the world-space bounding box of the shape placed at iso.
	AABB(iso fx.Isometry) AABB
	// ContainsPoint reports whether p (world space) lies inside the shape
	// placed at iso.
	ContainsPoint(iso fx.Isometry, p fx.Vec3) bool
	// RayIntersect returns the entry time-of-impact of a world-space ray
	// against the shape placed at iso, and whether it hits within tMax.
	RayIntersect(iso fx.Isometry, origin, dir fx.Vec3, tMax fx.Fx) (fx.Fx, bool)
}

// Sphere is a shape centered on the isometry's position with local-space
// radius r.
type Sphere struct {
	Radius fx.Fx
}

func (s Sphere) AABB(iso fx.Isometry) AABB {
	r := fx.V3(s.Radius, s.Radius, s.Radius)
	return AABB{Min: iso.Position.Sub(r), Max: iso.Position.Add(r)}
}

func (s Sphere) ContainsPoint(iso fx.Isometry, p fx.Vec3) bool {
	d := p.Sub(iso.Position)
	return d.LengthSq() <= s.Radius.Mul(s.Radius)
}

func (s Sphere) RayIntersect(iso fx.Isometry, origin, dir fx.Vec3, tMax fx.Fx) (fx.Fx, bool) {
	oc := origin.Sub(iso.Position)
	a := dir.Dot(dir)
	if a == 0 {
		return 0, false
	}
	b := oc.Dot(dir).Mul(fx.FromInt(2))
	c := oc.Dot(oc).Sub(s.Radius.Mul(s.Radius))
	disc := b.Mul(b).Sub(a.Mul(c).Mul(fx.FromInt(4)))
	if disc < 0 {
		return 0, false
	}
	sq := fx.Sqrt(disc)
	t := b.Neg().Sub(sq).Div(a.Mul(fx.FromInt(2)))
	if t < 0 {
		t = b.Neg().Add(sq).Div(a.Mul(fx.FromInt(2)))
	}
	if t < 0 || t > tMax {
		return 0, false
	}
	return t, true
}

// Box is an axis-aligned (in local space) box of given local half-extents,
// placed and rotated by the isometry: ContainsPoint and RayIntersect work in
// the box's local frame, and AABB bounds its rotated corners.
type Box struct {
	HalfExtents fx.Vec3
}

func (b Box) localAABB() AABB {
	return AABB{Min: b.HalfExtents.Neg(), Max: b.HalfExtents}
}

func (b Box) AABB(iso fx.Isometry) AABB {
	local := b.localAABB()
	corners := [8]fx.Vec3{
		{local.Min.X, local.Min.Y, local.Min.Z}, {local.Max.X, local.Min.Y, local.Min.Z},
		{local.Min.X, local.Max.Y, local.Min.Z}, {local.Max.X, local.Max.Y, local.Min.Z},
		{local.Min.X, local.Min.Y, local.Max.Z}, {local.Max.X, local.Min.Y, local.Max.Z},
		{local.Min.X, local.Max.Y, local.Max.Z}, {local.Max.X, local.Max.Y, local.Max.Z},
	}
	world := iso.Transform(corners[0])
	out := AABB{Min: world, Max: world}
	for _, c := range corners[1:] {
		w := iso.Transform(c)
		out.Min = fx.Vec3Min(out.Min, w)
		out.Max = fx.Vec3Max(out.Max, w)
	}
	return out
}

func (b Box) ContainsPoint(iso fx.Isometry, p fx.Vec3) bool {
	local := iso.Inverse().Transform(p)
	return b.localAABB().ContainsPoint(local)
}

func (b Box) RayIntersect(iso fx.Isometry, origin, dir fx.Vec3, tMax fx.Fx) (fx.Fx, bool) {
	inv := iso.Inverse()
	lo := inv.Transform(origin)
	ld := inv.Rotation.RotateVec3(dir)
	return RayAABB(lo, ld, tMax, b.localAABB())
}
