// Package geom defines the boundary contract toward the (external, opaque)
// shape geometry library: an AABB type, a minimal Shape interface exposing
// only the queries the collision core actually calls, and a couple of
// concrete shapes (Sphere, Box) so the broad-phase and narrow-phase layers
// above it are exercisable and testable without a real geometry engine.
package geom

import "github.com/embervale/actioncore/fx"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max fx.Vec3
}

// Union returns the smallest AABB containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: fx.Vec3Min(a.Min, b.Min), Max: fx.Vec3Max(a.Max, b.Max)}
}

// Contains reports whether a fully contains b.
func (a AABB) Contains(b AABB) bool {
	return a.Min.X <= b.Min.X && a.Min.Y <= b.Min.Y && a.Min.Z <= b.Min.Z &&
		a.Max.X >= b.Max.X && a.Max.Y >= b.Max.Y && a.Max.Z >= b.Max.Z
}

// Intersects reports whether a and b overlap (touching counts as overlap).
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// ContainsPoint reports whether p lies within a (inclusive).
func (a AABB) ContainsPoint(p fx.Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// Center returns the midpoint of the box.
func (a AABB) Center() fx.Vec3 {
	return a.Min.Add(a.Max).Scale(fx.Half)
}

// Loosened returns a grown by margin on every axis, used by the broad-phase
// to avoid churn from sub-margin motion (spec.md §4.2).
func (a AABB) Loosened(margin fx.Fx) AABB {
	m := fx.V3(margin, margin, margin)
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// RayAABB returns the entry time-of-impact (>= 0) of a ray against a, and
// whether it hits within [0, tMax]. A conservative, cheap lower bound for
// best-first search cost functions can simply be this entry distance.
func RayAABB(origin, dir fx.Vec3, tMax fx.Fx, box AABB) (fx.Fx, bool) {
	tMin := fx.Zero
	tHigh := tMax
	axes := [3][3]fx.Fx{
		{origin.X, dir.X, 0},
		{origin.Y, dir.Y, 0},
		{origin.Z, dir.Z, 0},
	}
	mins := [3]fx.Fx{box.Min.X, box.Min.Y, box.Min.Z}
	maxs := [3]fx.Fx{box.Max.X, box.Max.Y, box.Max.Z}
	for i := 0; i < 3; i++ {
		o, d := axes[i][0], axes[i][1]
		if d == 0 {
			if o < mins[i] || o > maxs[i] {
				return 0, false
			}
			continue
		}
		inv := fx.One.Div(d)
		t0 := mins[i].Sub(o).Mul(inv)
		t1 := maxs[i].Sub(o).Mul(inv)
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tHigh {
			tHigh = t1
		}
		if tMin > tHigh {
			return 0, false
		}
	}
	if tMin < 0 {
		tMin = 0
	}
	return tMin, true
}
