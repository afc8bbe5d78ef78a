package fx

// Quat is a unit quaternion rotation, all components Fx. Stage/character
// orientation and script-facing rotation fields use Quat rather than Euler
// angles so composition is associative and determinism-preserving.
type Quat struct {
	X, Y, Z, W Fx
}

// QuatIdentity is the no-rotation quaternion.
var QuatIdentity = Quat{0, 0, 0, One}

// QuatFromAxisAngle builds a rotation of angle radians about axis (which
// need not be pre-normalized).
func QuatFromAxisAngle(axis Vec3, angle Fx) Quat {
	a := axis.Normalized()
	half := angle.Div(FromInt(2))
	s := Sin(half)
	return Quat{a.X.Mul(s), a.Y.Mul(s), a.Z.Mul(s), Cos(half)}
}

func (q Quat) Mul(r Quat) Quat {
	return Quat{
		X: q.W.Mul(r.X).Add(q.X.Mul(r.W)).Add(q.Y.Mul(r.Z)).Sub(q.Z.Mul(r.Y)),
		Y: q.W.Mul(r.Y).Sub(q.X.Mul(r.Z)).Add(q.Y.Mul(r.W)).Add(q.Z.Mul(r.X)),
		Z: q.W.Mul(r.Z).Add(q.X.Mul(r.Y)).Sub(q.Y.Mul(r.X)).Add(q.Z.Mul(r.W)),
		W: q.W.Mul(r.W).Sub(q.X.Mul(r.X)).Sub(q.Y.Mul(r.Y)).Sub(q.Z.Mul(r.Z)),
	}
}

func (q Quat) Conjugate() Quat { return Quat{q.X.Neg(), q.Y.Neg(), q.Z.Neg(), q.W} }

func (q Quat) LengthSq() Fx {
	return q.X.Mul(q.X).Add(q.Y.Mul(q.Y)).Add(q.Z.Mul(q.Z)).Add(q.W.Mul(q.W))
}

// Normalized renormalizes a quaternion that has drifted from unit length
// after repeated composition; returns Identity if it has collapsed to zero.
func (q Quat) Normalized() Quat {
	l := Sqrt(q.LengthSq())
	if l == 0 {
		return QuatIdentity
	}
	inv := One.Div(l)
	return Quat{q.X.Mul(inv), q.Y.Mul(inv), q.Z.Mul(inv), q.W.Mul(inv)}
}

// RotateVec3 applies the rotation to v.
func (q Quat) RotateVec3(v Vec3) Vec3 {
	qv := Vec3{q.X, q.Y, q.Z}
	t := qv.Cross(v).Scale(FromInt(2))
	return v.Add(t.Scale(q.W)).Add(qv.Cross(t))
}

// Isometry is a rigid transform: rotation composed with translation,
// applied as RotateVec3(p) + Position.
type Isometry struct {
	Position Vec3
	Rotation Quat
}

var IsometryIdentity = Isometry{Rotation: QuatIdentity}

// Transform maps a point from local space into world space.
func (iso Isometry) Transform(p Vec3) Vec3 {
	return iso.Rotation.RotateVec3(p).Add(iso.Position)
}

// Inverse returns the isometry that undoes iso.
func (iso Isometry) Inverse() Isometry {
	invRot := iso.Rotation.Conjugate()
	return Isometry{
		Position: invRot.RotateVec3(iso.Position.Neg()),
		Rotation: invRot,
	}
}

// Compose returns the isometry equivalent to applying iso then other.
func (iso Isometry) Compose(other Isometry) Isometry {
	return Isometry{
		Position: other.Rotation.RotateVec3(iso.Position).Add(other.Position),
		Rotation: other.Rotation.Mul(iso.Rotation),
	}
}

// IsometryLerp linearly interpolates position and (non-spherically) blends rotation
// by s in [0, One]; used for predicted-next-isometry style interpolation
// where a cheap approximation is acceptable.
func IsometryLerp(a, b Isometry, s Fx) Isometry {
	pos := Vec3{
		Lerp(a.Position.X, b.Position.X, s),
		Lerp(a.Position.Y, b.Position.Y, s),
		Lerp(a.Position.Z, b.Position.Z, s),
	}
	rot := Quat{
		Lerp(a.Rotation.X, b.Rotation.X, s),
		Lerp(a.Rotation.Y, b.Rotation.Y, s),
		Lerp(a.Rotation.Z, b.Rotation.Z, s),
		Lerp(a.Rotation.W, b.Rotation.W, s),
	}.Normalized()
	return Isometry{Position: pos, Rotation: rot}
}
