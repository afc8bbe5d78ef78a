package fx

// Vec2 is a deterministic 2D vector over Fx.
type Vec2 struct {
	X, Y Fx
}

func V2(x, y Fx) Vec2 { return Vec2{x, y} }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X.Add(b.X), a.Y.Add(b.Y)} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X.Sub(b.X), a.Y.Sub(b.Y)} }
func (a Vec2) Neg() Vec2       { return Vec2{a.X.Neg(), a.Y.Neg()} }
func (a Vec2) Scale(s Fx) Vec2 { return Vec2{a.X.Mul(s), a.Y.Mul(s)} }

func (a Vec2) Dot(b Vec2) Fx { return a.X.Mul(b.X).Add(a.Y.Mul(b.Y)) }

func (a Vec2) LengthSq() Fx { return a.Dot(a) }

func (a Vec2) Length() Fx { return Sqrt(a.LengthSq()) }

// Normalized returns a unit vector in the same direction, or the zero vector
// if a is (numerically) zero-length.
func (a Vec2) Normalized() Vec2 {
	l := a.Length()
	if l == 0 {
		return Vec2{}
	}
	return a.Scale(One.Div(l))
}

// Angle returns the angle of the vector from the positive X axis.
func (a Vec2) Angle() Fx { return Atan2(a.Y, a.X) }

func (a Vec2) IsZero() bool { return a.X == 0 && a.Y == 0 }

// Vec3 is a deterministic 3D vector over Fx.
type Vec3 struct {
	X, Y, Z Fx
}

func V3(x, y, z Fx) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X.Add(b.X), a.Y.Add(b.Y), a.Z.Add(b.Z)} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X.Sub(b.X), a.Y.Sub(b.Y), a.Z.Sub(b.Z)} }
func (a Vec3) Neg() Vec3       { return Vec3{a.X.Neg(), a.Y.Neg(), a.Z.Neg()} }
func (a Vec3) Scale(s Fx) Vec3 { return Vec3{a.X.Mul(s), a.Y.Mul(s), a.Z.Mul(s)} }

func (a Vec3) Dot(b Vec3) Fx { return a.X.Mul(b.X).Add(a.Y.Mul(b.Y)).Add(a.Z.Mul(b.Z)) }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y.Mul(b.Z).Sub(a.Z.Mul(b.Y)),
		a.Z.Mul(b.X).Sub(a.X.Mul(b.Z)),
		a.X.Mul(b.Y).Sub(a.Y.Mul(b.X)),
	}
}

func (a Vec3) LengthSq() Fx { return a.Dot(a) }
func (a Vec3) Length() Fx   { return Sqrt(a.LengthSq()) }

func (a Vec3) Normalized() Vec3 {
	l := a.Length()
	if l == 0 {
		return Vec3{}
	}
	inv := One.Div(l)
	return a.Scale(inv)
}

func (a Vec3) IsZero() bool { return a.X == 0 && a.Y == 0 && a.Z == 0 }

func Vec3Min(a, b Vec3) Vec3 {
	return Vec3{Min2(a.X, b.X), Min2(a.Y, b.Y), Min2(a.Z, b.Z)}
}

func Vec3Max(a, b Vec3) Vec3 {
	return Vec3{Max2(a.X, b.X), Max2(a.Y, b.Y), Max2(a.Z, b.Z)}
}
