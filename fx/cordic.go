package fx

// CORDIC (COordinate Rotation DIgital Computer) on raw Q32.32 bits. The
// angle table and gain constant below are baked-in integer literals rather
// than computed from host math.Atan at init time, so the algorithm never
// touches a float and produces bit-identical results on every platform.

const cordicIters = 32

// cordicAngle[i] = atan(2^-i) in Q32.32.
var cordicAngle = [cordicIters]Fx{
	3373259426, 1991351318, 1052175346, 534100635, 268086748, 134174063,
	67103403, 33553749, 16777131, 8388597, 4194303, 2097152, 1048576,
	524288, 262144, 131072, 65536, 32768, 16384, 8192, 4096, 2048, 1024,
	512, 256, 128, 64, 32, 16, 8, 4, 2,
}

// cordicGain = K = prod(1/sqrt(1+2^-2i)) in Q32.32, the CORDIC scale factor
// that circular rotation mode leaves behind.
const cordicGain Fx = 2608131496

// cordicRotate runs circular-mode CORDIC rotation to compute (cos, sin) of
// angle, which must first be reduced to [-Pi, Pi]. Angles outside
// [-Pi/2, Pi/2] are shifted by Pi into that range, where the iteration
// converges, and both outputs are negated back.
func cordicRotate(angle Fx) (cos, sin Fx) {
	halfPi := Fx(int64(Pi) >> 1)
	flip := false
	if angle > halfPi {
		angle, flip = angle.Sub(Pi), true
	} else if angle < halfPi.Neg() {
		angle, flip = angle.Add(Pi), true
	}
	x, y, z := cordicGain, Fx(0), angle
	for i := 0; i < cordicIters; i++ {
		shift := uint(i)
		xShift := Fx(int64(x) >> shift)
		yShift := Fx(int64(y) >> shift)
		if z >= 0 {
			x, y, z = x.Sub(yShift), y.Add(xShift), z.Sub(cordicAngle[i])
		} else {
			x, y, z = x.Add(yShift), y.Sub(xShift), z.Add(cordicAngle[i])
		}
	}
	if flip {
		return x.Neg(), y.Neg()
	}
	return x, y
}

// reduceAngle wraps a into (-Pi, Pi].
func reduceAngle(a Fx) Fx {
	for a > Pi {
		a = a.Sub(Tau)
	}
	for a <= Pi.Neg() {
		a = a.Add(Tau)
	}
	return a
}

// Sin returns the sine of a radian angle.
func Sin(a Fx) Fx {
	r := reduceAngle(a)
	_, s := cordicRotate(r)
	return s
}

// Cos returns the cosine of a radian angle.
func Cos(a Fx) Fx {
	r := reduceAngle(a)
	c, _ := cordicRotate(r)
	return c
}

// Tan returns sin/cos (saturating on division, per Fx.Div semantics).
func Tan(a Fx) Fx {
	c, s := cordicRotate(reduceAngle(a))
	return s.Div(c)
}

// Atan2 runs vectoring-mode CORDIC to recover the angle of (y, x).
func Atan2(y, x Fx) Fx {
	if x == 0 && y == 0 {
		return 0
	}
	negate := false
	if x < 0 {
		// Vectoring mode only converges for x > 0; reflect into the right
		// half-plane and adjust the result by +/-Pi afterward.
		x, y = x.Neg(), y.Neg()
		negate = true
	}
	cx, cy, cz := x, y, Fx(0)
	for i := 0; i < cordicIters; i++ {
		shift := uint(i)
		xShift := Fx(int64(cx) >> shift)
		yShift := Fx(int64(cy) >> shift)
		if cy < 0 {
			cx, cy, cz = cx.Sub(yShift), cy.Add(xShift), cz.Sub(cordicAngle[i])
		} else {
			cx, cy, cz = cx.Add(yShift), cy.Sub(xShift), cz.Add(cordicAngle[i])
		}
	}
	angle := cz
	if negate {
		if angle <= 0 {
			angle = angle.Add(Pi)
		} else {
			angle = angle.Sub(Pi)
		}
	}
	return angle
}

// Sqrt returns the non-negative square root via Newton-Raphson iteration in
// Q32.32; negative inputs return 0 (no imaginary results in this domain).
func Sqrt(a Fx) Fx {
	if a <= 0 {
		return 0
	}
	if a == One {
		return One
	}
	// Initial guess: a rough power-of-two estimate keeps iteration count low
	// and bounded regardless of magnitude.
	guess := a
	if guess < One {
		guess = One
	} else {
		for guess > One && guess.Div(FromInt(2)) > One {
			guess = guess.Div(FromInt(2))
		}
	}
	for i := 0; i < 24; i++ {
		next := guess.Add(a.Div(guess)).Div(FromInt(2))
		if next == guess {
			break
		}
		guess = next
	}
	return guess
}

// cordicAtanh[i] = atanh(2^-(i+1)) in Q32.32, the hyperbolic-mode CORDIC
// angle table (indices run from 2^-1, unlike circular mode's 2^-0).
var cordicAtanh = [cordicIters]Fx{
	2359251925, 1096989674, 539693625, 268785803, 134261444, 67114326,
	33555115, 16777301, 8388619, 4194305, 2097152, 1048576, 524288, 262144,
	131072, 65536, 32768, 16384, 8192, 4096, 2048, 1024, 512, 256, 128, 64,
	32, 16, 8, 4, 2, 1,
}

// cordicHyperRepeats are the iteration indices (1-based, matching
// cordicAtanh's i) hyperbolic CORDIC must repeat for convergence; unlike
// circular mode, a plain single pass over the angle table does not
// converge.
var cordicHyperRepeats = [2]int{4, 13}

// cordicHyperInvGain = 1/K_h in Q32.32, where K_h = prod(sqrt(1-2^-2i)) over
// cordicIters iterations plus the two repeats above.
const cordicHyperInvGain Fx = 5186160416

// cordicHyperRotate runs hyperbolic-mode CORDIC rotation, returning
// (cosh(z), sinh(z)) for z already range-reduced into the algorithm's
// convergence radius (|z| < ~1.118; Exp below always passes r in [0, Ln2)).
func cordicHyperRotate(z Fx) (cosh, sinh Fx) {
	x, y, w := One, Fx(0), z
	step := func(i int) {
		shift := uint(i)
		xShift := Fx(int64(x) >> shift)
		yShift := Fx(int64(y) >> shift)
		if w >= 0 {
			x, y, w = x.Add(yShift), y.Add(xShift), w.Sub(cordicAtanh[i-1])
		} else {
			x, y, w = x.Sub(yShift), y.Sub(xShift), w.Add(cordicAtanh[i-1])
		}
	}
	repeat := 0
	for i := 1; i <= cordicIters; i++ {
		step(i)
		if repeat < len(cordicHyperRepeats) && cordicHyperRepeats[repeat] == i {
			step(i)
			repeat++
		}
	}
	return x.Mul(cordicHyperInvGain), y.Mul(cordicHyperInvGain)
}

// powSaturating raises base to the non-negative integer power exp by
// repeated squaring: O(log exp) saturating multiplications, so the loop
// bound depends on exp's bit-length rather than its value — it terminates
// in at most 63 steps no matter how large exp is, saturating to Max long
// before it would ever reach that bound.
func powSaturating(base Fx, exp int64) Fx {
	result := One
	for exp > 0 {
		if exp&1 != 0 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		exp >>= 1
	}
	return result
}

// Exp returns e^a, computed by hyperbolic-mode CORDIC on the raw bits
// (spec.md §3.1) rather than a host float. Range reduction to a = n*Ln2 + r,
// 0 <= r < Ln2, is a single raw-integer division (O(1) regardless of a's
// magnitude, unlike a subtract-until-small loop), and folding 2^n back in
// uses powSaturating's bounded repeated squaring — so the step count is
// bounded by the bit length of n rather than growing with a's value.
func Exp(a Fx) Fx {
	if a == 0 {
		return One
	}
	neg := a < 0
	if neg {
		a = a.Neg()
	}

	n := int64(a) / int64(Ln2)
	r := Fx(int64(a) - n*int64(Ln2))

	cosh, sinh := cordicHyperRotate(r)
	result := cosh.Add(sinh).Mul(powSaturating(FromInt(2), n))

	if neg {
		return One.Div(result)
	}
	return result
}

// Degrees converts a radian value to degrees.
func Degrees(rad Fx) Fx {
	// 180/Pi in Q32.32.
	const fx180OverPi Fx = 246083499208
	return rad.Mul(fx180OverPi)
}

// Radians converts a degree value to radians.
func Radians(deg Fx) Fx {
	// Pi/180 in Q32.32.
	const fxPiOver180 Fx = 74961320
	return deg.Mul(fxPiOver180)
}
