package motion

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi

	// Above this dot product slerp degenerates; fall back to normalised lerp.
	slerpLinearThreshold = 0.9995
)

// Identity is the zero rotation.
var Identity = quat.Number{Real: 1}

// EulerToQuat converts a [z,x,y] degree triple to a unit quaternion using
// the Z-X-Y composition.
func EulerToQuat(e Euler) quat.Number {
	x, y, z := e[1]*deg2rad, e[2]*deg2rad, e[0]*deg2rad

	c1, s1 := math.Cos(x/2), math.Sin(x/2)
	c2, s2 := math.Cos(y/2), math.Sin(y/2)
	c3, s3 := math.Cos(z/2), math.Sin(z/2)

	return quat.Number{
		Real: c1*c2*c3 - s1*s2*s3,
		Imag: s1*c2*c3 - c1*s2*s3,
		Jmag: c1*s2*c3 + s1*c2*s3,
		Kmag: c1*c2*s3 + s1*s2*c3,
	}
}

// QuatToEuler decodes a unit quaternion into a [z,x,y] degree triple. It is
// the inverse of EulerToQuat away from the X = ±90° singularity.
func QuatToEuler(q quat.Number) Euler {
	qx, qy, qz, qw := q.Imag, q.Jmag, q.Kmag, q.Real

	x2, y2, z2 := qx+qx, qy+qy, qz+qz
	xx, xy, xz := qx*x2, qx*y2, qx*z2
	yy, yz, zz := qy*y2, qy*z2, qz*z2
	wx, wy, wz := qw*x2, qw*y2, qw*z2

	m11, m12 := 1-(yy+zz), xy-wz
	m21, m22 := xy+wz, 1-(xx+zz)
	m31, m32, m33 := xz-wy, yz+wx, 1-(xx+yy)

	ex := math.Asin(clamp(m32, -1, 1))
	var ey, ez float64
	if math.Abs(m32) < 0.9999999 {
		ey = math.Atan2(-m31, m33)
		ez = math.Atan2(-m12, m22)
	} else {
		ez = math.Atan2(m21, m11)
	}

	return Euler{ez * rad2deg, ex * rad2deg, ey * rad2deg}
}

// Dot returns the four-component dot product of a and b.
func Dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// Slerp spherically interpolates from a to b along the shortest arc.
func Slerp(a, b quat.Number, t float64) quat.Number {
	dot := Dot(a, b)
	if dot < 0 {
		b = quat.Scale(-1, b)
		dot = -dot
	}

	if dot > slerpLinearThreshold {
		r := quat.Add(a, quat.Scale(t, quat.Sub(b, a)))
		return quat.Scale(1/quat.Abs(r), r)
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return quat.Add(quat.Scale(wa, a), quat.Scale(wb, b))
}

// SlerpEuler interpolates two Euler triples through quaternion space.
func SlerpEuler(a, b Euler, t float64) Euler {
	return QuatToEuler(Slerp(EulerToQuat(a), EulerToQuat(b), t))
}

// LerpPos linearly interpolates two positions.
func LerpPos(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// AngleDeg returns the rotation angle between two unit quaternions in degrees.
// The half-angle form stays exact at zero, where acos of the dot product
// does not.
func AngleDeg(a, b quat.Number) float64 {
	if Dot(a, b) < 0 {
		b = quat.Scale(-1, b)
	}
	return 4 * math.Atan2(quat.Abs(quat.Sub(a, b)), quat.Abs(quat.Add(a, b))) * rad2deg
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
