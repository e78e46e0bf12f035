package domain

import (
	"math"

	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/vector"
)

// NodalPlane describes a fault plane in degrees.
type NodalPlane struct {
	Strike float64 `json:"strike"` // [0, 360)
	Dip    float64 `json:"dip"`    // [0, 90]
	Rake   float64 `json:"rake"`   // (-180, 180]
}

const (
	deg = 180 / math.Pi
	rad = math.Pi / 180
)

// nodalPlanesFromAxes builds both planes of the double couple whose tension
// and pressure axes are t and p (unit East/North/Down vectors). The plane
// normals bisect T and P at ±45°.
func nodalPlanesFromAxes(t, p vector.Vector) (NodalPlane, NodalPlane, error) {
	sum, err := vector.Add(t, p)
	if err != nil {
		return NodalPlane{}, NodalPlane{}, err
	}
	diff, err := vector.Subtract(t, p)
	if err != nil {
		return NodalPlane{}, NodalPlane{}, err
	}
	normal := vector.Scale(sum, 1/math.Sqrt2)
	slip := vector.Scale(diff, 1/math.Sqrt2)

	return planeFromNormalSlip(normal, slip), planeFromNormalSlip(slip, normal), nil
}

// planeFromNormalSlip converts a fault normal and slip direction, both unit
// East/North/Down vectors, into strike, dip and rake.
func planeFromNormalSlip(normal, slip vector.Vector) NodalPlane {
	if normal.Z() > 0 {
		// Use the hanging-wall normal, which points up.
		normal = vector.Scale(normal, -1)
		slip = vector.Scale(slip, -1)
	}
	nE, nN, nD := normal.X(), normal.Y(), normal.Z()
	sE, sN, sD := slip.X(), slip.Y(), slip.Z()

	dip := math.Acos(clamp(-nD, -1, 1))
	strike := math.Atan2(-nN, nE)

	cosS, sinS := math.Cos(strike), math.Sin(strike)
	cosD, sinD := math.Cos(dip), math.Sin(dip)

	// Slip along strike, and slip for a pure reverse (rake 90°) motion.
	along := sN*cosS + sE*sinS
	updip := sN*cosD*sinS - sE*cosD*cosS - sD*sinD
	rake := math.Atan2(updip, along)

	return NodalPlane{
		Strike: normalizeDegrees(strike * deg),
		Dip:    dip * deg,
		Rake:   normalizeRake(rake * deg),
	}
}

// normalAndSlip returns the upward fault normal and slip vector of a plane in
// East/North/Down axes (Aki & Richards, box 4.4).
func normalAndSlip(plane NodalPlane) (normal, slip vector.Vector) {
	phi, delta, lambda := plane.Strike*rad, plane.Dip*rad, plane.Rake*rad
	sinP, cosP := math.Sin(phi), math.Cos(phi)
	sinD, cosD := math.Sin(delta), math.Cos(delta)
	sinL, cosL := math.Sin(lambda), math.Cos(lambda)

	normal = vector.New(
		sinD*cosP,
		-sinD*sinP,
		-cosD,
	)
	slip = vector.New(
		cosL*sinP-sinL*cosD*cosP,
		cosL*cosP+sinL*cosD*sinP,
		-sinL*sinD,
	)
	return normal, slip
}

// AuxiliaryPlane returns the second nodal plane of the double couple that
// has plane as one of its planes.
func AuxiliaryPlane(plane NodalPlane) NodalPlane {
	normal, slip := normalAndSlip(plane)
	return planeFromNormalSlip(slip, normal)
}

// TensorFromNodalPlane returns the pure double-couple tensor with scalar
// moment m0 that slips on plane. Units default to N·m and the type to
// focal-mechanism.
func TensorFromNodalPlane(plane NodalPlane, m0 float64) MomentTensor {
	n, s := normalAndSlip(plane)

	// M = m0 (n sᵀ + s nᵀ) in East/North/Down.
	m := func(i, j int) float64 { return m0 * (n[i]*s[j] + s[i]*n[j]) }
	const e, north, d = 0, 1, 2

	t := MomentTensor{
		Mrr:   m(d, d),
		Mtt:   m(north, north),
		Mpp:   m(e, e),
		Mrt:   m(north, d),
		Mrp:   -m(e, d),
		Mtp:   -m(e, north),
		Units: UnitsNewtonMeter,
		Type:  ProductFocalMechanism,
	}
	t.Scale, t.Exponent = DisplayScale(t.ScalarMoment())
	return t
}

func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		// -tiny + 360 rounds to 360.
		a = 0
	}
	return a
}

func normalizeRake(a float64) float64 {
	a = math.Mod(a, 360)
	switch {
	case a > 180:
		a -= 360
	case a <= -180:
		a += 360
	}
	return a
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
