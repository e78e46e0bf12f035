package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/matrix"
	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/vector"
)

// Axis names.
const (
	AxisT = "T"
	AxisN = "N"
	AxisP = "P"
)

// PrincipalAxis is one eigenvector of the moment tensor.
type PrincipalAxis struct {
	Name       string        `json:"name"`
	Azimuth    float64       `json:"azimuth"` // radians clockwise from north, [0, 2π)
	Plunge     float64       `json:"plunge"`  // radians below horizontal, [0, π/2]
	Eigenvalue float64       `json:"eigenvalue"`
	Vector     vector.Vector `json:"vector"` // unit (East, North, Down)
}

// AzimuthDegrees returns the azimuth in degrees.
func (a PrincipalAxis) AzimuthDegrees() float64 { return a.Azimuth * 180 / math.Pi }

// PlungeDegrees returns the plunge in degrees.
func (a PrincipalAxis) PlungeDegrees() float64 { return a.Plunge * 180 / math.Pi }

// Decomposition is the numerical result of decomposing a moment tensor.
type Decomposition struct {
	T         PrincipalAxis `json:"t_axis"`
	N         PrincipalAxis `json:"n_axis"`
	P         PrincipalAxis `json:"p_axis"`
	NP1       NodalPlane    `json:"np1"`
	NP2       NodalPlane    `json:"np2"`
	Moment    float64       `json:"moment"`
	PercentDC float64       `json:"percent_dc"`
	Rotations int           `json:"jacobi_rotations"`
}

// Decompose diagonalizes the tensor and derives its principal axes, nodal
// planes, scalar moment and percent double-couple. Eigensolver failures are
// returned wrapped in ErrDecompositionFailed; no fallback geometry is produced.
// Non-finite components fail with ErrMalformedTensor.
func Decompose(t MomentTensor, opts ...matrix.JacobiOption) (Decomposition, error) {
	if err := checkFinite(t.Components()); err != nil {
		return Decomposition{}, err
	}
	es, err := t.Matrix().Jacobi(opts...)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%w: %w", ErrDecompositionFailed, err)
	}

	vecs := append([]matrix.Eigenvector(nil), es.Vectors...)
	sort.SliceStable(vecs, func(i, j int) bool {
		return vecs[i].Eigenvalue > vecs[j].Eigenvalue
	})

	axes := make([]PrincipalAxis, 3)
	for i, name := range []string{AxisT, AxisN, AxisP} {
		axes[i], err = newPrincipalAxis(name, vecs[i])
		if err != nil {
			return Decomposition{}, fmt.Errorf("%w: %s axis: %w", ErrDecompositionFailed, name, err)
		}
	}
	tAxis, nAxis, pAxis := axes[0], axes[1], axes[2]

	np1, np2, err := nodalPlanesFromAxes(tAxis.Vector, pAxis.Vector)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%w: nodal planes: %w", ErrDecompositionFailed, err)
	}

	eigenvalues := []float64{tAxis.Eigenvalue, nAxis.Eigenvalue, pAxis.Eigenvalue}
	return Decomposition{
		T:         tAxis,
		N:         nAxis,
		P:         pAxis,
		NP1:       np1,
		NP2:       np2,
		Moment:    scalarMoment(eigenvalues),
		PercentDC: percentDoubleCouple(eigenvalues),
		Rotations: es.Rotations,
	}, nil
}

// newPrincipalAxis orients the eigenvector downward and measures it.
func newPrincipalAxis(name string, ev matrix.Eigenvector) (PrincipalAxis, error) {
	v, err := vector.Unit(ev.Vector)
	if err != nil {
		return PrincipalAxis{}, err
	}
	plunge, err := vector.Plunge(v)
	if err != nil {
		return PrincipalAxis{}, err
	}
	if plunge < 0 {
		// Reversing the vector adds π to the azimuth and negates the plunge.
		v = vector.Scale(v, -1)
		plunge = -plunge
	}
	azimuth, err := vector.Azimuth(v)
	if err != nil {
		return PrincipalAxis{}, err
	}
	return PrincipalAxis{
		Name:       name,
		Azimuth:    normalizeRadians(azimuth),
		Plunge:     plunge,
		Eigenvalue: ev.Eigenvalue,
		Vector:     v,
	}, nil
}

// scalarMoment returns sqrt(Σλ²/2), which equals the Frobenius-norm moment.
func scalarMoment(eigenvalues []float64) float64 {
	var sum float64
	for _, l := range eigenvalues {
		sum += l * l
	}
	return math.Sqrt(sum / 2)
}

// percentDoubleCouple returns (1 − 2|ε|)·100 where ε is the deviatoric
// eigenvalue of smallest magnitude divided by the magnitude of the largest.
// An isotropic or zero tensor has no double couple.
func percentDoubleCouple(eigenvalues []float64) float64 {
	iso := (eigenvalues[0] + eigenvalues[1] + eigenvalues[2]) / 3
	dev := []float64{eigenvalues[0] - iso, eigenvalues[1] - iso, eigenvalues[2] - iso}
	sort.Slice(dev, func(i, j int) bool { return math.Abs(dev[i]) < math.Abs(dev[j]) })

	largest := math.Abs(dev[2])
	scale := math.Max(math.Abs(eigenvalues[0]), math.Abs(eigenvalues[2]))
	if largest == 0 || largest <= 1e-12*scale {
		return 0
	}
	eps := math.Abs(dev[0]) / largest
	return math.Max(0, math.Min(100, (1-2*eps)*100))
}

func normalizeRadians(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}
