package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/matrix"
)

// UnitsNewtonMeter is the default unit for tensor components.
const UnitsNewtonMeter = "N-m"

// UnitsDyneCentimeter is the CGS unit some older catalogs still publish.
const UnitsDyneCentimeter = "dyne-cm"

var (
	// ErrMalformedTensor is returned for tensors without exactly six finite components.
	ErrMalformedTensor = errors.New("malformed moment tensor")

	// ErrDecompositionFailed is returned when the eigensolver could not
	// produce principal axes for a tensor.
	ErrDecompositionFailed = errors.New("moment tensor decomposition failed")
)

// TensorMetadata carries the descriptive fields attached to a tensor.
type TensorMetadata struct {
	Magnitude float64
	Depth     float64 // km
	Units     string
	Type      string // product type, e.g. "moment-tensor"
	Source    string

	// Nominal marks a tensor whose scale is arbitrary (a unit double couple
	// built from a focal mechanism); only its geometry is meaningful.
	Nominal bool
}

// MomentTensor is a symmetric 3×3 seismic moment tensor given by its six
// independent spherical components plus display metadata.
type MomentTensor struct {
	Mrr float64 `json:"mrr"`
	Mtt float64 `json:"mtt"`
	Mpp float64 `json:"mpp"`
	Mrt float64 `json:"mrt"`
	Mrp float64 `json:"mrp"`
	Mtp float64 `json:"mtp"`

	Magnitude float64 `json:"magnitude"`
	Depth     float64 `json:"depth"`
	Units     string  `json:"units"`
	Scale     float64 `json:"scale"`
	Exponent  int     `json:"exponent"`
	Type      string  `json:"type"`
	Source    string  `json:"source,omitempty"`
	Nominal   bool    `json:"nominal,omitempty"`
}

// NewMomentTensor builds a tensor from components ordered
// Mrr, Mtt, Mpp, Mrt, Mrp, Mtp.
func NewMomentTensor(components []float64, meta TensorMetadata) (MomentTensor, error) {
	if len(components) != 6 {
		return MomentTensor{}, fmt.Errorf("%w: want 6 components, got %d", ErrMalformedTensor, len(components))
	}
	if err := checkFinite(components); err != nil {
		return MomentTensor{}, err
	}

	if meta.Units == "" {
		meta.Units = UnitsNewtonMeter
	}
	if meta.Type == "" {
		meta.Type = ProductMomentTensor
	}

	t := MomentTensor{
		Mrr:       components[0],
		Mtt:       components[1],
		Mpp:       components[2],
		Mrt:       components[3],
		Mrp:       components[4],
		Mtp:       components[5],
		Magnitude: meta.Magnitude,
		Depth:     meta.Depth,
		Units:     meta.Units,
		Type:      meta.Type,
		Source:    meta.Source,
		Nominal:   meta.Nominal,
	}
	t.Scale, t.Exponent = DisplayScale(t.ScalarMoment())
	return t, nil
}

func checkFinite(components []float64) error {
	for i, c := range components {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: component %d is %v", ErrMalformedTensor, i, c)
		}
	}
	return nil
}

// Components returns Mrr, Mtt, Mpp, Mrt, Mrp, Mtp.
func (t MomentTensor) Components() []float64 {
	return []float64{t.Mrr, t.Mtt, t.Mpp, t.Mrt, t.Mrp, t.Mtp}
}

// Matrix returns the tensor as a symmetric 3×3 matrix in (East, North, Down)
// axes. With r = -Down, t = -North and p = East:
//
//	| Mpp  -Mtp  -Mrp |
//	| -Mtp  Mtt   Mrt |
//	| -Mrp  Mrt   Mrr |
func (t MomentTensor) Matrix() matrix.Matrix {
	m, err := matrix.New([]float64{
		t.Mpp, -t.Mtp, -t.Mrp,
		-t.Mtp, t.Mtt, t.Mrt,
		-t.Mrp, t.Mrt, t.Mrr,
	}, 3, 3)
	if err != nil {
		// 9 values for a 3×3 shape cannot fail.
		panic(err)
	}
	return m
}

// ScalarMoment returns the Frobenius-norm scalar moment sqrt(ΣMij²/2).
func (t MomentTensor) ScalarMoment() float64 {
	sum := t.Mrr*t.Mrr + t.Mtt*t.Mtt + t.Mpp*t.Mpp +
		2*(t.Mrt*t.Mrt+t.Mrp*t.Mrp+t.Mtp*t.Mtp)
	return math.Sqrt(sum / 2)
}

// DisplayScale splits a moment into a power of ten for display, e.g.
// 3.2e17 -> (1e17, 17). A non-positive moment yields (1, 0).
func DisplayScale(moment float64) (scale float64, exponent int) {
	moment = math.Abs(moment)
	if moment == 0 || math.IsInf(moment, 0) || math.IsNaN(moment) {
		return 1, 0
	}
	exponent = int(math.Floor(math.Log10(moment)))
	return math.Pow10(exponent), exponent
}

// MomentMagnitude returns Mw = 2/3·(log10(M0) − 9.1) with M0 in N·m.
// Moments in dyne-cm are converted first. It returns 0 for a non-positive moment.
func MomentMagnitude(moment float64, units string) float64 {
	if moment <= 0 {
		return 0
	}
	if units == UnitsDyneCentimeter {
		moment *= 1e-7
	}
	return 2.0 / 3.0 * (math.Log10(moment) - 9.1)
}
