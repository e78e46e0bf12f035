package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when a TensorInput names neither or both of
// its tensor sources.
var ErrInvalidInput = errors.New("tensor input needs exactly one of components or plane")

// TensorInput describes a tensor supplied directly by a caller rather than
// by a feed product: either six components (Mrr, Mtt, Mpp, Mrt, Mrp, Mtp)
// or a nodal plane with an optional scalar moment.
type TensorInput struct {
	Components []float64   `json:"components,omitempty" yaml:"components,omitempty"`
	Plane      *NodalPlane `json:"plane,omitempty" yaml:"plane,omitempty"`
	Moment     float64     `json:"moment,omitempty" yaml:"moment,omitempty"`
	Units      string      `json:"units,omitempty" yaml:"units,omitempty"`
}

// Tensor builds the moment tensor the input describes. A plane without a
// moment yields a nominal unit double couple.
func (in TensorInput) Tensor() (MomentTensor, error) {
	hasComponents := len(in.Components) > 0
	if hasComponents == (in.Plane != nil) {
		return MomentTensor{}, ErrInvalidInput
	}
	meta := TensorMetadata{Units: in.Units}

	if hasComponents {
		return NewMomentTensor(in.Components, meta)
	}

	p := *in.Plane
	if !(p.Dip >= 0 && p.Dip <= 90) || !isFinite(p.Strike) || !isFinite(p.Rake) {
		return MomentTensor{}, fmt.Errorf("%w: plane %v/%v/%v", ErrMalformedTensor, p.Strike, p.Dip, p.Rake)
	}
	m0 := in.Moment
	if m0 <= 0 {
		m0 = 1
		meta.Nominal = true
	}
	meta.Type = ProductFocalMechanism
	return NewMomentTensor(TensorFromNodalPlane(p, m0).Components(), meta)
}

// Summary is a decomposition together with the tensor it came from.
type Summary struct {
	Tensor          MomentTensor  `json:"tensor" yaml:"tensor"`
	Decomposition   Decomposition `json:"decomposition" yaml:"decomposition"`
	MomentMagnitude float64       `json:"moment_magnitude" yaml:"moment_magnitude"`
	FaultingStyle   string        `json:"faulting_style" yaml:"faulting_style"`
}

// Summarize combines a tensor and its decomposition for display.
func Summarize(t MomentTensor, d Decomposition) Summary {
	s := Summary{
		Tensor:        t,
		Decomposition: d,
		FaultingStyle: deriveFaultingStyle(d.NP1.Rake),
	}
	if !t.Nominal {
		s.MomentMagnitude = roundTo(MomentMagnitude(d.Moment, t.Units), 2)
	}
	return s
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
