// Package vector provides n-component vector algebra used by the moment
// tensor engine.
//
// A Vector is a plain slice of components treated as a value: every function
// returns a new Vector and leaves its arguments untouched. Three-component
// vectors use (East, North, Down) axes throughout the engine, which makes
// Azimuth a bearing clockwise from north and Plunge positive downward.
package vector

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrLengthMismatch is returned when two operands have different lengths.
	ErrLengthMismatch = errors.New("vector: length mismatch")

	// ErrDimension is returned when an operation needs more components than
	// the vector has (e.g. Cross on 2-D input).
	ErrDimension = errors.New("vector: not enough components")

	// ErrZeroVector is returned when a direction is required but the vector
	// has zero magnitude.
	ErrZeroVector = errors.New("vector: zero vector")
)

// Vector is an ordered list of real components.
type Vector []float64

// New returns a Vector holding a copy of the given components.
func New(components ...float64) Vector {
	return append(Vector(nil), components...)
}

// X returns the first component, or 0 if the vector is empty.
func (v Vector) X() float64 { return v.component(0) }

// Y returns the second component, or 0 if absent.
func (v Vector) Y() float64 { return v.component(1) }

// Z returns the third component, or 0 if absent.
func (v Vector) Z() float64 { return v.component(2) }

// WithX returns a copy of v with the first component replaced.
func (v Vector) WithX(x float64) Vector { return v.with(0, x) }

// WithY returns a copy of v with the second component replaced.
func (v Vector) WithY(y float64) Vector { return v.with(1, y) }

// WithZ returns a copy of v with the third component replaced.
func (v Vector) WithZ(z float64) Vector { return v.with(2, z) }

func (v Vector) component(i int) float64 {
	if i >= len(v) {
		return 0
	}
	return v[i]
}

// with copies v, growing it when i is past the end.
func (v Vector) with(i int, value float64) Vector {
	n := len(v)
	if i >= n {
		n = i + 1
	}
	out := make(Vector, n)
	copy(out, v)
	out[i] = value
	return out
}

func (v Vector) String() string {
	return fmt.Sprintf("%v", []float64(v))
}

// Add returns a + b.
func Add(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("add %d and %d components: %w", len(a), len(b), ErrLengthMismatch)
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out, nil
}

// Subtract returns a - b.
func Subtract(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("subtract %d and %d components: %w", len(a), len(b), ErrLengthMismatch)
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out, nil
}

// Scale returns v multiplied by k.
func Scale(v Vector, k float64) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * k
	}
	return out
}

// Dot returns the sum of the element-wise products of a and b.
func Dot(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dot %d and %d components: %w", len(a), len(b), ErrLengthMismatch)
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Cross returns the 3-D cross product a × b. Components past the third are ignored.
func Cross(a, b Vector) (Vector, error) {
	if len(a) < 3 || len(b) < 3 {
		return nil, fmt.Errorf("cross product: %w", ErrDimension)
	}
	return Vector{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}, nil
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v Vector) float64 {
	var sum float64
	for _, c := range v {
		sum += c * c
	}
	return math.Sqrt(sum)
}

// Unit returns v scaled to length 1.
func Unit(v Vector) (Vector, error) {
	m := Magnitude(v)
	if m == 0 {
		return nil, ErrZeroVector
	}
	return Scale(v, 1/m), nil
}

// Angle returns the angle between a and b in radians, in [0, π].
func Angle(a, b Vector) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	denom := Magnitude(a) * Magnitude(b)
	if denom == 0 {
		return 0, fmt.Errorf("angle: %w", ErrZeroVector)
	}
	if len(a) == 3 {
		// atan2 keeps full precision near 0 and π, where acos does not.
		c, err := Cross(a, b)
		if err != nil {
			return 0, err
		}
		return math.Atan2(Magnitude(c), dot), nil
	}
	// Rounding can push the cosine a hair outside [-1, 1].
	return math.Acos(clamp(dot/denom, -1, 1)), nil
}

// Azimuth returns the horizontal bearing of v in radians, clockwise from the
// second axis (north) toward the first (east). A vector with no horizontal
// component has azimuth 0.
func Azimuth(v Vector) (float64, error) {
	if len(v) < 2 {
		return 0, fmt.Errorf("azimuth: %w", ErrDimension)
	}
	if v[0] == 0 && v[1] == 0 {
		return 0, nil
	}
	return math.Pi/2 - math.Atan2(v[1], v[0]), nil
}

// Plunge returns the angle of v below the horizontal plane in radians.
// It is positive when the third component is positive.
func Plunge(v Vector) (float64, error) {
	if len(v) < 3 {
		return 0, fmt.Errorf("plunge: %w", ErrDimension)
	}
	m := Magnitude(v)
	if m == 0 {
		return 0, fmt.Errorf("plunge: %w", ErrZeroVector)
	}
	return math.Asin(clamp(v[2]/m, -1, 1)), nil
}

// Rotate rotates the point v by theta radians around the line through origin
// with direction axis, right-handed about axis. A nil origin means the
// coordinate origin.
func Rotate(v, axis Vector, theta float64, origin Vector) (Vector, error) {
	if origin == nil {
		origin = Vector{0, 0, 0}
	}
	if len(v) < 3 || len(axis) < 3 || len(origin) < 3 {
		return nil, fmt.Errorf("rotate: %w", ErrDimension)
	}
	dir, err := Unit(axis[:3])
	if err != nil {
		return nil, fmt.Errorf("rotate axis: %w", err)
	}

	a, b, c := origin[0], origin[1], origin[2]
	u, w, s := dir[0], dir[1], dir[2]
	x, y, z := v[0], v[1], v[2]
	cos, sin := math.Cos(theta), math.Sin(theta)
	k := u*x + w*y + s*z

	return Vector{
		(a*(w*w+s*s)-u*(b*w+c*s-k))*(1-cos) + x*cos + (-c*w+b*s-s*y+w*z)*sin,
		(b*(u*u+s*s)-w*(a*u+c*s-k))*(1-cos) + y*cos + (c*u-a*s+s*x-u*z)*sin,
		(c*(u*u+w*w)-s*(a*u+b*w-k))*(1-cos) + z*cos + (-b*u+a*w-w*x+u*y)*sin,
	}, nil
}

// Equal reports whether a and b have the same length and every component
// differs by at most eps.
func Equal(a, b Vector, eps float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
