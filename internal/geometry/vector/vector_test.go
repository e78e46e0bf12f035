package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-12

func TestAddSubtract(t *testing.T) {
	a := New(1, 2, 3)
	b := New(4, 5, 6)

	sum, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, Vector{5, 7, 9}, sum)

	diff, err := Subtract(b, a)
	require.NoError(t, err)
	assert.Equal(t, Vector{3, 3, 3}, diff)

	// Operands are left untouched.
	assert.Equal(t, Vector{1, 2, 3}, a)
	assert.Equal(t, Vector{4, 5, 6}, b)
}

func TestLengthMismatch(t *testing.T) {
	a := New(1, 2)
	b := New(1, 2, 3)

	_, err := Add(a, b)
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Subtract(a, b)
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Dot(a, b)
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Angle(a, b)
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestDotAndCross(t *testing.T) {
	x := New(1, 0, 0)
	y := New(0, 1, 0)

	d, err := Dot(x, y)
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = Dot(New(1, 2, 3), New(4, 5, 6))
	require.NoError(t, err)
	assert.Equal(t, 32.0, d)

	z, err := Cross(x, y)
	require.NoError(t, err)
	assert.Equal(t, Vector{0, 0, 1}, z)

	_, err = Cross(New(1, 0), y)
	require.ErrorIs(t, err, ErrDimension)
}

func TestMagnitudeAndUnit(t *testing.T) {
	v := New(3, 4, 0)
	assert.Equal(t, 5.0, Magnitude(v))

	u, err := Unit(v)
	require.NoError(t, err)
	assert.True(t, Equal(Vector{0.6, 0.8, 0}, u, eps))
	assert.InDelta(t, 1.0, Magnitude(u), eps)
}

func TestUnit_ZeroVector(t *testing.T) {
	_, err := Unit(New(0, 0, 0))
	require.ErrorIs(t, err, ErrZeroVector)
}

func TestAngle(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
		tol  float64
	}{
		{"orthogonal", New(1, 0, 0), New(0, 1, 0), math.Pi / 2, 1e-12},
		{"parallel", New(2, 0, 0), New(5, 0, 0), 0, 1e-12},
		{"opposite", New(1, 1, 0), New(-1, -1, 0), math.Pi, 1e-12},
		{"forty five", New(1, 0, 0), New(1, 1, 0), math.Pi / 4, 1e-12},
		{"nearly parallel", New(1, 0, 0), New(1, 1e-7, 0), math.Atan(1e-7), 1e-15},
		{"nearly opposite", New(1, 0, 0), New(-1, 1e-7, 0), math.Pi - math.Atan(1e-7), 1e-15},
		{"planar", New(1, 0), New(0, 1), math.Pi / 2, 1e-12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Angle(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.tol)
		})
	}

	_, err := Angle(New(0, 0, 0), New(1, 0, 0))
	require.ErrorIs(t, err, ErrZeroVector)
}

func TestAzimuth(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		want float64
	}{
		{"north", New(0, 1, 0), 0},
		{"east", New(1, 0, 0), math.Pi / 2},
		{"south", New(0, -1, 0), math.Pi},
		{"northeast", New(1, 1, 0), math.Pi / 4},
		{"two components", New(1, 0), math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Azimuth(tt.v)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestAzimuth_Vertical(t *testing.T) {
	for _, z := range []float64{-3, 0, 1, 42} {
		got, err := Azimuth(New(0, 0, z))
		require.NoError(t, err)
		assert.Zero(t, got)
	}

	_, err := Azimuth(New(1))
	require.ErrorIs(t, err, ErrDimension)
}

func TestPlunge(t *testing.T) {
	p, err := Plunge(New(0, 0, 2))
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, p, eps)

	p, err = Plunge(New(1, 0, -1))
	require.NoError(t, err)
	assert.InDelta(t, -math.Pi/4, p, eps)

	p, err = Plunge(New(1, 1, 0))
	require.NoError(t, err)
	assert.Zero(t, p)

	_, err = Plunge(New(0, 0, 0))
	require.ErrorIs(t, err, ErrZeroVector)

	_, err = Plunge(New(1, 1))
	require.ErrorIs(t, err, ErrDimension)
}

func TestRotate_AxisAligned(t *testing.T) {
	tests := []struct {
		name  string
		v     Vector
		axis  Vector
		theta float64
		want  Vector
	}{
		{"x to y about z", New(1, 0, 0), New(0, 0, 1), math.Pi / 2, New(0, 1, 0)},
		{"y to z about x", New(0, 1, 0), New(1, 0, 0), math.Pi / 2, New(0, 0, 1)},
		{"z to x about y", New(0, 0, 1), New(0, 1, 0), math.Pi / 2, New(1, 0, 0)},
		{"half turn", New(1, 2, 3), New(0, 0, 1), math.Pi, New(-1, -2, 3)},
		{"unnormalized axis", New(1, 0, 0), New(0, 0, 5), math.Pi / 2, New(0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rotate(tt.v, tt.axis, tt.theta, nil)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got, 1e-12), "got %v want %v", got, tt.want)
		})
	}
}

func TestRotate_AboutOffsetLine(t *testing.T) {
	// Quarter turn about the vertical line through (1, 0, 0).
	got, err := Rotate(New(2, 0, 0), New(0, 0, 1), math.Pi/2, New(1, 0, 0))
	require.NoError(t, err)
	assert.True(t, Equal(New(1, 1, 0), got, 1e-12), "got %v", got)
}

func TestRotate_PreservesLength(t *testing.T) {
	v := New(0.3, -1.2, 2.5)
	got, err := Rotate(v, New(1, 1, 1), 1.234, nil)
	require.NoError(t, err)
	assert.InDelta(t, Magnitude(v), Magnitude(got), 1e-12)
}

func TestRotate_Errors(t *testing.T) {
	_, err := Rotate(New(1, 0, 0), New(0, 0, 0), 1, nil)
	require.ErrorIs(t, err, ErrZeroVector)

	_, err = Rotate(New(1, 0), New(0, 0, 1), 1, nil)
	require.ErrorIs(t, err, ErrDimension)
}

func TestComponentBuilders(t *testing.T) {
	v := New(1, 2, 3)
	assert.Equal(t, 1.0, v.X())
	assert.Equal(t, 2.0, v.Y())
	assert.Equal(t, 3.0, v.Z())

	w := v.WithX(9).WithZ(7)
	assert.Equal(t, Vector{9, 2, 7}, w)
	assert.Equal(t, Vector{1, 2, 3}, v, "builders must not mutate the receiver")

	grown := New(1).WithZ(5)
	assert.Equal(t, Vector{1, 0, 5}, grown)
	assert.Zero(t, New(1).Y())
}
