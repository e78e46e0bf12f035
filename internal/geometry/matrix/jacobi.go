package matrix

import (
	"fmt"
	"math"

	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/vector"
)

const (
	// DefaultMaxRotations caps the number of Givens rotations per solve.
	DefaultMaxRotations = 100

	// DefaultTolerance is the largest off-diagonal magnitude, relative to the
	// Frobenius norm, that still counts as zero.
	DefaultTolerance = 1e-12
)

// Eigenvector is a vector tagged with its eigenvalue.
type Eigenvector struct {
	Vector     vector.Vector
	Eigenvalue float64
}

// Eigensystem is the result of a Jacobi solve.
type Eigensystem struct {
	// Vectors holds one eigenvector per column of the accumulated rotation
	// matrix, in column order (not sorted by eigenvalue).
	Vectors []Eigenvector

	// Rotations is the number of plane rotations applied.
	Rotations int
}

// Eigenvalues returns the eigenvalues in the same order as Vectors.
func (e Eigensystem) Eigenvalues() []float64 {
	out := make([]float64, len(e.Vectors))
	for i, v := range e.Vectors {
		out[i] = v.Eigenvalue
	}
	return out
}

type jacobiConfig struct {
	maxRotations int
	tolerance    float64
}

// JacobiOption tunes a Jacobi solve.
type JacobiOption func(*jacobiConfig)

// WithMaxRotations sets the rotation budget. A budget below 1 always fails.
func WithMaxRotations(n int) JacobiOption {
	return func(c *jacobiConfig) { c.maxRotations = n }
}

// WithTolerance sets the relative off-diagonal threshold for convergence.
func WithTolerance(tol float64) JacobiOption {
	return func(c *jacobiConfig) { c.tolerance = tol }
}

// Jacobi diagonalizes a symmetric matrix with successive plane rotations,
// each one zeroing the largest remaining off-diagonal pair. Only squareness is
// checked; a non-symmetric input yields a meaningless result.
//
// NaN or infinite entries fail with ErrNonFinite before any rotation.
// If the off-diagonal elements have not vanished when the rotation budget is
// spent the solve fails with ErrNoConvergence; partial results are never
// returned.
func (m Matrix) Jacobi(opts ...JacobiOption) (Eigensystem, error) {
	if m.rows != m.cols {
		return Eigensystem{}, fmt.Errorf("jacobi on %d×%d: %w", m.rows, m.cols, ErrNotSquare)
	}
	for i, x := range m.data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Eigensystem{}, fmt.Errorf("jacobi: element (%d,%d) is %v: %w", i/m.cols, i%m.cols, x, ErrNonFinite)
		}
	}
	cfg := jacobiConfig{maxRotations: DefaultMaxRotations, tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxRotations < 1 {
		return Eigensystem{}, fmt.Errorf("rotation budget %d: %w", cfg.maxRotations, ErrNoConvergence)
	}

	n := m.rows
	a := m.clone().data
	v := identity(n).data
	threshold := cfg.tolerance * frobenius(a)

	rotations := 0
	for {
		p, q, off := largestOffDiagonal(a, n)
		if off == 0 || off <= threshold {
			break
		}
		if rotations >= cfg.maxRotations {
			return Eigensystem{}, fmt.Errorf("off-diagonal %g after %d rotations: %w", off, rotations, ErrNoConvergence)
		}
		rotate(a, v, n, p, q)
		rotations++
	}

	vectors := make([]Eigenvector, n)
	for j := 0; j < n; j++ {
		col := make(vector.Vector, n)
		for i := 0; i < n; i++ {
			col[i] = v[i*n+j]
		}
		vectors[j] = Eigenvector{Vector: col, Eigenvalue: a[j*n+j]}
	}
	return Eigensystem{Vectors: vectors, Rotations: rotations}, nil
}

// largestOffDiagonal returns the indices p < q of the off-diagonal element
// with the largest magnitude, and that magnitude.
func largestOffDiagonal(a []float64, n int) (p, q int, off float64) {
	p, q = 0, 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if x := math.Abs(a[i*n+j]); x > off {
				p, q, off = i, j, x
			}
		}
	}
	return p, q, off
}

// rotate applies the Givens rotation that zeroes a[p][q] to the working
// matrix a and accumulates it into the eigenvector matrix v.
func rotate(a, v []float64, n, p, q int) {
	app, aqq, apq := a[p*n+p], a[q*n+q], a[p*n+q]
	phi := 0.5 * math.Atan2(2*apq, aqq-app)
	c, s := math.Cos(phi), math.Sin(phi)

	a[p*n+p] = c*c*app - 2*s*c*apq + s*s*aqq
	a[q*n+q] = s*s*app + 2*s*c*apq + c*c*aqq
	a[p*n+q], a[q*n+p] = 0, 0

	for i := 0; i < n; i++ {
		if i == p || i == q {
			continue
		}
		aip, aiq := a[i*n+p], a[i*n+q]
		a[i*n+p] = c*aip - s*aiq
		a[p*n+i] = a[i*n+p]
		a[i*n+q] = s*aip + c*aiq
		a[q*n+i] = a[i*n+q]
	}

	for i := 0; i < n; i++ {
		vip, viq := v[i*n+p], v[i*n+q]
		v[i*n+p] = c*vip - s*viq
		v[i*n+q] = s*vip + c*viq
	}
}

func frobenius(a []float64) float64 {
	var sum float64
	for _, x := range a {
		sum += x * x
	}
	return math.Sqrt(sum)
}
