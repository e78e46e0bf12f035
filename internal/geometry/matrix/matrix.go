// Package matrix implements a small dense matrix type and a Jacobi
// eigensolver for symmetric matrices.
//
// Matrices are immutable values stored row-major. Operations that can fail on
// shape return an error wrapping one of the package sentinels.
package matrix

import (
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/vector"
)

// Matrix is an M×N matrix of reals.
type Matrix struct {
	rows, cols int
	data       []float64
}

// New builds a rows×cols matrix from row-major data. The data is copied.
func New(data []float64, rows, cols int) (Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return Matrix{}, fmt.Errorf("%d×%d: %w", rows, cols, ErrShape)
	}
	if rows*cols != len(data) {
		return Matrix{}, fmt.Errorf("%d values for %d×%d: %w", len(data), rows, cols, ErrShape)
	}
	return Matrix{rows: rows, cols: cols, data: append([]float64(nil), data...)}, nil
}

// WithRows builds a matrix with the given number of rows, inferring columns.
func WithRows(data []float64, rows int) (Matrix, error) {
	if rows <= 0 || len(data)%rows != 0 {
		return Matrix{}, fmt.Errorf("%d values in %d rows: %w", len(data), rows, ErrShape)
	}
	return New(data, rows, len(data)/rows)
}

// WithCols builds a matrix with the given number of columns, inferring rows.
func WithCols(data []float64, cols int) (Matrix, error) {
	if cols <= 0 || len(data)%cols != 0 {
		return Matrix{}, fmt.Errorf("%d values in %d columns: %w", len(data), cols, ErrShape)
	}
	return New(data, len(data)/cols, cols)
}

// Square builds an n×n matrix, failing unless len(data) is a perfect square.
func Square(data []float64) (Matrix, error) {
	n := int(math.Round(math.Sqrt(float64(len(data)))))
	if n*n != len(data) {
		return Matrix{}, fmt.Errorf("%d values is not square: %w", len(data), ErrShape)
	}
	return New(data, n, n)
}

// FromRows builds a matrix from a slice of equal-length rows.
func FromRows(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, fmt.Errorf("no rows: %w", ErrShape)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return Matrix{}, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(r), cols, ErrShape)
		}
		data = append(data, r...)
	}
	return New(data, len(rows), cols)
}

// Identity returns the n×n identity matrix.
func Identity(n int) (Matrix, error) {
	if n <= 0 {
		return Matrix{}, fmt.Errorf("identity of size %d: %w", n, ErrShape)
	}
	return identity(n), nil
}

func identity(n int) Matrix {
	m := Matrix{rows: n, cols: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m Matrix) Cols() int { return m.cols }

// Data returns a copy of the row-major elements.
func (m Matrix) Data() []float64 { return append([]float64(nil), m.data...) }

func (m Matrix) inRange(i, j int) error {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return fmt.Errorf("(%d, %d) in %d×%d: %w", i, j, m.rows, m.cols, ErrOutOfRange)
	}
	return nil
}

// At returns the element at row i, column j.
func (m Matrix) At(i, j int) (float64, error) {
	if err := m.inRange(i, j); err != nil {
		return 0, err
	}
	return m.data[i*m.cols+j], nil
}

// Set returns a copy of m with the element at (i, j) replaced.
func (m Matrix) Set(i, j int, v float64) (Matrix, error) {
	if err := m.inRange(i, j); err != nil {
		return Matrix{}, err
	}
	out := m.clone()
	out.data[i*m.cols+j] = v
	return out, nil
}

// Row returns row i as a vector.
func (m Matrix) Row(i int) (vector.Vector, error) {
	if err := m.inRange(i, 0); err != nil {
		return nil, err
	}
	return vector.New(m.data[i*m.cols : (i+1)*m.cols]...), nil
}

// Col returns column j as a vector.
func (m Matrix) Col(j int) (vector.Vector, error) {
	if err := m.inRange(0, j); err != nil {
		return nil, err
	}
	out := make(vector.Vector, m.rows)
	for i := range out {
		out[i] = m.data[i*m.cols+j]
	}
	return out, nil
}

// Diagonal returns the main diagonal, of length min(rows, cols).
func (m Matrix) Diagonal() vector.Vector {
	n := min(m.rows, m.cols)
	out := make(vector.Vector, n)
	for i := range out {
		out[i] = m.data[i*m.cols+i]
	}
	return out
}

// Trace returns the sum of the diagonal of a square matrix.
func (m Matrix) Trace() (float64, error) {
	if m.rows != m.cols {
		return 0, fmt.Errorf("trace of %d×%d: %w", m.rows, m.cols, ErrNotSquare)
	}
	var sum float64
	for _, d := range m.Diagonal() {
		sum += d
	}
	return sum, nil
}

// Transpose returns the N×M transpose.
func (m Matrix) Transpose() Matrix {
	out := Matrix{rows: m.cols, cols: m.rows, data: make([]float64, len(m.data))}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return out
}

// Add returns m + o.
func (m Matrix) Add(o Matrix) (Matrix, error) {
	return m.elementwise(o, func(a, b float64) float64 { return a + b })
}

// Subtract returns m - o.
func (m Matrix) Subtract(o Matrix) (Matrix, error) {
	return m.elementwise(o, func(a, b float64) float64 { return a - b })
}

func (m Matrix) elementwise(o Matrix, fn func(a, b float64) float64) (Matrix, error) {
	if m.rows != o.rows || m.cols != o.cols {
		return Matrix{}, fmt.Errorf("%d×%d and %d×%d: %w", m.rows, m.cols, o.rows, o.cols, ErrDimensionMismatch)
	}
	out := m.clone()
	for i := range out.data {
		out.data[i] = fn(m.data[i], o.data[i])
	}
	return out, nil
}

// Multiply returns the matrix product m · o.
func (m Matrix) Multiply(o Matrix) (Matrix, error) {
	if m.cols != o.rows {
		return Matrix{}, fmt.Errorf("multiply %d×%d by %d×%d: %w", m.rows, m.cols, o.rows, o.cols, ErrDimensionMismatch)
	}
	out := Matrix{rows: m.rows, cols: o.cols, data: make([]float64, m.rows*o.cols)}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < o.cols; j++ {
			var sum float64
			for k := 0; k < m.cols; k++ {
				sum += m.data[i*m.cols+k] * o.data[k*o.cols+j]
			}
			out.data[i*o.cols+j] = sum
		}
	}
	return out, nil
}

// MultiplyVector returns m · v.
func (m Matrix) MultiplyVector(v vector.Vector) (vector.Vector, error) {
	if len(v) != m.cols {
		return nil, fmt.Errorf("multiply %d×%d by %d-vector: %w", m.rows, m.cols, len(v), ErrDimensionMismatch)
	}
	out := make(vector.Vector, m.rows)
	for i := 0; i < m.rows; i++ {
		var sum float64
		for j := 0; j < m.cols; j++ {
			sum += m.data[i*m.cols+j] * v[j]
		}
		out[i] = sum
	}
	return out, nil
}

// Negative returns m with every element multiplied by -1.
func (m Matrix) Negative() Matrix {
	out := m.clone()
	for i := range out.data {
		out.data[i] = -out.data[i]
	}
	return out
}

func (m Matrix) clone() Matrix {
	return Matrix{rows: m.rows, cols: m.cols, data: append([]float64(nil), m.data...)}
}

func (m Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%v", m.data[i*m.cols:(i+1)*m.cols])
	}
	return b.String()
}
