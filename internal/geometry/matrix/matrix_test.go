package matrix

import (
	"testing"

	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, data []float64, rows, cols int) Matrix {
	t.Helper()
	m, err := New(data, rows, cols)
	require.NoError(t, err)
	return m
}

func mustIdentity(t *testing.T, n int) Matrix {
	t.Helper()
	m, err := Identity(n)
	require.NoError(t, err)
	return m
}

func TestConstructors(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}

	tests := []struct {
		name       string
		build      func() (Matrix, error)
		rows, cols int
	}{
		{"explicit", func() (Matrix, error) { return New(data, 2, 3) }, 2, 3},
		{"with rows", func() (Matrix, error) { return WithRows(data, 3) }, 3, 2},
		{"with cols", func() (Matrix, error) { return WithCols(data, 6) }, 1, 6},
		{"square", func() (Matrix, error) { return Square([]float64{1, 2, 3, 4}) }, 2, 2},
		{"from rows", func() (Matrix, error) { return FromRows([][]float64{{1, 2, 3}, {4, 5, 6}}) }, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.rows, m.Rows())
			assert.Equal(t, tt.cols, m.Cols())
		})
	}
}

func TestConstructors_ShapeErrors(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name  string
		build func() (Matrix, error)
	}{
		{"wrong length", func() (Matrix, error) { return New(data, 2, 2) }},
		{"zero rows", func() (Matrix, error) { return New(nil, 0, 3) }},
		{"rows not divisible", func() (Matrix, error) { return WithRows(data, 2) }},
		{"cols not divisible", func() (Matrix, error) { return WithCols(data, 3) }},
		{"not a perfect square", func() (Matrix, error) { return Square(data) }},
		{"empty square", func() (Matrix, error) { return Square(nil) }},
		{"ragged rows", func() (Matrix, error) { return FromRows([][]float64{{1, 2}, {3}}) }},
		{"zero identity", func() (Matrix, error) { return Identity(0) }},
		{"negative identity", func() (Matrix, error) { return Identity(-2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.ErrorIs(t, err, ErrShape)
		})
	}
}

func TestConstructors_CopyInput(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	m := mustNew(t, data, 2, 2)
	data[0] = 99

	v, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestAccessors(t *testing.T) {
	m := mustNew(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	row, err := m.Row(1)
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{4, 5, 6}, row)

	col, err := m.Col(1)
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{2, 5}, col)

	assert.Equal(t, vector.Vector{1, 5}, m.Diagonal())

	_, err = m.At(2, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = m.Row(-1)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = m.Col(3)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestSet_ReturnsCopy(t *testing.T) {
	m := mustNew(t, []float64{1, 2, 3, 4}, 2, 2)

	updated, err := m.Set(0, 1, 7)
	require.NoError(t, err)

	got, _ := updated.At(0, 1)
	assert.Equal(t, 7.0, got)
	orig, _ := m.At(0, 1)
	assert.Equal(t, 2.0, orig)

	_, err = m.Set(5, 5, 1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestTranspose(t *testing.T) {
	m := mustNew(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	tr := m.Transpose()

	assert.Equal(t, 3, tr.Rows())
	assert.Equal(t, 2, tr.Cols())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, tr.Data())
}

func TestAddSubtractNegative(t *testing.T) {
	a := mustNew(t, []float64{1, 2, 3, 4}, 2, 2)
	b := mustNew(t, []float64{4, 3, 2, 1}, 2, 2)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5, 5}, sum.Data())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{-3, -1, 1, 3}, diff.Data())

	assert.Equal(t, []float64{-1, -2, -3, -4}, a.Negative().Data())

	_, err = a.Add(mustNew(t, []float64{1, 2, 3}, 1, 3))
	require.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = a.Subtract(mustNew(t, []float64{1, 2}, 2, 1))
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMultiply(t *testing.T) {
	a := mustNew(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := mustNew(t, []float64{7, 8, 9, 10, 11, 12}, 3, 2)

	p, err := a.Multiply(b)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Rows())
	assert.Equal(t, 2, p.Cols())
	assert.Equal(t, []float64{58, 64, 139, 154}, p.Data())

	_, err = a.Multiply(a)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	id, err := mustIdentity(t, 3).Multiply(b)
	require.NoError(t, err)
	assert.Equal(t, b.Data(), id.Data())
}

func TestMultiplyVector(t *testing.T) {
	m := mustNew(t, []float64{1, 2, 3, 4}, 2, 2)

	got, err := m.MultiplyVector(vector.New(1, 1))
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{3, 7}, got)

	_, err = m.MultiplyVector(vector.New(1, 1, 1))
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTrace(t *testing.T) {
	m := mustNew(t, []float64{1, 2, 3, 4}, 2, 2)
	tr, err := m.Trace()
	require.NoError(t, err)
	assert.Equal(t, 5.0, tr)

	_, err = mustNew(t, []float64{1, 2}, 1, 2).Trace()
	require.ErrorIs(t, err, ErrNotSquare)
}
