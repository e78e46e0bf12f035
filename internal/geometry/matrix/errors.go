package matrix

import "errors"

// Shape and index errors are returned before any numeric work begins.
// Callers match them with errors.Is; messages may carry extra context.
var (
	// ErrShape is returned when the data length does not fit the requested
	// or inferred dimensions.
	ErrShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange is returned when a row or column index is outside the matrix.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch is returned for Add/Subtract on different shapes
	// and for Multiply when the inner dimensions differ.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNotSquare is returned when an operation requires rows == cols.
	ErrNotSquare = errors.New("matrix: not square/symmetric")

	// ErrNonFinite is returned when a matrix holds NaN or ±Inf entries that
	// the eigensolver cannot rotate away.
	ErrNonFinite = errors.New("matrix: non-finite element")

	// ErrNoConvergence is returned when the Jacobi routine spends its
	// rotation budget without diagonalizing the matrix.
	ErrNoConvergence = errors.New("matrix: jacobi did not converge")
)
