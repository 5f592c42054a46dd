package grid

import "errors"

// Sentinel errors for grid construction and access.
var (
	// ErrInvalidDimension indicates a grid rank other than 2 or 3, or an
	// operation that requires a specific rank.
	ErrInvalidDimension = errors.New("grid: grid must have 2 or 3 dimensions")
	// ErrEmptyGrid indicates a zero-length (or negative) axis.
	ErrEmptyGrid = errors.New("grid: every dimension must be non-empty")
	// ErrNonRectangular indicates ragged nested input.
	ErrNonRectangular = errors.New("grid: nested input must be rectangular")
	// ErrShapeMismatch indicates a value count or operand shape that does not match.
	ErrShapeMismatch = errors.New("grid: shape mismatch")
	// ErrNaNInf indicates a NaN or ±Inf input value.
	ErrNaNInf = errors.New("grid: NaN or Inf value")
	// ErrOutOfBounds indicates a coordinate or index outside the grid.
	ErrOutOfBounds = errors.New("grid: coordinate out of bounds")
)
