// SPDX-License-Identifier: MIT

package field

import "errors"

var (
	// ErrBadShape is returned when a shape is empty or has a non-positive extent.
	ErrBadShape = errors.New("field: invalid shape")

	// ErrOutOfRange indicates that a coordinate lies outside the field.
	ErrOutOfRange = errors.New("field: index out of range")

	// ErrShapeMismatch indicates incompatible shapes between operands, or a
	// buffer whose length differs from the product of the shape.
	ErrShapeMismatch = errors.New("field: shape mismatch")
)
