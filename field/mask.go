// SPDX-License-Identifier: MIT

package field

import (
	"encoding/json"
	"fmt"
)

// Mask is a dense row-major boolean array with the same layout as Field.
type Mask struct {
	shape   []int
	strides []int
	data    []bool
}

// NewMask allocates an all-false mask of the given shape.
func NewMask(shape ...int) (*Mask, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}

	return &Mask{
		shape:   append([]int(nil), shape...),
		strides: stridesOf(shape),
		data:    make([]bool, n),
	}, nil
}

// Shape returns a copy of the extents.
func (m *Mask) Shape() []int { return append([]int(nil), m.shape...) }

// Len returns the total element count.
func (m *Mask) Len() int { return len(m.data) }

// Data returns the live row-major buffer.
func (m *Mask) Data() []bool { return m.data }

// At reports the flag at coord.
func (m *Mask) At(coord ...int) (bool, error) {
	off, ok := offsetOf(m.shape, m.strides, coord)
	if !ok {
		return false, fmt.Errorf("Mask.%s(%s): %w", ctxAt, joinInts(coord), ErrOutOfRange)
	}

	return m.data[off], nil
}

// Set stores v at coord.
func (m *Mask) Set(v bool, coord ...int) error {
	off, ok := offsetOf(m.shape, m.strides, coord)
	if !ok {
		return fmt.Errorf("Mask.%s(%s): %w", ctxSet, joinInts(coord), ErrOutOfRange)
	}
	m.data[off] = v

	return nil
}

// Count returns the number of true elements.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}

	return n
}

// Field converts the mask to a 0/1 field of the same shape.
func (m *Mask) Field() *Field {
	f := &Field{
		shape:   append([]int(nil), m.shape...),
		strides: append([]int(nil), m.strides...),
		data:    make([]float64, len(m.data)),
	}
	for i, v := range m.data {
		if v {
			f.data[i] = 1
		}
	}

	return f
}

// MarshalJSON encodes the mask as {"shape": [...], "data": [...]}.
func (m *Mask) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireField[bool]{Shape: m.shape, Data: m.data})
}
